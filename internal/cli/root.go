// Package cli is the printkit command surface. Every command resolves the
// configuration, builds the components it needs, runs one operation and
// prints a summary.
package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"printkit/internal/config"
	"printkit/internal/database"
	"printkit/internal/discovery"
	"printkit/internal/events"
	"printkit/internal/logger"
	"printkit/internal/services/printify"
	"printkit/internal/services/products"
	"printkit/internal/templates"
	"printkit/internal/uploader"
)

var (
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#86AAEC")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// app holds what commands share. Components are built lazily so commands
// that never touch the network or the ledger do not need them.
type app struct {
	out      io.Writer
	logLevel string
	sleep    func(time.Duration)
	rng      *rand.Rand

	cfg       *config.Config
	logger    *logger.Logger
	client    *printify.Client
	db        *database.Database
	publisher events.Publisher
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	a := &app{out: os.Stdout, sleep: time.Sleep}
	root := newRootCommand(a)
	err := root.ExecuteContext(context.Background())
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "printkit",
		Short:         "Printify catalog client and product templating tool",
		Version:       printify.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	root.AddCommand(
		a.createCommand(),
		a.listShopsCommand(),
		a.listProductsCommand(),
		a.getProductCommand(),
		a.deleteProductCommand(),
		a.publishProductCommand(),
		a.historyCommand(),

		a.debugBlueprintsCommand(),
		a.debugBlueprintCommand(),
		a.debugStructureCommand(),
		a.debugPrintProviderCommand(),

		a.uploadImageCommand(),
		a.createWithImageCommand(),
		a.processWithImagesCommand(),

		a.generateTemplateCommand(),
		a.generatePopularTemplatesCommand(),
		a.listTemplatesCommand(),
		a.generateAllTemplatesCommand(),
		a.listAllTemplatesCommand(),
		a.generateSummaryCommand(),
		a.showContextCommand(),

		a.discoverProductsCommand(),
		a.searchProductsCommand(),
		a.generateDynamicTemplateCommand(),
		a.showCategoriesCommand(),

		a.versionCommand(),
	)
	return root
}

// load resolves and validates the configuration once.
func (a *app) load() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.cfg = cfg
	a.logger = logger.New(level)
	return cfg, nil
}

// printifyClient builds the API client. Shop bound commands resolve the first
// shop when no shop id is configured.
func (a *app) printifyClient(ctx context.Context, needShop bool) (*printify.Client, error) {
	if a.client != nil && (!needShop || a.client.ShopID() != "") {
		return a.client, nil
	}
	cfg, err := a.load()
	if err != nil {
		return nil, err
	}

	if !needShop && cfg.ShopID == "" {
		a.client = printify.NewClient(cfg.APIToken, "", a.logger,
			printify.WithBaseURL(cfg.BaseURL),
			printify.WithTimeout(cfg.HTTPTimeout),
			printify.WithUploadTimeout(cfg.UploadTimeout),
		)
		return a.client, nil
	}

	client, err := printify.Connect(ctx, cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

func (a *app) ledger() (*database.Database, error) {
	if a.db != nil {
		return a.db, nil
	}
	cfg, err := a.load()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.DatabaseURL, a.logger)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) events() events.Publisher {
	if a.publisher == nil {
		a.publisher = events.NewPublisher(a.cfg.Brokers(), a.cfg.KafkaEventsTopic, a.logger)
	}
	return a.publisher
}

func (a *app) synthesizer(ctx context.Context) (*templates.Synthesizer, error) {
	client, err := a.printifyClient(ctx, false)
	if err != nil {
		return nil, err
	}
	return templates.New(client, a.logger,
		templates.WithOutputDir(a.cfg.TemplatesDir),
		templates.WithSleep(a.sleep),
		templates.WithClassifier(discovery.Categorize),
		templates.WithPublisher(a.events()),
	), nil
}

func (a *app) helper(ctx context.Context) (*discovery.Helper, error) {
	client, err := a.printifyClient(ctx, false)
	if err != nil {
		return nil, err
	}
	opts := []discovery.Option{discovery.WithSleep(a.sleep)}
	if a.rng != nil {
		opts = append(opts, discovery.WithRand(a.rng))
	}
	return discovery.New(client, a.logger, opts...), nil
}

// productService builds the product service. Commands that only read the
// local ledger pass needShop=false and skip shop discovery.
func (a *app) productService(ctx context.Context, needShop bool) (*products.Service, error) {
	client, err := a.printifyClient(ctx, needShop)
	if err != nil {
		return nil, err
	}
	db, err := a.ledger()
	if err != nil {
		return nil, err
	}
	opts := []products.Option{products.WithPublisher(a.events())}
	if db != nil {
		opts = append(opts, products.WithLedger(db))
	}
	return products.NewService(client, a.logger, opts...), nil
}

func (a *app) imageUploader(ctx context.Context) (*uploader.Uploader, error) {
	client, err := a.printifyClient(ctx, false)
	if err != nil {
		return nil, err
	}
	db, err := a.ledger()
	if err != nil {
		return nil, err
	}
	opts := []uploader.Option{
		uploader.WithMaxWidth(a.cfg.ImageMaxWidth),
		uploader.WithPublisher(a.events()),
	}
	if db != nil {
		opts = append(opts, uploader.WithLedger(db))
	}
	return uploader.New(client, a.logger, opts...), nil
}

func (a *app) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil && a.logger != nil {
			a.logger.Warn("Failed to close event publisher: %v", err)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}

func (a *app) heading(format string, args ...interface{}) {
	fmt.Fprintln(a.out, headingStyle.Render(fmt.Sprintf(format, args...)))
}

func (a *app) success(format string, args ...interface{}) {
	fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf(format, args...)))
}

func (a *app) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) hint(format string, args ...interface{}) {
	fmt.Fprintln(a.out, mutedStyle.Render(fmt.Sprintf(format, args...)))
}
