package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"

	"printkit/internal/logger"
	"printkit/internal/models"
	"printkit/internal/services/printify"
	"printkit/internal/templates"
)

const (
	suggestSample    = 10
	suggestProviders = 3
	suggestLimit     = 20

	searchSample    = 20
	searchProviders = 2
	searchLimit     = 15

	pause = 50 * time.Millisecond
)

type Suggestion struct {
	BlueprintID        int     `json:"blueprint_id"`
	PrintProviderID    int     `json:"print_provider_id"`
	BlueprintTitle     string  `json:"blueprint_title"`
	PrintProviderTitle string  `json:"print_provider_title"`
	Category           string  `json:"category"`
	Description        string  `json:"description"`
	EstimatedPrice     int     `json:"estimated_price"`
	PopularityScore    float64 `json:"popularity_score"`
}

type SuggestOptions struct {
	Category string
	// MaxPrice drops suggestions estimated above it (cents); zero disables.
	MaxPrice int
}

// CategoryPricer prices a blueprint from its category.
type CategoryPricer struct{}

func (CategoryPricer) Estimate(bp printify.Blueprint) (int, int) {
	category := Categorize(bp.Title, bp.Description)
	return EstimatePrice(category), EstimateWeight(category)
}

type Helper struct {
	catalog templates.Catalog
	logger  *logger.Logger
	rngMu   sync.Mutex
	rng     *rand.Rand
	sleep   func(time.Duration)
	synth   *templates.Synthesizer
}

type Option func(*Helper)

// WithRand makes sampling reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(h *Helper) { h.rng = rng }
}

func WithSleep(sleep func(time.Duration)) Option {
	return func(h *Helper) { h.sleep = sleep }
}

func New(catalog templates.Catalog, logger *logger.Logger, opts ...Option) *Helper {
	h := &Helper{
		catalog: catalog,
		logger:  logger,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.synth = templates.New(catalog, logger, templates.WithPricer(CategoryPricer{}), templates.WithSleep(h.sleep))
	return h
}

// sample serializes access to the shared rng; the API serves concurrent
// requests from one Helper.
func (h *Helper) sample(blueprints []printify.Blueprint, n int) []printify.Blueprint {
	h.rngMu.Lock()
	defer h.rngMu.Unlock()
	return Sample(blueprints, n, h.rng)
}

// Suggest samples blueprints (optionally of one category) and ranks their
// first providers by popularity.
func (h *Helper) Suggest(ctx context.Context, opts SuggestOptions) ([]Suggestion, error) {
	blueprints, err := h.catalog.GetBlueprints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get product suggestions: %w", err)
	}

	if opts.Category != "" {
		var filtered []printify.Blueprint
		for _, bp := range blueprints {
			if Categorize(bp.Title, bp.Description) == opts.Category {
				filtered = append(filtered, bp)
			}
		}
		blueprints = filtered
	}

	suggestions := []Suggestion{}
	for _, bp := range h.sample(blueprints, suggestSample) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		providers, err := h.catalog.GetPrintProviders(ctx, bp.ID)
		if err != nil {
			h.logger.Warn("Skipping blueprint %d: %v", bp.ID, err)
			continue
		}
		for _, pp := range first(providers, suggestProviders) {
			s := suggest(bp, pp)
			if opts.MaxPrice > 0 && s.EstimatedPrice > opts.MaxPrice {
				continue
			}
			suggestions = append(suggestions, s)
		}
		h.sleep(pause)
	}

	return rank(suggestions, suggestLimit), nil
}

// Search matches keywords case-insensitively against the title,
// description and brand of a sample of blueprints.
func (h *Helper) Search(ctx context.Context, keywords []string) ([]Suggestion, error) {
	blueprints, err := h.catalog.GetBlueprints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}

	suggestions := []Suggestion{}
	for _, bp := range h.sample(blueprints, searchSample) {
		if !matchesAny(bp, lowered) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		providers, err := h.catalog.GetPrintProviders(ctx, bp.ID)
		if err != nil {
			h.logger.Warn("Skipping blueprint %d: %v", bp.ID, err)
			continue
		}
		for _, pp := range first(providers, searchProviders) {
			suggestions = append(suggestions, suggest(bp, pp))
		}
		h.sleep(pause)
	}

	return rank(suggestions, searchLimit), nil
}

// Categories counts the catalog's blueprints per category.
func (h *Helper) Categories(ctx context.Context) (map[string]int, error) {
	blueprints, err := h.catalog.GetBlueprints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	counts := map[string]int{}
	for _, bp := range blueprints {
		counts[Categorize(bp.Title, bp.Description)]++
	}
	return counts, nil
}

// GenerateTemplate builds a descriptor covering every variant of the pair,
// priced from the blueprint's category unless customized.
func (h *Helper) GenerateTemplate(ctx context.Context, blueprintID, providerID int, c *templates.Customizations) (*models.ProductDescriptor, error) {
	return h.synth.Generate(ctx, blueprintID, providerID, templates.GenerateOptions{
		AllVariants:    true,
		Customizations: c,
	})
}

// DecodeCustomizations parses a JSON object of template overrides. Values
// are weakly typed, so {"price": "2600"} is accepted.
func DecodeCustomizations(raw string) (*templates.Customizations, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("invalid customizations: %w", err)
	}

	var c templates.Customizations
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &c,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(fields); err != nil {
		return nil, fmt.Errorf("invalid customizations: %w", err)
	}
	return &c, nil
}

func suggest(bp printify.Blueprint, pp printify.PrintProvider) Suggestion {
	category := Categorize(bp.Title, bp.Description)
	return Suggestion{
		BlueprintID:        bp.ID,
		PrintProviderID:    pp.ID,
		BlueprintTitle:     bp.Title,
		PrintProviderTitle: pp.Title,
		Category:           category,
		Description:        bp.Description,
		EstimatedPrice:     EstimatePrice(category),
		PopularityScore:    PopularityScore(bp, pp),
	}
}

func matchesAny(bp printify.Blueprint, keywords []string) bool {
	title := strings.ToLower(bp.Title)
	description := strings.ToLower(bp.Description)
	brand := strings.ToLower(bp.Brand)
	for _, k := range keywords {
		if strings.Contains(title, k) || strings.Contains(description, k) || strings.Contains(brand, k) {
			return true
		}
	}
	return false
}

func first(providers []printify.PrintProvider, n int) []printify.PrintProvider {
	if len(providers) > n {
		return providers[:n]
	}
	return providers
}

func rank(suggestions []Suggestion, limit int) []Suggestion {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].PopularityScore > suggestions[j].PopularityScore
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}
