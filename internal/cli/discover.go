package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"printkit/internal/discovery"
	"printkit/internal/models"
)

const suggestionsShown = 10

func (a *app) printSuggestions(suggestions []discovery.Suggestion, noun string) {
	a.success("Found %d %s:", len(suggestions), noun)
	for i, s := range suggestions {
		if i == suggestionsShown {
			a.hint("... and %d more", len(suggestions)-suggestionsShown)
			break
		}
		a.printf("   %d. %s - %s\n", i+1, s.BlueprintTitle, s.PrintProviderTitle)
		a.printf("      Category: %s, Price: $%.2f, Score: %.0f\n", s.Category, float64(s.EstimatedPrice)/100, s.PopularityScore)
		a.printf("      Blueprint ID: %d, Provider ID: %d\n", s.BlueprintID, s.PrintProviderID)
	}
}

func (a *app) discoverProductsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "discover-products [CATEGORY] [MAX_PRICE_CENTS]",
		Short: "Suggest popular blueprint/provider pairs",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts discovery.SuggestOptions
			if len(args) > 0 {
				opts.Category = args[0]
			}
			if len(args) > 1 {
				maxPrice, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid max price %q: %w", args[1], err)
				}
				opts.MaxPrice = maxPrice
			}

			helper, err := a.helper(cmd.Context())
			if err != nil {
				return err
			}
			a.heading("Discovering products...")
			suggestions, err := helper.Suggest(cmd.Context(), opts)
			if err != nil {
				return err
			}
			a.printSuggestions(suggestions, "product suggestions")
			return nil
		},
	}
}

func (a *app) searchProductsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search-products KEYWORD...",
		Short: "Search the catalog by keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			helper, err := a.helper(cmd.Context())
			if err != nil {
				return err
			}
			a.heading("Searching products for: %s", strings.Join(args, " "))
			suggestions, err := helper.Search(cmd.Context(), args)
			if err != nil {
				return err
			}
			a.printSuggestions(suggestions, "matching products")
			return nil
		},
	}
}

func (a *app) generateDynamicTemplateCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "generate-dynamic-template BLUEPRINT_ID PROVIDER_ID [CUSTOMIZATIONS_JSON]",
		Short: "Write an all-variant template priced from the blueprint's category",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := intArgs(args[:2])
			if err != nil {
				return err
			}
			var raw string
			if len(args) == 3 {
				raw = args[2]
			}
			custom, err := discovery.DecodeCustomizations(raw)
			if err != nil {
				return err
			}

			helper, err := a.helper(cmd.Context())
			if err != nil {
				return err
			}
			a.heading("Generating dynamic template for blueprint %d, provider %d...", ids[0], ids[1])
			d, err := helper.GenerateTemplate(cmd.Context(), ids[0], ids[1], custom)
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = fmt.Sprintf("dynamic-template-%d-%d.json", ids[0], ids[1])
			}
			if err := models.SaveDescriptor(path, d); err != nil {
				return err
			}
			a.success("Template generated and saved to: %s", path)
			a.printf("   - Title: %s\n", d.Title)
			a.printf("   - Blueprint ID: %d\n", d.BlueprintID)
			a.printf("   - Provider ID: %d\n", d.PrintProviderID)
			a.printf("   - Variants: %d\n", len(d.Variants))
			a.printf("   - Print Areas: %d\n", len(d.PrintAreas))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default dynamic-template-<bp>-<pp>.json)")
	return cmd
}

func (a *app) showCategoriesCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "show-categories",
		Short: "Count catalog blueprints per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			helper, err := a.helper(cmd.Context())
			if err != nil {
				return err
			}
			a.heading("Discovering available categories...")
			counts, err := helper.Categories(cmd.Context())
			if err != nil {
				return err
			}

			if all {
				for _, name := range discovery.CategoryNames() {
					if _, ok := counts[name]; !ok {
						counts[name] = 0
					}
				}
			}

			names := make([]string, 0, len(counts))
			for name := range counts {
				names = append(names, name)
			}
			sort.SliceStable(names, func(i, j int) bool {
				if counts[names[i]] != counts[names[j]] {
					return counts[names[i]] > counts[names[j]]
				}
				return names[i] < names[j]
			})

			a.heading("Available Product Categories:")
			for _, name := range names {
				a.printf("%s: %d products\n", name, counts[name])
			}
			a.hint("Use 'printkit discover-products <category>' to explore products in a category")
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Also list known categories without any blueprints")
	return cmd
}
