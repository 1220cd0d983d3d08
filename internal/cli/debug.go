package cli

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"printkit/internal/services/printify"
)

const (
	debugBlueprintLimit = 10
	debugVariantLimit   = 5
)

func intArgs(args []string) ([]int, error) {
	ids := make([]int, len(args))
	for i, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (a *app) debugBlueprintsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "debug-blueprints",
		Short: "Show the first catalog blueprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.printifyClient(cmd.Context(), false)
			if err != nil {
				return err
			}
			a.heading("Fetching blueprints...")
			blueprints, err := client.GetBlueprints(cmd.Context())
			if err != nil {
				return err
			}
			a.success("Found %d blueprints:", len(blueprints))
			for i, bp := range blueprints {
				if i == debugBlueprintLimit {
					a.hint("... and %d more blueprints", len(blueprints)-debugBlueprintLimit)
					break
				}
				a.printf("  %d. ID: %d - %s\n", i+1, bp.ID, bp.Title)
				a.printf("     Brand: %s, Model: %s\n", bp.Brand, bp.Model)
				a.printf("     Description: %s\n\n", truncate(bp.Description, 100))
			}
			return nil
		},
	}
}

func (a *app) printVariants(variants []printify.CatalogVariant) {
	a.success("Found %d variants:", len(variants))
	for i, v := range variants {
		if i == debugVariantLimit {
			a.hint("... and %d more variants", len(variants)-debugVariantLimit)
			break
		}
		a.printf("  %d. ID: %d - %s\n", i+1, v.ID, v.Title)
		a.printf("     Options: %s\n", strings.Join(v.Options.Values(), ", "))
		a.printf("     Placeholders: %d positions available\n", len(v.Placeholders))
		a.printf("     Decoration Methods: %s\n\n", strings.Join(v.DecorationMethods, ", "))
	}
}

func (a *app) debugBlueprintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "debug-blueprint BLUEPRINT_ID",
		Short: "Show a blueprint, its providers and the first provider's variants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := intArgs(args)
			if err != nil {
				return err
			}
			client, err := a.printifyClient(cmd.Context(), false)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			bp, err := client.GetBlueprint(ctx, ids[0])
			if err != nil {
				return err
			}
			a.heading("Blueprint %d: %s", bp.ID, bp.Title)
			a.printf("   Brand: %s, Model: %s\n", bp.Brand, bp.Model)

			providers, err := client.GetPrintProviders(ctx, bp.ID)
			if err != nil {
				return err
			}
			a.success("Found %d print providers:", len(providers))
			for i, pp := range providers {
				a.printf("  %d. ID: %d - %s\n", i+1, pp.ID, pp.Title)
				a.printf("     Location: %s\n", pp.Location)
			}
			if len(providers) == 0 {
				return nil
			}

			first := providers[0]
			a.heading("Using first print provider: %s (ID: %d)", first.Title, first.ID)
			variants, err := client.GetVariants(ctx, bp.ID, first.ID)
			if err != nil {
				return err
			}
			a.printVariants(variants)
			return nil
		},
	}
}

func (a *app) debugStructureCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "debug-structure BLUEPRINT_ID PRINT_PROVIDER_ID",
		Short: "Print the recommended product.json structure for a pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := intArgs(args)
			if err != nil {
				return err
			}
			synth, err := a.synthesizer(cmd.Context())
			if err != nil {
				return err
			}
			structure, err := synth.RecommendedStructure(cmd.Context(), ids[0], ids[1])
			if err != nil {
				return err
			}

			a.heading("Recommended product.json structure:")
			data, err := json.MarshalIndent(structure.Template, "", "  ")
			if err != nil {
				return err
			}
			a.printf("%s\n\n", data)

			a.heading("Available print positions for this variant:")
			for i, pos := range structure.Positions {
				a.printf("  %d. %s\n", i+1, pos)
			}
			a.hint("%d variants available for this combination", structure.Variants)
			return nil
		},
	}
}

func (a *app) debugPrintProviderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "debug-print-provider PROVIDER_ID",
		Short: "Show a print provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := intArgs(args)
			if err != nil {
				return err
			}
			client, err := a.printifyClient(cmd.Context(), false)
			if err != nil {
				return err
			}
			pp, err := client.GetPrintProvider(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			a.heading("Print Provider Details:")
			a.printf("  ID: %d\n", pp.ID)
			a.printf("  Title: %s\n", pp.Title)
			a.printf("  Location: %s\n", pp.Location)
			a.hint("To see variants for this provider, run: printkit debug-structure <blueprint_id> %d", pp.ID)
			return nil
		},
	}
}
