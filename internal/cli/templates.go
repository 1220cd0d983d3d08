package cli

import (
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"printkit/internal/discovery"
	"printkit/internal/templates"
)

func (a *app) generateTemplateCommand() *cobra.Command {
	var (
		output      string
		allVariants bool
		variantIDs  []int
	)
	cmd := &cobra.Command{
		Use:   "generate-template BLUEPRINT_ID PRINT_PROVIDER_ID",
		Short: "Write a product descriptor template for a blueprint/provider pair",
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
			path := output
			if path == "" {
				path = templates.PopularPath(".", templates.Combination{BlueprintID: ids[0], PrintProviderID: ids[1]})
			}
			a.heading("Generating template for blueprint %d, print provider %d...", ids[0], ids[1])

			d, err := synth.GenerateFile(cmd.Context(), ids[0], ids[1], path, templates.GenerateOptions{
				AllVariants: allVariants,
				VariantIDs:  variantIDs,
			})
			if err != nil {
				return err
			}
			a.success("Template generated successfully: %s (%d variants)", path, len(d.Variants))
			a.hint("You can now edit this template and use it to create products!")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default template-<bp>-<pp>.json)")
	cmd.Flags().BoolVar(&allVariants, "all-variants", false, "Include every variant instead of the first one")
	cmd.Flags().IntSliceVar(&variantIDs, "variant", nil, "Only include these variant ids")
	return cmd
}

func (a *app) generatePopularTemplatesCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "generate-popular-templates",
		Short: "Write templates for the popular blueprint/provider pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			synth, err := a.synthesizer(cmd.Context())
			if err != nil {
				return err
			}
			a.heading("Generating popular product templates...")
			files, err := synth.GeneratePopular(cmd.Context(), dir)
			if err != nil {
				return err
			}
			a.success("Generated %d popular templates:", len(files))
			for _, f := range files {
				a.printf("   %s\n", f)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write the templates to")
	return cmd
}

func (a *app) listTemplatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-templates",
		Short: "List the popular pairs available in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			synth, err := a.synthesizer(cmd.Context())
			if err != nil {
				return err
			}
			a.heading("Listing available templates...")
			available, err := synth.ListAvailable(cmd.Context())
			if err != nil {
				return err
			}
			a.success("Found %d available templates:", len(available))
			for _, t := range available {
				a.printf("   Blueprint %d, Provider %d: %s\n", t.BlueprintID, t.PrintProviderID, t.Title)
			}
			return nil
		},
	}
}

func (a *app) generateAllTemplatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-all-templates",
		Short: "Write a template for every blueprint/provider pair in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			synth, err := a.synthesizer(cmd.Context())
			if err != nil {
				return err
			}
			a.heading("Generating ALL templates for every blueprint/print provider combination...")
			manifest, err := synth.GenerateAll(cmd.Context())
			if err != nil {
				return err
			}
			a.success("Generated %d templates across %d blueprints", manifest.TotalTemplates, manifest.TotalBlueprints)
			if len(manifest.Skipped) > 0 {
				a.hint("Skipped %d combinations", len(manifest.Skipped))
			}
			a.printf("   Templates saved to: %s\n", manifest.TemplatesDir)
			a.printf("   Summary saved to: %s\n", filepath.Join(synth.OutputDir(), templates.SummaryFile))
			return nil
		},
	}
}

func (a *app) listAllTemplatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-all-templates",
		Short: "Show the summary of the last generate-all-templates run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			synth, err := a.synthesizer(cmd.Context())
			if err != nil {
				return err
			}
			a.heading("Listing all generated templates...")
			info, err := synth.Info()
			if err != nil {
				return err
			}
			a.success("Found %d generated templates:", info.TotalTemplates)
			a.printf("   Templates directory: %s\n", synth.OutputDir())
			a.printf("   Summary file: %s\n", filepath.Join(synth.OutputDir(), templates.SummaryFile))
			if info.GeneratedAt != "" {
				a.printf("   Generated at: %s\n", info.GeneratedAt)
			}

			if len(info.Categories) > 0 {
				a.heading("Categories:")
				names := make([]string, 0, len(info.Categories))
				for name := range info.Categories {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					a.printf("   %s: %d templates\n", name, info.Categories[name])
				}
			}
			return nil
		},
	}
}

func (a *app) generateSummaryCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "generate-ai-summary",
		Short: "Write a markdown catalogue of the generated templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			synth, err := a.synthesizer(cmd.Context())
			if err != nil {
				return err
			}
			a.heading("Generating template summary...")
			overview, err := synth.Overview(discovery.Categorize)
			if err != nil {
				return err
			}
			if err := templates.WriteSummaryMarkdown(output, overview); err != nil {
				return err
			}
			a.success("Summary generated: %s", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", templates.SummaryMarkdownFile, "Markdown output file")
	return cmd
}

func (a *app) showContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show-ai-context",
		Short: "Show the generated templates grouped by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			synth, err := a.synthesizer(cmd.Context())
			if err != nil {
				return err
			}
			overview, err := synth.Overview(discovery.Categorize)
			if err != nil {
				return err
			}
			a.heading("Template context:")
			a.printf("   Total Templates: %d\n", overview.TotalTemplates)
			a.printf("   Total Blueprints: %d\n", overview.TotalBlueprints)
			a.printf("   Categories: %d\n", len(overview.Categories))
			for _, name := range overview.CategoryNames() {
				a.printf("   %s: %d templates\n", name, len(overview.Categories[name]))
			}
			return nil
		},
	}
}
