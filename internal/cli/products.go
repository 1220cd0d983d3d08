package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"printkit/internal/database"
	"printkit/internal/services/printify"
	"printkit/internal/services/products"
)

func (a *app) productPath(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.DefaultProductJSONPath
}

func (a *app) printProduct(p *printify.Product) {
	a.success("Product created successfully")
	a.printf("   ID: %s\n", p.ID)
	a.printf("   Title: %s\n", p.Title)
	a.printf("   Description: %s\n", p.Description)
	a.printf("   Blueprint ID: %d\n", p.BlueprintID)
	a.printf("   Print Provider ID: %d\n", p.PrintProviderID)
	a.printf("   Variants: %d\n", len(p.Variants))
	a.printf("   Print Areas: %d\n", len(p.PrintAreas))
}

func (a *app) createCommand() *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product from a JSON descriptor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.productService(cmd.Context(), true)
			if err != nil {
				return err
			}
			path := a.productPath(filePath)
			a.heading("Creating product from: %s", path)

			product, err := svc.CreateFromFile(cmd.Context(), path)
			if err != nil {
				return err
			}
			a.printProduct(product)
			return nil
		},
	}
	cmd.Flags().StringVar(&filePath, "file-path", "", "Path to product JSON file (default DEFAULT_PRODUCT_JSON_PATH)")
	return cmd
}

func (a *app) listShopsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-shops",
		Short: "List the shops of the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.printifyClient(cmd.Context(), false)
			if err != nil {
				return err
			}
			a.heading("Fetching shops...")
			shops, err := client.GetShops(cmd.Context())
			if err != nil {
				return err
			}
			a.success("Found %d shops:", len(shops))
			for _, shop := range shops {
				a.printf("   ID: %s - %s (%s)\n", shop.ID, shop.Title, shop.SalesChannel)
			}
			return nil
		},
	}
}

func (a *app) listProductsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-products",
		Short: "List the products of the shop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.productService(cmd.Context(), true)
			if err != nil {
				return err
			}
			a.heading("Fetching products...")
			list, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			a.success("Found %d products:", len(list))
			for _, p := range list {
				a.printf("   ID: %s - %s\n", p.ID, p.Title)
				a.printf("     Blueprint: %d, Provider: %d\n", p.BlueprintID, p.PrintProviderID)
			}
			return nil
		},
	}
}

func (a *app) getProductCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get-product PRODUCT_ID",
		Short: "Show one product of the shop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.productService(cmd.Context(), true)
			if err != nil {
				return err
			}
			p, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.heading("%s", p.Title)
			a.printf("   ID: %s\n", p.ID)
			a.printf("   Blueprint: %d, Provider: %d\n", p.BlueprintID, p.PrintProviderID)
			a.printf("   Variants: %d, Print Areas: %d, Images: %d\n", len(p.Variants), len(p.PrintAreas), len(p.Images))
			a.printf("   Visible: %t, Locked: %t\n", p.Visible, p.IsLocked)

			if rec, err := svc.Record(cmd.Context(), p.ID); err == nil {
				a.printf("   Created with printkit on %s from %s (%s)\n",
					rec.CreatedAt.Format("2006-01-02 15:04"), rec.SourcePath, rec.Status)
			} else if !errors.Is(err, products.ErrLedgerDisabled) && !errors.Is(err, database.ErrNotFound) {
				a.logger.Warn("Failed to read ledger entry for %s: %v", p.ID, err)
			}
			return nil
		},
	}
}

func (a *app) deleteProductCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-product PRODUCT_ID",
		Short: "Delete a product from the shop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.productService(cmd.Context(), true)
			if err != nil {
				return err
			}
			if err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.success("Deleted product %s", args[0])
			return nil
		},
	}
}

func (a *app) publishProductCommand() *cobra.Command {
	var channel string
	cmd := &cobra.Command{
		Use:   "publish-product PRODUCT_ID",
		Short: "Publish a product to its sales channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.productService(cmd.Context(), true)
			if err != nil {
				return err
			}
			if err := svc.Publish(cmd.Context(), args[0], channel); err != nil {
				return err
			}
			a.success("Published product %s", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&channel, "sales-channel", "", "Sales channel id to publish to")
	return cmd
}

func (a *app) historyCommand() *cobra.Command {
	var (
		status string
		limit  int
		images bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List products created with printkit (requires DATABASE_URL)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.productService(cmd.Context(), false)
			if err != nil {
				return err
			}
			if images {
				return a.printImages(cmd.Context(), svc, limit)
			}
			records, err := svc.History(cmd.Context(), status, limit)
			if err != nil {
				return err
			}
			a.heading("Created products (%d)", len(records))
			for _, r := range records {
				a.printf("   %s  %-9s %s  [%d/%d, %d variants]\n",
					r.CreatedAt.Format("2006-01-02 15:04"), r.Status, r.RemoteID,
					r.BlueprintID, r.PrintProviderID, r.VariantCount)
				a.printf("     %s\n", r.Title)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only show products with this status (CREATED, PUBLISHED, DELETED)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of records")
	cmd.Flags().BoolVar(&images, "images", false, "List uploaded images instead of products")
	return cmd
}

func (a *app) printImages(ctx context.Context, svc *products.Service, limit int) error {
	records, err := svc.Images(ctx, limit)
	if err != nil {
		return err
	}
	a.heading("Uploaded images (%d)", len(records))
	for _, r := range records {
		a.printf("   %s  %s  %s\n", r.CreatedAt.Format("2006-01-02 15:04"), r.AssetID, r.FileName)
		if url := r.PreviewURL; url != "" {
			a.printf("     %s\n", url)
		} else if r.URL != "" {
			a.printf("     %s\n", r.URL)
		}
	}
	return nil
}
