package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"printkit/internal/models"
	"printkit/internal/uploader"
)

func (a *app) uploadImageCommand() *cobra.Command {
	var fileName string
	cmd := &cobra.Command{
		Use:   "upload-image IMAGE_PATH_OR_URL",
		Short: "Upload an image file, or an http(s) URL, to the media library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, err := a.imageUploader(cmd.Context())
			if err != nil {
				return err
			}
			a.heading("Uploading image: %s", args[0])

			var asset *uploader.Asset
			if isURL(args[0]) {
				asset, err = up.UploadURL(cmd.Context(), args[0], fileName)
			} else {
				asset, err = up.UploadFile(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			a.printAsset(asset)
			return nil
		},
	}
	cmd.Flags().StringVar(&fileName, "file-name", "", "File name for URL uploads (default: last path segment)")
	return cmd
}

func (a *app) printAsset(asset *uploader.Asset) {
	a.success("Image uploaded successfully!")
	a.printf("   ID: %s\n", asset.ID)
	a.printf("   URL: %s\n", asset.URL)
	a.printf("   Preview URL: %s\n", asset.PreviewURL)
}

func (a *app) createWithImageCommand() *cobra.Command {
	var (
		filePath  string
		imagePath string
	)
	cmd := &cobra.Command{
		Use:   "create-with-image",
		Short: "Upload an image, point every placeholder at it and create the product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			up, err := a.imageUploader(ctx)
			if err != nil {
				return err
			}
			svc, err := a.productService(ctx, true)
			if err != nil {
				return err
			}
			path := a.productPath(filePath)
			a.heading("Creating product with uploaded image from: %s", path)

			if imagePath == "" {
				a.hint("Preparing test image...")
				imagePath, err = uploader.CreateTestImage("", "printkit")
				if err != nil {
					return err
				}
			}
			asset, err := up.UploadFile(ctx, imagePath)
			if err != nil {
				return err
			}
			a.printAsset(asset)

			d, err := models.LoadDescriptor(path)
			if err != nil {
				return err
			}
			n := uploader.ApplyAsset(d, asset)
			updated := uploader.ProcessedPath(path, "with-image")
			if err := models.SaveDescriptor(updated, d); err != nil {
				return err
			}
			a.hint("Updated %d images, saved %s", n, updated)

			product, err := svc.Create(ctx, d, updated)
			if err != nil {
				return err
			}
			a.printProduct(product)
			return nil
		},
	}
	cmd.Flags().StringVar(&filePath, "file-path", "", "Path to product JSON file (default DEFAULT_PRODUCT_JSON_PATH)")
	cmd.Flags().StringVar(&imagePath, "image", "", "Image to upload (default: a generated test image)")
	return cmd
}

func (a *app) processWithImagesCommand() *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "process-with-images",
		Short: "Upload every remote image of a descriptor and create the product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			up, err := a.imageUploader(ctx)
			if err != nil {
				return err
			}
			svc, err := a.productService(ctx, true)
			if err != nil {
				return err
			}
			path := a.productPath(filePath)
			a.heading("Processing product with images from: %s", path)

			d, err := models.LoadDescriptor(path)
			if err != nil {
				return err
			}
			n, err := up.ProcessDescriptor(ctx, d)
			if err != nil {
				return err
			}
			processed := uploader.ProcessedPath(path, "processed")
			if err := models.SaveDescriptor(processed, d); err != nil {
				return err
			}
			a.success("Product processed successfully: %s (%d images replaced)", processed, n)

			product, err := svc.Create(ctx, d, processed)
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

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
