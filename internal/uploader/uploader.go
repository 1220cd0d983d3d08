package uploader

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"

	"printkit/internal/events"
	"printkit/internal/logger"
	"printkit/internal/models"
	"printkit/internal/services/printify"
)

var ErrImageNotFound = errors.New("image file not found")

const (
	SourceFile = "file"
	SourceURL  = "url"
)

// ImageClient is the upload part of the API client.
type ImageClient interface {
	UploadImageContents(ctx context.Context, fileName, contents string) (*printify.ImageAsset, error)
	UploadImageURL(ctx context.Context, fileName, url string) (*printify.ImageAsset, error)
}

// Ledger records uploaded assets.
type Ledger interface {
	RecordImage(ctx context.Context, rec *models.ImageRecord) error
}

// Asset is an uploaded image as referenced from a descriptor.
type Asset struct {
	ID         string `json:"id"`
	FileName   string `json:"file_name"`
	URL        string `json:"url"`
	PreviewURL string `json:"preview_url"`
}

type Uploader struct {
	client    ImageClient
	logger    *logger.Logger
	ledger    Ledger
	publisher events.Publisher
	maxWidth  int
}

type Option func(*Uploader)

// WithMaxWidth downscales local images wider than width before upload.
func WithMaxWidth(width int) Option {
	return func(u *Uploader) { u.maxWidth = width }
}

func WithLedger(l Ledger) Option {
	return func(u *Uploader) { u.ledger = l }
}

func WithPublisher(p events.Publisher) Option {
	return func(u *Uploader) { u.publisher = p }
}

func New(client ImageClient, logger *logger.Logger, opts ...Option) *Uploader {
	u := &Uploader{
		client:    client,
		logger:    logger,
		publisher: events.Nop{},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// UploadFile uploads a local image as base64 contents.
func (u *Uploader) UploadFile(ctx context.Context, filePath string) (*Asset, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, filePath)
		}
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrImageNotFound, filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	fileName := filepath.Base(filePath)
	if u.maxWidth > 0 {
		resized, ok, err := Downscale(data, u.maxWidth)
		if err != nil {
			u.logger.Warn("Could not decode %s for resizing, uploading as is: %v", fileName, err)
		} else if ok {
			u.logger.Info("Resized %s to %dpx wide", fileName, u.maxWidth)
			data = resized
			fileName = strings.TrimSuffix(fileName, filepath.Ext(fileName)) + ".png"
		}
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	asset, err := u.client.UploadImageContents(ctx, fileName, encoded)
	if err != nil {
		return nil, err
	}
	return u.finish(ctx, asset, fileName, SourceFile), nil
}

// UploadURL asks the remote service to fetch the image at imageURL.
func (u *Uploader) UploadURL(ctx context.Context, imageURL, fileName string) (*Asset, error) {
	if fileName == "" {
		fileName = FileNameFromURL(imageURL)
	}
	asset, err := u.client.UploadImageURL(ctx, fileName, imageURL)
	if err != nil {
		return nil, err
	}
	return u.finish(ctx, asset, fileName, SourceURL), nil
}

func (u *Uploader) finish(ctx context.Context, asset *printify.ImageAsset, fileName, source string) *Asset {
	out := &Asset{
		ID:         asset.ID,
		FileName:   fileName,
		URL:        asset.CanonicalURL(),
		PreviewURL: asset.PreviewURL,
	}

	if u.ledger != nil {
		rec := &models.ImageRecord{
			AssetID:    out.ID,
			FileName:   fileName,
			Source:     source,
			URL:        out.URL,
			PreviewURL: out.PreviewURL,
		}
		if err := u.ledger.RecordImage(ctx, rec); err != nil {
			u.logger.Warn("Failed to record upload %s: %v", out.ID, err)
		}
	}
	if err := u.publisher.Publish(ctx, events.ImageUploaded, map[string]interface{}{
		"asset_id":  out.ID,
		"file_name": fileName,
		"source":    source,
	}); err != nil {
		u.logger.Warn("Failed to publish upload event: %v", err)
	}
	return out
}

// Downscale re-encodes data as PNG at maxWidth when the image is wider,
// keeping the aspect ratio. ok is false when no resize was needed.
func Downscale(data []byte, maxWidth int) ([]byte, bool, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("decode image: %w", err)
	}
	if maxWidth <= 0 || img.Bounds().Dx() <= maxWidth {
		return data, false, nil
	}

	resized := resize.Resize(uint(maxWidth), 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return nil, false, fmt.Errorf("encode resized image: %w", err)
	}
	return buf.Bytes(), true, nil
}

// FileNameFromURL derives an upload file name from the last path segment.
func FileNameFromURL(imageURL string) string {
	if parsed, err := url.Parse(imageURL); err == nil {
		if base := path.Base(parsed.Path); base != "." && base != "/" && base != "" {
			return base
		}
	}
	return "image.png"
}

// ApplyAsset points every placeholder image of the descriptor at asset.
func ApplyAsset(d *models.ProductDescriptor, asset *Asset) int {
	n := 0
	d.Images(func(img *models.PlaceholderImage) {
		img.ID = asset.ID
		img.URL = asset.URL
		img.PreviewURL = asset.PreviewURL
		n++
	})
	return n
}

func isRemote(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// ProcessDescriptor uploads every remote image of the descriptor by URL and
// substitutes the uploaded asset. Images that fail to upload are kept as
// they were. Sales channel properties are dropped. It returns the number of
// images replaced.
func (u *Uploader) ProcessDescriptor(ctx context.Context, d *models.ProductDescriptor) (int, error) {
	uploaded := map[string]*Asset{}
	replaced := 0

	var ctxErr error
	d.Images(func(img *models.PlaceholderImage) {
		if ctxErr != nil || !isRemote(img.URL) {
			return
		}
		if ctxErr = ctx.Err(); ctxErr != nil {
			return
		}

		asset, ok := uploaded[img.URL]
		if !ok {
			var err error
			asset, err = u.UploadURL(ctx, img.URL, "")
			if err != nil {
				u.logger.Warn("Failed to upload %s, keeping original: %v", img.URL, err)
				return
			}
			uploaded[img.URL] = asset
		}

		img.ID = asset.ID
		img.URL = asset.URL
		img.PreviewURL = asset.PreviewURL
		replaced++
	})
	if ctxErr != nil {
		return replaced, ctxErr
	}

	d.SalesChannelProperties = nil
	return replaced, nil
}

// ProcessedPath is the output path used for a processed descriptor.
func ProcessedPath(src, suffix string) string {
	ext := filepath.Ext(src)
	return strings.TrimSuffix(src, ext) + "-" + suffix + ext
}
