package printify

import (
	"context"
	"errors"
	"net/http"
)

const uploadsPath = "/uploads/images.json"

// UploadImageContents uploads base64-encoded image bytes to the media library.
func (c *Client) UploadImageContents(ctx context.Context, fileName, contents string) (*ImageAsset, error) {
	if contents == "" {
		return nil, errors.New("image contents are empty")
	}
	return c.upload(ctx, uploadRequest{FileName: fileName, Contents: contents})
}

// UploadImageURL asks the remote service to fetch an image from url.
func (c *Client) UploadImageURL(ctx context.Context, fileName, url string) (*ImageAsset, error) {
	if url == "" {
		return nil, errors.New("image url is empty")
	}
	return c.upload(ctx, uploadRequest{FileName: fileName, URL: url})
}

func (c *Client) upload(ctx context.Context, req uploadRequest) (*ImageAsset, error) {
	var asset ImageAsset
	if err := c.send(ctx, c.uploadClient(), http.MethodPost, uploadsPath, req, &asset); err != nil {
		return nil, err
	}
	c.logger.Info("Uploaded image %s as %s", req.FileName, asset.ID)
	return &asset, nil
}
