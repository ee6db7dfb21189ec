package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/gcclean/trash-service/internal/config"
)

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cfg config.CloudinaryConfig) (*Cloudinary, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary configuration is missing")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, folder: strings.Trim(cfg.Folder, "/")}, nil
}

func (c *Cloudinary) Put(ctx context.Context, objectPath string, data []byte, overwrite bool) error {
	result, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     c.publicID(objectPath),
		Overwrite:    &overwrite,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("failed to upload to cloudinary: %s", result.Error.Message)
	}
	return nil
}

func (c *Cloudinary) PublicURL(objectPath string) string {
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/%s%s",
		c.cld.Config.Cloud.CloudName,
		c.publicID(objectPath),
		path.Ext(objectPath),
	)
}

func (c *Cloudinary) Delete(ctx context.Context, objectPath string) error {
	result, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     c.publicID(objectPath),
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("failed to delete image: %s", result.Error.Message)
	}
	return nil
}

// publicID drops the extension; Cloudinary derives the format from the URL.
func (c *Cloudinary) publicID(objectPath string) string {
	id := strings.TrimSuffix(strings.TrimLeft(objectPath, "/"), path.Ext(objectPath))
	if c.folder == "" {
		return id
	}
	return c.folder + "/" + id
}
