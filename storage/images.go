package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tour-booking-server/config"

	"github.com/cloudinary/cloudinary-go"
	"github.com/cloudinary/cloudinary-go/api/uploader"
	"github.com/kataras/golog"
)

var ErrImageStoreDisabled = errors.New("image storage is not configured")

// ImageStore hosts tour image assets.
type ImageStore interface {
	Upload(ctx context.Context, publicID, base64Image string) (UploadedImage, error)
	Destroy(ctx context.Context, publicID string) error
}

type UploadedImage struct {
	URL      string
	PublicID string
}

type CloudinaryImageStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// InitializeImageStore returns a Cloudinary backed store, or a store that
// rejects uploads when no credentials are configured.
func InitializeImageStore(cfg config.Cloudinary) (ImageStore, error) {
	if !cfg.Enabled() {
		golog.Warn("cloudinary credentials missing, image uploads disabled")
		return disabledImageStore{}, nil
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryImageStore{cld: cld, folder: cfg.Folder}, nil
}

func (s *CloudinaryImageStore) Upload(ctx context.Context, publicID, base64Image string) (UploadedImage, error) {
	payload := base64Image
	if i := strings.Index(payload, ","); i != -1 {
		payload = payload[i+1:]
	}
	if payload == "" {
		return UploadedImage{}, errors.New("empty image payload")
	}

	resp, err := s.cld.Upload.Upload(ctx, "data:image/jpeg;base64,"+payload, uploader.UploadParams{
		PublicID: publicID,
		Folder:   s.folder,
	})
	if err != nil {
		return UploadedImage{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return UploadedImage{}, fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return UploadedImage{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

func (s *CloudinaryImageStore) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}

type disabledImageStore struct{}

func (disabledImageStore) Upload(context.Context, string, string) (UploadedImage, error) {
	return UploadedImage{}, ErrImageStoreDisabled
}

func (disabledImageStore) Destroy(context.Context, string) error { return nil }
