package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Uploader is the blob-upload capability: it stores an image and returns
// its public URL.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader) (string, error)
}

type cloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary builds an Uploader from a cloudinary:// URL.
func NewCloudinary(url string) (Uploader, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	cld.Config.URL.Secure = true
	return &cloudinaryUploader{cld: cld}, nil
}

func (u *cloudinaryUploader) Upload(ctx context.Context, file io.Reader) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{ResourceType: "image"})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return resp.SecureURL, nil
}
