package services

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// PostImageFolder is where community post images are stored.
const PostImageFolder = "mindhaven/posts"

// Uploader stores a file and returns its public HTTPS URL.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}

type CloudinaryService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryService{cld: cld, folder: PostImageFolder}, nil
}

func (s *CloudinaryService) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	res, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         s.folder,
		ResourceType:   "image",
		UniqueFilename: boolPtr(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to Cloudinary: %w", filename, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected %s: %s", filename, res.Error.Message)
	}
	return res.SecureURL, nil
}

func boolPtr(b bool) *bool { return &b }
