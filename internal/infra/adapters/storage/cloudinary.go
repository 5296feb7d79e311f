package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
	"github.com/google/uuid"

	"carbusiness-backend/internal/domain/ports/adapter"
)

var _ adapter.FileStorage = (*CloudinaryStorage)(nil)

// CloudinaryStorage stores payment proofs in a Cloudinary folder and returns
// the delivery URL that gets attached to the activation code row.
type CloudinaryStorage struct {
	uploader *uploader.API
	folder   string
}

func NewCloudinaryStorage(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStorage, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, fmt.Errorf("cloudinary uploader: %w", err)
	}
	if folder == "" {
		folder = "payment-proofs"
	}
	return &CloudinaryStorage{uploader: up, folder: folder}, nil
}

func (s *CloudinaryStorage) UploadProof(ctx context.Context, userID, filename string, r io.Reader) (string, error) {
	// Public ID mirrors the bucket layout: <folder>/<userID>/<ts>-<rand><ext>.
	ext := strings.ToLower(path.Ext(filename))
	publicID := fmt.Sprintf("%s/%d-%s%s", userID, time.Now().Unix(), uuid.NewString()[:8], ext)

	result, err := s.uploader.Upload(ctx, r, uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     publicID,
		ResourceType: "raw", // proofs are PDFs, not images
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return result.SecureURL, nil
}
