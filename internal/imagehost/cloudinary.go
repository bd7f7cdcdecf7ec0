package imagehost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tasleem/internal/util"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// Product images are limited to 800x800 and auto-compressed
const productTransformation = "c_limit,h_800,w_800/q_auto"

// ErrNotConfigured is returned when no Cloudinary credentials are set
var ErrNotConfigured = errors.New("image host not configured")

// UploadResult describes a hosted image
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// Cloudinary uploads product images to a Cloudinary folder
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
	logger *zap.Logger
}

// NewCloudinary creates a Cloudinary client for folder
func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}

	return &Cloudinary{
		cld:    cld,
		folder: folder,
		logger: util.GetLogger(),
	}, nil
}

// Upload uploads image, a data URI or a remote URL
func (c *Cloudinary) Upload(ctx context.Context, image string) (*UploadResult, error) {
	ctx, span := util.StartSpan(ctx, "Cloudinary.Upload")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ImageUploadLatency.Observe(time.Since(start).Seconds())
	}()

	resp, err := c.cld.Upload.Upload(ctx, image, uploader.UploadParams{
		Folder:         c.folder,
		Transformation: productTransformation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload image: %s", resp.Error.Message)
	}

	c.logger.Info("Image uploaded", zap.String("public_id", resp.PublicID))

	return &UploadResult{
		URL:      resp.SecureURL,
		PublicID: resp.PublicID,
	}, nil
}

// Delete destroys a hosted image
func (c *Cloudinary) Delete(ctx context.Context, publicID string) error {
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("failed to delete image: %s", resp.Error.Message)
	}

	c.logger.Info("Image deleted",
		zap.String("public_id", publicID),
		zap.String("result", resp.Result))
	return nil
}
