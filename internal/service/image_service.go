package service

import (
	"context"
	"strings"

	"tasleem/internal/imagehost"
	"tasleem/internal/util"

	"go.uber.org/zap"
)

// ImageHost stores product images
type ImageHost interface {
	Upload(ctx context.Context, image string) (*imagehost.UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

// ImageService uploads and removes product images
type ImageService struct {
	host   ImageHost
	logger *zap.Logger
}

// NewImageService creates a new image service. host may be nil when no
// image host is configured.
func NewImageService(host ImageHost) *ImageService {
	return &ImageService{
		host:   host,
		logger: util.GetLogger(),
	}
}

// Upload hosts image, a data URI or URL
func (is *ImageService) Upload(ctx context.Context, image string) (*imagehost.UploadResult, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, newError(KindValidation, MsgImageRequired)
	}
	if is.host == nil {
		return nil, &Error{Kind: KindUnexpected, Message: MsgImageUploadFailed, Err: imagehost.ErrNotConfigured}
	}

	result, err := is.host.Upload(ctx, image)
	if err != nil {
		is.logger.Error("Image upload failed", zap.Error(err))
		return nil, &Error{Kind: KindUnexpected, Message: MsgImageUploadFailed, Err: err}
	}
	return result, nil
}

// Delete removes a hosted image
func (is *ImageService) Delete(ctx context.Context, publicID string) error {
	if strings.TrimSpace(publicID) == "" {
		return newError(KindValidation, MsgImageRequired)
	}
	if is.host == nil {
		return &Error{Kind: KindUnexpected, Message: MsgInternal, Err: imagehost.ErrNotConfigured}
	}

	if err := is.host.Delete(ctx, publicID); err != nil {
		return Unexpected(err)
	}
	return nil
}
