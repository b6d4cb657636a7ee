// file: internal/services/file_service.go
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"campusboard/internal/config"
	"campusboard/internal/events"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// fileService implements FileService on top of Cloudinary
type fileService struct {
	cloudinary *cloudinary.Cloudinary
	events     events.EventBus
	logger     *zap.Logger
	cfg        *config.CloudinaryConfig
}

const uploadTimeout = 2 * time.Minute

// NewFileService creates a new file service
func NewFileService(
	cld *cloudinary.Cloudinary,
	eventBus events.EventBus,
	logger *zap.Logger,
	cfg *config.CloudinaryConfig,
) FileService {
	return &fileService{
		cloudinary: cld,
		events:     eventBus,
		logger:     logger,
		cfg:        cfg,
	}
}

// ===============================
// UPLOAD OPERATIONS
// ===============================

// UploadIDImage stores a user's ID document for verification review.
// Accepts images and PDFs per the configured format allowlist.
func (s *fileService) UploadIDImage(ctx context.Context, req *FileUploadRequest) (*FileUploadResult, error) {
	folder := req.Folder
	if folder == "" {
		folder = s.cfg.UploadFolder
	}
	return s.upload(ctx, req, folder, "id_document")
}

// UploadProfileImage stores a user's profile picture
func (s *fileService) UploadProfileImage(ctx context.Context, req *FileUploadRequest) (*FileUploadResult, error) {
	folder := req.Folder
	if folder == "" {
		folder = "campusboard/profiles"
	}
	if strings.HasSuffix(strings.ToLower(req.Upload.Filename), ".pdf") {
		return nil, NewValidationError("profile pictures must be images", nil)
	}
	return s.upload(ctx, req, folder, "profile_image")
}

func (s *fileService) upload(ctx context.Context, req *FileUploadRequest, folder, fileType string) (*FileUploadResult, error) {
	if err := s.validateUpload(req); err != nil {
		return nil, err
	}

	uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	params := uploader.UploadParams{
		Folder:         fmt.Sprintf("%s/user_%d", folder, req.UserID),
		ResourceType:   "auto",
		UseFilename:    boolPtr(false),
		UniqueFilename: boolPtr(true),
		Tags:           []string{"campusboard", fileType},
	}

	// Cloudinary uploads are retried with exponential backoff; transient
	// network failures are common enough on the upload path.
	var result *uploader.UploadResult
	operation := func() error {
		var err error
		result, err = s.cloudinary.Upload.Upload(uploadCtx, req.Upload.File, params)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), uploadCtx)
	if err := backoff.Retry(operation, policy); err != nil {
		s.logger.Error("Failed to upload file",
			zap.Error(err),
			zap.Int64("user_id", req.UserID),
			zap.String("filename", req.Upload.Filename),
			zap.String("file_type", fileType),
		)
		return nil, NewServiceUnavailableError("file storage is temporarily unavailable")
	}

	uploadResult := &FileUploadResult{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Size:     int64(result.Bytes),
		Format:   result.Format,
		Width:    result.Width,
		Height:   result.Height,
	}

	if pubErr := s.events.PublishAsync(ctx, events.NewFileUploadedEvent(
		fileType, uploadResult.Size, uploadResult.URL, uploadResult.PublicID, &req.UserID,
	)); pubErr != nil {
		s.logger.Warn("Failed to publish file uploaded event", zap.Error(pubErr))
	}

	s.logger.Info("File uploaded",
		zap.Int64("user_id", req.UserID),
		zap.String("public_id", uploadResult.PublicID),
		zap.String("file_type", fileType),
		zap.Int64("size", uploadResult.Size),
	)

	return uploadResult, nil
}

// DeleteFile removes a stored file by its public ID
func (s *fileService) DeleteFile(ctx context.Context, publicID string) error {
	if publicID == "" {
		return NewValidationError("public ID is required", nil)
	}

	_, err := s.cloudinary.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		s.logger.Error("Failed to delete file", zap.Error(err), zap.String("public_id", publicID))
		return NewInternalError("failed to delete file")
	}

	return nil
}

// ===============================
// VALIDATION
// ===============================

func (s *fileService) validateUpload(req *FileUploadRequest) error {
	if req.Upload == nil || req.Upload.File == nil {
		return NewValidationError("no file provided", nil)
	}
	if req.Upload.Size <= 0 {
		return NewValidationError("file is empty", nil)
	}
	if req.Upload.Size > s.cfg.MaxFileSize {
		return NewValidationError(
			fmt.Sprintf("file exceeds the %dMB size limit", s.cfg.MaxFileSize/(1024*1024)), nil)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(req.Upload.Filename)), ".")
	if !slices.Contains(s.cfg.AllowedFormats, ext) {
		return NewValidationError(
			fmt.Sprintf("unsupported file format %q, allowed: %s", ext, strings.Join(s.cfg.AllowedFormats, ", ")), nil)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
