package service

import (
	"context"
	"errors"
	"io"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/storage"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

var ErrStorageDisabled = errors.New("object storage is not configured")

// ObjectStorage is the part of storage.S3Storage the upload flows need.
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	PublicURL(key string) string
}

type UploadResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type PresignResult struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
}

// FileUpload describes one multipart file.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type UploadService interface {
	UploadImage(ctx context.Context, folder string, file FileUpload) (*UploadResult, error)
	PresignImage(ctx context.Context, folder, filename, contentType string) (*PresignResult, error)
	UploadAvatar(ctx context.Context, userID uint, file FileUpload) (*model.User, error)
}

type uploadService struct {
	objects  ObjectStorage
	userRepo repository.UserRepository
}

// NewUploadService accepts a nil objects store; every call then fails with
// ErrStorageDisabled.
func NewUploadService(objects ObjectStorage, userRepo repository.UserRepository) UploadService {
	return &uploadService{objects: objects, userRepo: userRepo}
}

func (s *uploadService) UploadImage(ctx context.Context, folder string, file FileUpload) (*UploadResult, error) {
	if s.objects == nil {
		return nil, ErrStorageDisabled
	}
	if err := storage.ValidateImage(file.ContentType, file.Size); err != nil {
		return nil, err
	}
	key, err := storage.NewObjectKey(folder, file.Filename, file.ContentType)
	if err != nil {
		return nil, err
	}

	url, err := s.objects.Upload(ctx, key, file.ContentType, file.Body, file.Size)
	if err != nil {
		logger.Error("Failed to upload image", err, map[string]interface{}{
			"key": key,
		})
		return nil, err
	}

	logger.Info("Image uploaded", map[string]interface{}{
		"key":  key,
		"size": file.Size,
	})
	return &UploadResult{Key: key, URL: url}, nil
}

// PresignImage returns a URL the client can PUT the image to directly.
func (s *uploadService) PresignImage(ctx context.Context, folder, filename, contentType string) (*PresignResult, error) {
	if s.objects == nil {
		return nil, ErrStorageDisabled
	}
	if err := storage.ValidateImage(contentType, 0); err != nil {
		return nil, err
	}
	key, err := storage.NewObjectKey(folder, filename, contentType)
	if err != nil {
		return nil, err
	}

	uploadURL, err := s.objects.PresignPut(ctx, key, contentType)
	if err != nil {
		logger.Error("Failed to presign upload", err, map[string]interface{}{
			"key": key,
		})
		return nil, err
	}
	return &PresignResult{
		Key:       key,
		UploadURL: uploadURL,
		PublicURL: s.objects.PublicURL(key),
	}, nil
}

func (s *uploadService) UploadAvatar(ctx context.Context, userID uint, file FileUpload) (*model.User, error) {
	if s.objects == nil {
		return nil, ErrStorageDisabled
	}
	if err := storage.ValidateImage(file.ContentType, file.Size); err != nil {
		return nil, err
	}

	key := storage.AvatarKey(userID, file.Filename, file.ContentType)
	url, err := s.objects.Upload(ctx, key, file.ContentType, file.Body, file.Size)
	if err != nil {
		logger.Error("Failed to upload avatar", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if err := s.userRepo.UpdateAvatar(userID, url); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	logger.Info("Avatar updated", map[string]interface{}{
		"user_id": userID,
	})
	return user, nil
}
