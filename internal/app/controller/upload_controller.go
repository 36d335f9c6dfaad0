package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/storage"
)

type UploadController struct {
	uploadService service.UploadService
}

func NewUploadController(uploadService service.UploadService) *UploadController {
	return &UploadController{
		uploadService: uploadService,
	}
}

type GeneratePresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder"` // defaults to products
}

// UploadAvatar stores the multipart "file" as the current user's avatar
// POST /api/v1/auth/avatar
func (ctrl *UploadController) UploadAvatar(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	file, ok := formImage(c)
	if !ok {
		return
	}
	defer file.close()

	user, err := ctrl.uploadService.UploadAvatar(c.Request.Context(), userID, file.FileUpload)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

// UploadImage stores the multipart "file" under the requested folder
// POST /api/v1/admin/upload/image?folder=products
func (ctrl *UploadController) UploadImage(c *gin.Context) {
	file, ok := formImage(c)
	if !ok {
		return
	}
	defer file.close()

	folder := c.DefaultQuery("folder", storage.FolderProducts)
	result, err := ctrl.uploadService.UploadImage(c.Request.Context(), folder, file.FileUpload)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GeneratePresignedURL returns a URL the client uploads to directly
// POST /api/v1/admin/upload/presigned-url
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "filename and content_type are required")
		return
	}
	if req.Folder == "" {
		req.Folder = storage.FolderProducts
	}

	result, err := ctrl.uploadService.PresignImage(c.Request.Context(), req.Folder, req.Filename, req.ContentType)
	if err != nil {
		respondUploadError(c, err)
		return
	}

	middleware.GetLoggerFromContext(c).Info("Presigned URL generated", map[string]interface{}{
		"key": result.Key,
	})
	c.JSON(http.StatusOK, result)
}

type formFile struct {
	service.FileUpload
	close func() error
}

func formImage(c *gin.Context) (formFile, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "A file is required in the \"file\" field")
		return formFile{}, false
	}

	f, err := header.Open()
	if err != nil {
		apperrors.InternalError(c, "Could not read the uploaded file")
		return formFile{}, false
	}

	return formFile{
		FileUpload: service.FileUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        f,
		},
		close: f.Close,
	}, true
}

func respondUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only JPEG, PNG, GIF and WEBP images are allowed")
	case errors.Is(err, storage.ErrFileTooLarge):
		apperrors.RespondWithError(c, http.StatusRequestEntityTooLarge, apperrors.UploadFileTooLarge, "Images must be 5 MB or smaller")
	case errors.Is(err, storage.ErrUnknownFolder):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Unknown upload folder")
	case errors.Is(err, service.ErrStorageDisabled):
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.UploadFailed, "Uploads are not available right now")
	default:
		middleware.GetLoggerFromContext(c).Error("Upload failed", err)
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.UploadFailed, "Upload failed")
	}
}
