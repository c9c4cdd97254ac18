package controller

import (
	"context"
	"net/http"

	apperrors "github.com/e4rthen/storefront-backend/internal/errors"
	"github.com/e4rthen/storefront-backend/internal/middleware"
	"github.com/e4rthen/storefront-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

// ImagePresigner issues upload URLs for product images. *storage.S3Storage
// satisfies it.
type ImagePresigner interface {
	PresignProductImageUpload(ctx context.Context, filename, contentType string) (*storage.PresignedUpload, error)
}

type UploadController struct {
	storage ImagePresigner
}

func NewUploadController(storage ImagePresigner) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type GeneratePresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// GeneratePresignedURL returns a presigned PUT URL for a product image
// POST /api/v1/admin/uploads/presigned-url
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid presigned URL request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "filename and content_type are required")
		return
	}

	if err := storage.ValidateContentType(req.ContentType, storage.AllowedImageTypes); err != nil {
		log.Warn("Invalid content type", map[string]interface{}{
			"content_type": req.ContentType,
		})
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only image files are allowed (JPEG, PNG, GIF, WEBP)")
		return
	}

	upload, err := ctrl.storage.PresignProductImageUpload(c.Request.Context(), req.Filename, req.ContentType)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to generate presigned URL")
		return
	}

	log.Info("Presigned URL generated successfully", map[string]interface{}{
		"key": upload.Key,
	})

	c.JSON(http.StatusOK, upload)
}
