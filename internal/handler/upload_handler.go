package handler

import (
	"errors"
	"net/http"

	"stock-service/internal/upload"
	"stock-service/pkg/logger"
	"stock-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// DeleteUploadRequest defines the structure for upload deletion requests
type DeleteUploadRequest struct {
	Path string `json:"path" validate:"required"`
}

// UploadHandler serves the product image upload endpoints
type UploadHandler struct {
	store *upload.Store
}

// NewUploadHandler creates the handler
func NewUploadHandler(store *upload.Store) *UploadHandler {
	return &UploadHandler{store: store}
}

// Upload accepts one multipart image file and returns its public path
func (h *UploadHandler) Upload(c echo.Context) error {
	log := logger.FromEcho(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Warn("No file provided in upload request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "No file provided"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded file",
			zap.String("filename", fileHeader.Filename),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to read file"})
	}
	defer src.Close()

	publicPath, err := h.store.Save(fileHeader.Filename, fileHeader.Size, src)
	if err != nil {
		prometheus.RecordUploadOperation("save", "failure")
		switch {
		case errors.Is(err, upload.ErrFileTooLarge):
			log.Warn("Uploaded file too large",
				zap.String("filename", fileHeader.Filename),
				zap.Int64("size", fileHeader.Size))
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "File too large (max 5MB)"})
		case errors.Is(err, upload.ErrUnsupportedType):
			log.Warn("Uploaded file type not allowed",
				zap.String("filename", fileHeader.Filename))
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "File type not allowed"})
		default:
			log.Error("Failed to store uploaded file",
				zap.String("filename", fileHeader.Filename),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to store file"})
		}
	}

	prometheus.RecordUploadOperation("save", "success")
	log.Info("File uploaded successfully",
		zap.String("filename", fileHeader.Filename),
		zap.String("path", publicPath))
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "path": publicPath})
}

// Delete removes a previously uploaded file, constrained to the upload root
func (h *UploadHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)

	var req DeleteUploadRequest
	if err := c.Bind(&req); err != nil || req.Path == "" {
		log.Warn("Invalid delete request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid path"})
	}

	if err := h.store.Delete(req.Path); err != nil {
		prometheus.RecordUploadOperation("delete", "failure")
		switch {
		case errors.Is(err, upload.ErrInvalidPath):
			log.Warn("Rejected delete outside upload directory", zap.String("path", req.Path))
			return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "Path not allowed"})
		case errors.Is(err, upload.ErrFileNotFound):
			log.Warn("File not found for deletion", zap.String("path", req.Path))
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "File not found"})
		default:
			log.Error("Failed to delete file",
				zap.String("path", req.Path),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to delete file"})
		}
	}

	prometheus.RecordUploadOperation("delete", "success")
	log.Info("File deleted successfully", zap.String("path", req.Path))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "File deleted successfully"})
}
