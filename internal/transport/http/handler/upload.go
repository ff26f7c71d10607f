package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartcloset/internal/app"
	"smartcloset/internal/transport/http/response"
)

const maxUploadSize = 10 << 20 // 10 MB per file

type UploadHandler struct {
	uploadService *app.UploadService
}

func NewUploadHandler(uploadService *app.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// Upload accepts a multipart form with one or more "files" entries and runs
// each through the store/remove-background/classify/persist pipeline.
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid multipart form")
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "請上傳至少一張圖片")
		return
	}
	for _, fh := range fileHeaders {
		if fh.Size > maxUploadSize {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "image too large (max 10MB)")
			return
		}
	}

	files := make([]app.UploadFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		files = append(files, uploadFileFromHeader(fh))
	}

	result, err := h.uploadService.UploadBatch(c.Request.Context(), userID, files)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrNoFiles):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "圖片處理失敗")
		}
		return
	}

	response.OK(c, result)
}

func uploadFileFromHeader(fh *multipart.FileHeader) app.UploadFile {
	return app.UploadFile{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
