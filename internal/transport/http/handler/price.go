package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartcloset/internal/app"
	"smartcloset/internal/transport/http/response"
)

type PriceHandler struct {
	advisorService *app.AdvisorService
}

func NewPriceHandler(advisorService *app.AdvisorService) *PriceHandler {
	return &PriceHandler{advisorService: advisorService}
}

// Suggest estimates a resale price from a multipart form: condition
// percentage, original value, and either an uploaded image or the relative
// path of an already stored one.
func (h *PriceHandler) Suggest(c *gin.Context) {
	conditionRaw := c.PostForm("condition_percentage")
	condition, err := strconv.Atoi(conditionRaw)
	if err != nil || condition < 0 || condition > 100 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid condition_percentage")
		return
	}

	originalValue := c.PostForm("original_value")
	if originalValue == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing original_value")
		return
	}

	input := app.PriceInput{
		ConditionPercentage: condition,
		OriginalValue:       originalValue,
		ExistingImagePath:   c.PostForm("existing_image_path"),
	}
	if fh, err := c.FormFile("file"); err == nil {
		if fh.Size > maxUploadSize {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "image too large (max 10MB)")
			return
		}
		uploadFile := uploadFileFromHeader(fh)
		input.Upload = &uploadFile
	}

	result, err := h.advisorService.SuggestPrice(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMissingImage):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "請提供圖片檔案或指定已存在的圖片路徑")
		case errors.Is(err, app.ErrImageNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "指定的圖片檔案不存在")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeExternalService, "估價失敗")
		}
		return
	}

	response.OK(c, gin.H{
		"message": "估價完成",
		"result":  result,
	})
}
