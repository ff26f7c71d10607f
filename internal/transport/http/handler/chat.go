package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartcloset/internal/app"
	"smartcloset/internal/transport/http/response"
)

type ChatHandler struct {
	advisorService *app.AdvisorService
}

type ChatRequest struct {
	UserInput string `json:"user_input" binding:"required"`
}

func NewChatHandler(advisorService *app.AdvisorService) *ChatHandler {
	return &ChatHandler{advisorService: advisorService}
}

// Recommend returns a free-text outfit recommendation built from the whole
// wardrobe and the user's request, plus the prompt that was used.
func (h *ChatHandler) Recommend(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "缺少 user_input")
		return
	}

	advice, err := h.advisorService.OutfitAdvice(c.Request.Context(), req.UserInput)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrWardrobeEmpty):
			response.Error(c, http.StatusNotFound, response.CodeWardrobeEmpty, "衣櫃為空")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeExternalService, "outfit recommendation failed")
		}
		return
	}

	response.OK(c, advice)
}
