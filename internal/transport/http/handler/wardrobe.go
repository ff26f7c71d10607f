package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartcloset/internal/app"
	"smartcloset/internal/transport/http/response"
)

type WardrobeHandler struct {
	wardrobeService *app.WardrobeService
}

func NewWardrobeHandler(wardrobeService *app.WardrobeService) *WardrobeHandler {
	return &WardrobeHandler{wardrobeService: wardrobeService}
}

// List returns every stored item grouped by category folder with display URLs.
func (h *WardrobeHandler) List(c *gin.Context) {
	grouped, err := h.wardrobeService.ListGrouped()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "無法獲取衣櫃物品")
		return
	}

	response.OK(c, gin.H{
		"message":        "成功獲取衣櫃物品",
		"wardrobe_items": grouped,
	})
}
