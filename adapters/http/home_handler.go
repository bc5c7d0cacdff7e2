package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	homeUC "github.com/khoahotran/career-onboard/internal/application/usecase/home"
)

type HomeHandler struct {
	homeViewUseCase *homeUC.GetHomeViewUseCase
}

func NewHomeHandler(uc *homeUC.GetHomeViewUseCase) *HomeHandler {
	return &HomeHandler{homeViewUseCase: uc}
}

// GetHome always answers 200; an unusable identity yields an empty view.
func (h *HomeHandler) GetHome(c *gin.Context) {
	identity, _ := GetIdentityFromGinContext(c)
	view := h.homeViewUseCase.Execute(c.Request.Context(), identity)
	c.JSON(http.StatusOK, ToHomeViewDTO(view))
}
