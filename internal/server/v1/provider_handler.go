package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/prompt-gateway/pkg/api"
)

type ProviderHandler struct {
	gateway Gateway
}

func NewProviderHandler(gateway Gateway) *ProviderHandler {
	return &ProviderHandler{gateway: gateway}
}

func (h *ProviderHandler) ListProviders(c *gin.Context) {
	c.JSON(http.StatusOK, api.ProviderList{
		Object: "list",
		Data:   h.gateway.Providers(),
	})
}
