package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/prompt-gateway/internal/server/validator"
	"github.com/nulzo/prompt-gateway/pkg/api"
)

// Gateway is the part of the provider gateway the HTTP layer depends on.
type Gateway interface {
	Generate(ctx context.Context, provider, prompt string) (string, error)
	Providers() []api.ProviderInfo
}

type GenerateHandler struct {
	gateway   Gateway
	validator *validator.Validator
}

func NewGenerateHandler(gateway Gateway, v *validator.Validator) *GenerateHandler {
	return &GenerateHandler{
		gateway:   gateway,
		validator: v,
	}
}

func (h *GenerateHandler) Generate(c *gin.Context) {
	var req api.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(h.validator.ParseError(err)))
		return
	}

	text, err := h.gateway.Generate(c.Request.Context(), req.Provider, req.Prompt)
	if err != nil {
		// translated to a problem by the error middleware
		_ = c.Error(err)
		return
	}

	resp := api.GenerateResponse{Provider: req.Provider, Text: text}
	for _, info := range h.gateway.Providers() {
		if info.ID == req.Provider {
			resp.Model = info.Model
			resp.Demo = info.Demo
			break
		}
	}

	c.JSON(http.StatusOK, resp)
}
