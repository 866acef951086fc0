package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/camp-animal-economy/internal/api/handler/v1/response"
	"github.com/vietanh2810/camp-animal-economy/internal/config"
)

type ClientConfigHandler struct {
	conf *config.StoreConfig
}

func NewClientConfigHandler(conf *config.StoreConfig) *ClientConfigHandler {
	return &ClientConfigHandler{
		conf: conf,
	}
}

// HandleClientConfig godoc
// @Summary      Store settings for browsers
// @Description  Returns the store URL and its public key
// @Tags         config
// @Produce      json
// @Success      200  {object}  response.ClientConfig
// @Router       /client-config [get]
func (h *ClientConfigHandler) HandleClientConfig(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.ClientConfig{
		StoreURL:       h.conf.URL,
		StorePublicKey: h.conf.PublicKey,
	})
}
