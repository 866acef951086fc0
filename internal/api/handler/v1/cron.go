package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/camp-animal-economy/internal/api/handler/v1/response"
)

type CronHandler struct {
	svc MarketService
}

func NewCronHandler(svc MarketService) *CronHandler {
	return &CronHandler{
		svc: svc,
	}
}

// HandleCron godoc
// @Summary      Increment demand
// @Description  Raises the demand of every market item by one. Mounted at /api/cron for the external scheduler.
// @Tags         cron
// @Produce      plain
// @Success      200  {string}  string  "Demand incremented."
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
func (h *CronHandler) HandleCron(ctx *gin.Context) {
	if err := h.svc.IncrementDemand(ctx.Request.Context()); err != nil {
		err = fmt.Errorf("HandleCron -> h.svc.IncrementDemand -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.String(http.StatusOK, "Demand incremented.")
}
