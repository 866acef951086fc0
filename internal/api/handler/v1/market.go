package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/camp-animal-economy/internal/api/handler/v1/request"
	"github.com/vietanh2810/camp-animal-economy/internal/api/handler/v1/response"
	"github.com/vietanh2810/camp-animal-economy/internal/domain"
	"github.com/vietanh2810/camp-animal-economy/internal/realtime"
	"github.com/vietanh2810/camp-animal-economy/internal/service"
)

type MarketService interface {
	ListItems(ctx context.Context) ([]domain.MarketItem, error)
	GetItem(ctx context.Context, itemType string) (domain.MarketItem, error)
	CreateItem(ctx context.Context, item domain.MarketItem) (domain.MarketItem, error)
	ApplyCollect(ctx context.Context, observed domain.MarketItem) (domain.MarketItem, error)
	Collect(ctx context.Context, itemType string) (domain.CollectedReceipt, domain.MarketItem, error)
	IncrementDemand(ctx context.Context) error
	Subscribe() *realtime.Subscription
}

type MarketHandler struct {
	svc MarketService
}

func NewMarketHandler(svc MarketService) *MarketHandler {
	return &MarketHandler{
		svc: svc,
	}
}

// HandleListMarket godoc
// @Summary      List market items
// @Description  Returns every market item with its current price
// @Tags         market
// @Produce      json
// @Success      200  {array}   response.MarketItem
// @Failure      500  {object}  response.Err
// @Router       /market [get]
func (h *MarketHandler) HandleListMarket(ctx *gin.Context) {
	items, err := h.svc.ListItems(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleListMarket -> h.svc.ListItems -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewMarketItems(items))
}

// HandleGetMarketItem godoc
// @Summary      Get a market item
// @Tags         market
// @Produce      json
// @Param        type  path      string  true  "Item type"
// @Success      200   {object}  response.MarketItem
// @Failure      400   {object}  response.Err
// @Failure      404   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /market/{type} [get]
func (h *MarketHandler) HandleGetMarketItem(ctx *gin.Context) {
	itemType := ctx.Param("type")
	if err := request.ValidateItemType(itemType); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	item, err := h.svc.GetItem(ctx.Request.Context(), itemType)
	if err != nil {
		if errors.Is(err, service.ErrMarketItemNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("market item", "type", itemType))
			return
		}

		err = fmt.Errorf("HandleGetMarketItem -> h.svc.GetItem -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewMarketItem(item))
}

// HandleCollect godoc
// @Summary      Collect one unit
// @Description  Collects one unit of the item type and returns the receipt priced after collection
// @Tags         market
// @Produce      json
// @Param        type  path      string  true  "Item type"
// @Success      200   {object}  response.CollectResponse
// @Failure      400   {object}  response.Err
// @Failure      404   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /market/{type}/collect [post]
func (h *MarketHandler) HandleCollect(ctx *gin.Context) {
	itemType := ctx.Param("type")
	if err := request.ValidateItemType(itemType); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	receipt, item, err := h.svc.Collect(ctx.Request.Context(), itemType)
	if err != nil {
		if errors.Is(err, service.ErrMarketItemNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("market item", "type", itemType))
			return
		}

		err = fmt.Errorf("HandleCollect -> h.svc.Collect -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.CollectResponse{
		Receipt: receipt,
		Item:    response.NewMarketItem(item),
	})
}

// HandleCreateMarketItem godoc
// @Summary      Create a market item
// @Tags         market
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateMarketItemRequest  true  "Item"
// @Success      201    {object}  response.MarketItem
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /market [post]
// @Security     BearerAuth
func (h *MarketHandler) HandleCreateMarketItem(ctx *gin.Context) {
	var input request.CreateMarketItemRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateItem(ctx.Request.Context(), domain.MarketItem{
		Type:   input.Type,
		Supply: input.Supply,
		Demand: input.Demand,
	})
	if err != nil {
		if errors.Is(err, service.ErrMarketItemExists) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrMarketItemExists))
			return
		}

		err = fmt.Errorf("HandleCreateMarketItem -> h.svc.CreateItem -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.NewMarketItem(created))
}
