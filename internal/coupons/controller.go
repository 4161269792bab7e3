package coupons

import (
	"net/http"

	"busly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateCoupon handles POST /admin/coupons
func (c *Controller) CreateCoupon(ctx *gin.Context) {
	var req CreateCouponRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if !req.ValidTo.After(req.ValidFrom) {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "valid_to must be after valid_from", nil, nil)
		return
	}
	if req.DiscountPercent == 0 && req.DiscountFixed == 0 {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Coupon must carry a percent or fixed discount", nil, nil)
		return
	}

	coupon, err := c.service.CreateCoupon(ctx.Request.Context(), &req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Coupon created successfully", coupon, nil)
}

// GetCoupon handles GET /admin/coupons/:id
func (c *Controller) GetCoupon(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid coupon ID", nil, err.Error())
		return
	}

	coupon, err := c.service.GetCoupon(ctx.Request.Context(), id)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Coupon retrieved successfully", coupon, nil)
}

// ListCoupons handles GET /admin/coupons
func (c *Controller) ListCoupons(ctx *gin.Context) {
	coupons, err := c.service.ListCoupons(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Coupons retrieved successfully", coupons, nil)
}

// UpdateCoupon handles PUT /admin/coupons/:id
func (c *Controller) UpdateCoupon(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid coupon ID", nil, err.Error())
		return
	}

	var req UpdateCouponRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	coupon, err := c.service.UpdateCoupon(ctx.Request.Context(), id, &req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Coupon updated successfully", coupon, nil)
}

// DeleteCoupon handles DELETE /admin/coupons/:id
func (c *Controller) DeleteCoupon(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid coupon ID", nil, err.Error())
		return
	}

	if err := c.service.DeleteCoupon(ctx.Request.Context(), id); err != nil {
		response.Error(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Coupon deleted successfully", nil, nil)
}

// QuoteCoupon handles POST /coupons/quote
func (c *Controller) QuoteCoupon(ctx *gin.Context) {
	var req QuoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	quote, err := c.service.Quote(ctx.Request.Context(), req.Code, req.Total)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Coupon quote computed", quote, nil)
}
