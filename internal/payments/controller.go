package payments

import (
	"net/http"
	"strconv"

	"busly/internal/shared/utils/response"
	"busly/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Callback handles POST /payments/callback/:provider — the provider's
// server-to-server notification. The response tells the provider whether
// to retry, so settled and duplicate callbacks both get a 200.
func (c *Controller) Callback(ctx *gin.Context) {
	provider := ctx.Param("provider")

	params, err := callbackParams(ctx)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid callback payload", nil, err.Error())
		return
	}

	ack, err := c.service.HandleCallback(ctx.Request.Context(), provider, params)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	message := "Payment callback processed"
	if ack.Duplicate {
		message = "Payment callback already processed"
	}
	response.RespondJSON(ctx, "success", http.StatusOK, message, ack, nil)
}

// Return handles GET /payments/return/:provider — the payer's browser
// coming back from the provider. Always redirects to the result page.
func (c *Controller) Return(ctx *gin.Context) {
	provider := ctx.Param("provider")

	params := make(map[string]string)
	for key, values := range ctx.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	redirectURL := c.service.HandleReturn(ctx.Request.Context(), provider, params)
	ctx.Redirect(http.StatusFound, redirectURL)
}

// GetPayment handles GET /payments/:id
func (c *Controller) GetPayment(ctx *gin.Context) {
	paymentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid payment ID", nil, err.Error())
		return
	}

	payment, err := c.service.GetPayment(ctx.Request.Context(), paymentID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	if !canSee(ctx, payment) {
		response.RespondJSON(ctx, "error", http.StatusForbidden, "Access denied", nil, nil)
		return
	}

	resp := payment.ToResponse()
	response.RespondJSON(ctx, "success", http.StatusOK, "Payment retrieved successfully", resp, nil)
}

// GetBookingPayments handles GET /bookings/:id/payments
func (c *Controller) GetBookingPayments(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	payments, err := c.service.GetBookingPayments(ctx.Request.Context(), bookingID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		if !canSee(ctx, &payments[i]) {
			response.RespondJSON(ctx, "error", http.StatusForbidden, "Access denied", nil, nil)
			return
		}
		responses = append(responses, payments[i].ToResponse())
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payments retrieved successfully", responses, nil)
}

// callbackParams accepts both form-encoded and JSON callback bodies;
// providers differ, and some replay query parameters on POST.
func callbackParams(ctx *gin.Context) (map[string]string, error) {
	params := make(map[string]string)

	if ctx.ContentType() == "application/json" {
		var body map[string]interface{}
		if err := ctx.ShouldBindJSON(&body); err != nil {
			return nil, err
		}
		for key, value := range body {
			params[key] = toString(value)
		}
	} else {
		if err := ctx.Request.ParseForm(); err != nil {
			return nil, err
		}
		for key, values := range ctx.Request.Form {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}
	}

	for key, values := range ctx.Request.URL.Query() {
		if _, ok := params[key]; !ok && len(values) > 0 {
			params[key] = values[0]
		}
	}

	return params, nil
}

func toString(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		// JSON numbers decode as float64; callback amounts are integral
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		if value {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func canSee(ctx *gin.Context, payment *Payment) bool {
	role, _ := ctx.Get("user_role")
	if role == string(users.RoleAdmin) {
		return true
	}
	raw, exists := ctx.Get("user_id")
	if !exists {
		return false
	}
	userID, ok := raw.(string)
	return ok && userID == payment.PayerID.String()
}
