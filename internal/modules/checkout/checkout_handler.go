package checkout

import (
	"errors"
	"net/http"

	"checkout-and-tracking/internal/models"
	"checkout-and-tracking/internal/modules/cart"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for checkout.
type Handler struct {
	svc      ServiceInterface
	cartSvc  cart.ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new checkout handler.
func NewHandler(svc ServiceInterface, cartSvc cart.ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		cartSvc:  cartSvc,
		validate: validator.New(),
	}
}

// CheckoutRequest is the gateway's checkout body. Address and payment method
// are deliberately not validator-required: the service checks them in order
// and each missing piece has its own user-facing message.
type CheckoutRequest struct {
	RestaurantID        string                `json:"restaurant_id"`
	Items               []models.LineItem     `json:"items" validate:"dive"`
	Address             *models.Address       `json:"address"`
	PaymentMethod       *models.PaymentMethod `json:"payment_method"`
	SpecialInstructions string                `json:"special_instructions"`
	Tip                 float64               `json:"tip" validate:"gte=0"`
}

// CardCallbackRequest carries the provider reference from the external
// payment UI's redirect.
type CardCallbackRequest struct {
	Reference string `json:"reference" validate:"required"`
}

// OutcomeResponse is the wire form of a payment outcome.
type OutcomeResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Reference string `json:"reference,omitempty"`
}

func toOutcomeResponse(o Outcome) OutcomeResponse {
	return OutcomeResponse{Status: o.Kind.String(), Message: o.Message, Reference: o.Reference}
}

func (h *Handler) Checkout(c echo.Context) error {
	userID, _ := c.Get("userID").(string)

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	snapshot := h.cartSvc.Snapshot(c.Request().Context(), req.RestaurantID, req.Items)

	result, err := h.svc.Checkout(c.Request().Context(), userID, snapshot, req.Address, req.PaymentMethod, req.SpecialInstructions, req.Tip)
	if err != nil {
		if models.IsPrecondition(err) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
		}
		if errors.Is(err, models.ErrTransport) {
			return c.JSON(http.StatusBadGateway, models.ErrorResponse{Message: err.Error()})
		}
		c.Logger().Error("Handler.Checkout: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to place order"})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"order":   result.Response.Order,
		"payment": result.Response.Payment,
		"cart":    snapshot,
		"outcome": toOutcomeResponse(result.Outcome),
	})
}

func (h *Handler) CardCallback(c echo.Context) error {
	orderID := c.Param("orderId")

	var req CardCallbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	outcome, err := h.svc.CompleteCardPayment(c.Request().Context(), orderID, req.Reference)
	if err != nil {
		c.Logger().Error("Handler.CardCallback: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to resolve card payment"})
	}

	return c.JSON(http.StatusOK, toOutcomeResponse(outcome))
}
