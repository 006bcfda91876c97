package tracking

import (
	"errors"
	"net/http"

	"checkout-and-tracking/internal/models"

	"github.com/labstack/echo/v4"
)

// PollCanceller lets the tracking surface tear down a pending payment poll
// together with the tracking session, so nothing leaks when the user leaves.
type PollCanceller interface {
	Cancel(orderID string)
}

// Handler handles HTTP requests for order tracking.
type Handler struct {
	svc   ServiceInterface
	polls PollCanceller
}

// NewHandler creates a new tracking handler.
func NewHandler(svc ServiceInterface, polls PollCanceller) *Handler {
	return &Handler{svc: svc, polls: polls}
}

// StartTracking starts (or restarts) the live session. A failed initial
// fetch is a 502 with the backend's message; the client retries by calling
// this endpoint again.
func (h *Handler) StartTracking(c echo.Context) error {
	orderID := c.Param("orderId")

	sess, err := h.svc.Track(c.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		}
		if errors.Is(err, models.ErrTransport) {
			return c.JSON(http.StatusBadGateway, models.ErrorResponse{Message: err.Error()})
		}
		c.Logger().Error("Handler.StartTracking: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to start tracking"})
	}

	return c.JSON(http.StatusOK, sess.View())
}

// GetTracking returns the current reconciled view for a live session.
func (h *Handler) GetTracking(c echo.Context) error {
	orderID := c.Param("orderId")

	view, ok := h.svc.View(orderID)
	if !ok {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "No active tracking session for this order"})
	}
	return c.JSON(http.StatusOK, view)
}

// StopTracking ends the session and cancels any pending payment poll for the
// same order.
func (h *Handler) StopTracking(c echo.Context) error {
	orderID := c.Param("orderId")

	h.svc.Stop(orderID)
	if h.polls != nil {
		h.polls.Cancel(orderID)
	}
	return c.NoContent(http.StatusNoContent)
}
