package checkout

import (
	"context"
	"fmt"
	"os"

	"checkout-and-tracking/internal/models"
	"checkout-and-tracking/pkg/notify"
	"checkout-and-tracking/pkg/payment"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// OutcomeKind tags the payment outcome union.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeFailure
	OutcomePendingMpesa
	OutcomePendingCard
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "SUCCESS"
	case OutcomeFailure:
		return "FAILED"
	case OutcomePendingMpesa, OutcomePendingCard:
		return "PENDING"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the uniform result of dispatching a created order to its payment
// method. Terminal kinds carry a user-facing message; pending kinds carry the
// provider reference needed to resolve them.
type Outcome struct {
	Kind      OutcomeKind
	Message   string
	Reference string
}

func (o Outcome) Terminal() bool {
	return o.Kind == OutcomeSuccess || o.Kind == OutcomeFailure
}

// CheckoutResult bundles the created order with its payment outcome. Pending
// is non-nil only for mobile-money orders still being verified; it delivers
// exactly one terminal outcome, or closes without one if the poll session is
// replaced or torn down.
type CheckoutResult struct {
	Response *models.OrderResponse
	Outcome  Outcome
	Pending  <-chan Outcome
}

// ServiceInterface defines the contract for the checkout service.
type ServiceInterface interface {
	Checkout(ctx context.Context, customerID string, cart *models.CartSnapshot, addr *models.Address, method *models.PaymentMethod, instructions string, tip float64) (*CheckoutResult, error)
	CompleteCardPayment(ctx context.Context, orderID, reference string) (Outcome, error)
}

// Service drives an order from cart to a payment decision point.
type Service struct {
	repo        RepositoryInterface
	poller      *Poller
	cardGateway payment.CardGateway
	notifier    notify.Notifier
}

// NewService creates a new checkout service.
func NewService(repo RepositoryInterface, poller *Poller, cardGateway payment.CardGateway, notifier notify.Notifier) *Service {
	return &Service{
		repo:        repo,
		poller:      poller,
		cardGateway: cardGateway,
		notifier:    notifier,
	}
}

// Submit validates the checkout preconditions in order and creates the order.
// Each check short-circuits with its own error and no backend call is made
// until all pass. Creation is not retried on failure.
func (s *Service) Submit(ctx context.Context, customerID string, cart *models.CartSnapshot, addr *models.Address, method *models.PaymentMethod, instructions string, tip float64) (*models.OrderResponse, error) {
	if addr == nil || (addr.Text == "" && addr.Latitude == 0 && addr.Longitude == 0) {
		return nil, models.ErrMissingAddress
	}
	if method == nil || method.Type == "" {
		return nil, models.ErrMissingPaymentMethod
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, models.ErrEmptyCart
	}
	if cart.RestaurantID == "" {
		return nil, models.ErrMissingRestaurant
	}
	if customerID == "" {
		return nil, models.ErrNoSession
	}

	resp, err := s.repo.CreateOrder(ctx, models.OrderRequest{
		CustomerID:          customerID,
		RestaurantID:        cart.RestaurantID,
		Items:               cart.Items,
		Address:             *addr,
		PaymentMethod:       *method,
		SpecialInstructions: instructions,
		Tip:                 tip,
	})
	if err != nil {
		return nil, fmt.Errorf("service.Submit: %w", err)
	}
	return resp, nil
}

// Dispatch selects the post-creation behavior for the chosen payment method.
// It is pure; side effects (polling, notifications) belong to Checkout.
func Dispatch(resp *models.OrderResponse, method models.PaymentMethod) Outcome {
	switch method.Type {
	case models.MethodCash:
		// No payment step; the order is confirmed on creation.
		return Outcome{Kind: OutcomeSuccess, Message: "Order placed successfully"}

	case models.MethodCard:
		if resp.Payment == nil || resp.Payment.AccessCode == "" {
			return Outcome{Kind: OutcomeFailure, Message: models.ErrPaymentInitiation.Error()}
		}
		return Outcome{Kind: OutcomePendingCard, Reference: resp.Payment.AccessCode}

	case models.MethodMobileMoney:
		// Fast path: the backend confirmed the payment synchronously.
		if resp.Order.PaymentStatus == models.PaymentPaid {
			return Outcome{Kind: OutcomeSuccess, Message: "Payment received"}
		}
		if resp.Payment != nil && resp.Payment.CheckoutRequestID != "" {
			return Outcome{Kind: OutcomePendingMpesa, Reference: resp.Payment.CheckoutRequestID}
		}
		return Outcome{Kind: OutcomeFailure, Message: models.ErrPaymentInitiation.Error()}

	default:
		return Outcome{Kind: OutcomeFailure, Message: "unsupported payment method"}
	}
}

// Checkout submits the order and dispatches its payment. Terminal outcomes
// are notified immediately; a pending mobile-money payment starts the poller,
// which owns its own terminal notification.
func (s *Service) Checkout(ctx context.Context, customerID string, cart *models.CartSnapshot, addr *models.Address, method *models.PaymentMethod, instructions string, tip float64) (*CheckoutResult, error) {
	resp, err := s.Submit(ctx, customerID, cart, addr, method, instructions, tip)
	if err != nil {
		return nil, err
	}

	outcome := Dispatch(resp, *method)
	result := &CheckoutResult{Response: resp, Outcome: outcome}

	switch outcome.Kind {
	case OutcomePendingMpesa:
		result.Pending = s.poller.Start(resp.Order.ID, outcome.Reference)
	case OutcomeSuccess:
		s.notifyTerminal(resp.Order.ID, "Order placed", outcome.Message)
	case OutcomeFailure:
		s.notifyTerminal(resp.Order.ID, "Payment failed", outcome.Message)
	}
	return result, nil
}

// CompleteCardPayment resolves the terminal outcome for a card order after
// the external payment UI calls back with the provider reference. An
// unverifiable state is a failure, never a success; the order already exists
// either way, so the notification always carries its id.
func (s *Service) CompleteCardPayment(ctx context.Context, orderID, reference string) (Outcome, error) {
	ok, err := s.cardGateway.VerifyPayment(ctx, reference)

	var outcome Outcome
	switch {
	case err != nil:
		logger.Warn().Err(err).Str("order_id", orderID).Msg("card verification inconclusive")
		outcome = Outcome{Kind: OutcomeFailure, Message: models.ErrPaymentNotVerified.Error()}
	case ok:
		outcome = Outcome{Kind: OutcomeSuccess, Message: "Payment received"}
	default:
		outcome = Outcome{Kind: OutcomeFailure, Message: "payment failed or was cancelled"}
	}

	title := "Payment confirmed"
	if outcome.Kind == OutcomeFailure {
		title = "Payment failed"
	}
	s.notifyTerminal(orderID, title, outcome.Message)
	return outcome, nil
}

// notifyTerminal fires the notification sink without blocking the caller.
// Sink failures are logged only; they never affect the payment outcome.
func (s *Service) notifyTerminal(orderID, title, message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, notify.NewNotification(title, message, orderID)); err != nil {
			logger.Warn().Err(err).Str("order_id", orderID).Msg("terminal notification failed")
		}
	}()
}
