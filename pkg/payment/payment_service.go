package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
)

// CardGateway resolves a card payment's terminal outcome from the provider
// reference handed back by the external payment UI. The provider's own
// webhook/signature verification happens on the backend; the gateway only
// classifies the final state.
type CardGateway interface {
	VerifyPayment(ctx context.Context, reference string) (bool, error)
}

// StripeGateway looks the payment intent up by its access-code reference.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(apiKey string) *StripeGateway {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeGateway{api: api}
}

// VerifyPayment returns (true, nil) when the provider reports the payment
// settled, (false, nil) when it reports a definitive failure or cancellation,
// and an error when the state could not be determined.
func (s *StripeGateway) VerifyPayment(ctx context.Context, reference string) (bool, error) {
	pi, err := s.api.PaymentIntents.Get(reference, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return false, fmt.Errorf("payment.VerifyPayment: %w", err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return true, nil
	case stripe.PaymentIntentStatusCanceled, stripe.PaymentIntentStatusRequiresPaymentMethod:
		return false, nil
	default:
		// Still processing or requires further action; not a terminal state.
		return false, fmt.Errorf("payment.VerifyPayment: intent %s in state %s", reference, pi.Status)
	}
}
