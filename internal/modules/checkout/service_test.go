package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"checkout-and-tracking/internal/models"
	"checkout-and-tracking/pkg/notify"
)

// fakeRepo scripts the backend's create and payment-status responses and
// counts every call so tests can assert exactly how many were made.
type fakeRepo struct {
	mu          sync.Mutex
	createCalls int
	createResp  *models.OrderResponse
	createErr   error
	statuses    []string
	statusErr   error
	pollCalls   int
}

func (f *fakeRepo) CreateOrder(ctx context.Context, req models.OrderRequest) (*models.OrderResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResp, nil
}

func (f *fakeRepo) GetPaymentStatus(ctx context.Context, checkoutRequestID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pollCalls++
	if f.statusErr != nil {
		return "", f.statusErr
	}
	idx := f.pollCalls - 1
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	return f.statuses[idx], nil
}

func (f *fakeRepo) polls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pollCalls
}

func (f *fakeRepo) creates() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls
}

type fakeNotifier struct {
	mu    sync.Mutex
	notes []notify.Notification
	err   error
}

func (f *fakeNotifier) Notify(ctx context.Context, n notify.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes, n)
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notes)
}

type fakeCardGateway struct {
	ok  bool
	err error
}

func (f *fakeCardGateway) VerifyPayment(ctx context.Context, reference string) (bool, error) {
	return f.ok, f.err
}

func newTestService(fr *fakeRepo, fn *fakeNotifier, gw *fakeCardGateway) *Service {
	poller := NewPoller(fr, fn, time.Millisecond, 6)
	return NewService(fr, poller, gw, fn)
}

func testCart() *models.CartSnapshot {
	return models.NewCartSnapshot("rest-1", []models.LineItem{
		{MenuItemID: "item-1", UnitPrice: 500, Quantity: 2},
	}, 150, 0.16)
}

func testAddress() *models.Address {
	return &models.Address{Latitude: -1.28, Longitude: 36.82, Text: "Koinange St"}
}

func TestSubmitPreconditions(t *testing.T) {
	fr := &fakeRepo{}
	svc := newTestService(fr, &fakeNotifier{}, &fakeCardGateway{})
	ctx := context.Background()
	cash := &models.PaymentMethod{Type: models.MethodCash}

	cases := []struct {
		name     string
		customer string
		cart     *models.CartSnapshot
		addr     *models.Address
		method   *models.PaymentMethod
		want     error
	}{
		{"missing address", "cust-1", testCart(), nil, cash, models.ErrMissingAddress},
		{"missing method", "cust-1", testCart(), testAddress(), nil, models.ErrMissingPaymentMethod},
		{"empty cart", "cust-1", models.NewCartSnapshot("rest-1", nil, 150, 0.16), testAddress(), cash, models.ErrEmptyCart},
		{"missing restaurant", "cust-1", models.NewCartSnapshot("", testCart().Items, 150, 0.16), testAddress(), cash, models.ErrMissingRestaurant},
		{"no session", "", testCart(), testAddress(), cash, models.ErrNoSession},
	}

	for _, tc := range cases {
		_, err := svc.Submit(ctx, tc.customer, tc.cart, tc.addr, tc.method, "", 0)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v; want %v", tc.name, err, tc.want)
		}
	}

	if fr.creates() != 0 {
		t.Errorf("backend create calls = %d; want 0 when preconditions fail", fr.creates())
	}
}

func TestCheckoutCash(t *testing.T) {
	fr := &fakeRepo{createResp: &models.OrderResponse{
		Order: models.Order{ID: "order-1", OrderNumber: "A100", Status: models.StatusPending, FinalAmount: 1310},
	}}
	fn := &fakeNotifier{}
	svc := newTestService(fr, fn, &fakeCardGateway{})

	result, err := svc.Checkout(context.Background(), "cust-1", testCart(), testAddress(), &models.PaymentMethod{Type: models.MethodCash}, "", 0)
	if err != nil {
		t.Fatalf("Checkout error: %v", err)
	}

	if result.Outcome.Kind != OutcomeSuccess {
		t.Errorf("Outcome.Kind = %v; want OutcomeSuccess", result.Outcome.Kind)
	}
	if result.Pending != nil {
		t.Error("Pending channel non-nil for CASH; no poller must start")
	}
	if fr.creates() != 1 {
		t.Errorf("create calls = %d; want 1", fr.creates())
	}

	// The only network call for cash is order creation.
	time.Sleep(50 * time.Millisecond)
	if fr.polls() != 0 {
		t.Errorf("poll calls = %d; want 0 for CASH", fr.polls())
	}
}

func TestCheckoutMpesaFastPath(t *testing.T) {
	fr := &fakeRepo{createResp: &models.OrderResponse{
		Order:   models.Order{ID: "order-1", Status: models.StatusPending, PaymentStatus: models.PaymentPaid},
		Payment: &models.PaymentInitiation{CheckoutRequestID: "chk-1"},
	}}
	svc := newTestService(fr, &fakeNotifier{}, &fakeCardGateway{})

	result, err := svc.Checkout(context.Background(), "cust-1", testCart(), testAddress(),
		&models.PaymentMethod{Type: models.MethodMobileMoney, PhoneNumber: "254700000000"}, "", 0)
	if err != nil {
		t.Fatalf("Checkout error: %v", err)
	}

	if result.Outcome.Kind != OutcomeSuccess {
		t.Errorf("Outcome.Kind = %v; want OutcomeSuccess (synchronous PAID)", result.Outcome.Kind)
	}
	time.Sleep(50 * time.Millisecond)
	if fr.polls() != 0 {
		t.Errorf("poll calls = %d; want 0 on fast path", fr.polls())
	}
}

func TestCheckoutMpesaMissingInitiation(t *testing.T) {
	fr := &fakeRepo{createResp: &models.OrderResponse{
		Order: models.Order{ID: "order-1", Status: models.StatusPending, PaymentStatus: models.PaymentPending},
	}}
	svc := newTestService(fr, &fakeNotifier{}, &fakeCardGateway{})

	result, err := svc.Checkout(context.Background(), "cust-1", testCart(), testAddress(),
		&models.PaymentMethod{Type: models.MethodMobileMoney, PhoneNumber: "254700000000"}, "", 0)
	if err != nil {
		t.Fatalf("Checkout error: %v", err)
	}
	if result.Outcome.Kind != OutcomeFailure {
		t.Errorf("Outcome.Kind = %v; want OutcomeFailure without checkout request id", result.Outcome.Kind)
	}
	if result.Outcome.Message != models.ErrPaymentInitiation.Error() {
		t.Errorf("Outcome.Message = %q; want %q", result.Outcome.Message, models.ErrPaymentInitiation.Error())
	}
}

func TestCheckoutCardMissingAccessCode(t *testing.T) {
	fr := &fakeRepo{createResp: &models.OrderResponse{
		Order: models.Order{ID: "order-1", Status: models.StatusPending},
	}}
	svc := newTestService(fr, &fakeNotifier{}, &fakeCardGateway{})

	result, err := svc.Checkout(context.Background(), "cust-1", testCart(), testAddress(),
		&models.PaymentMethod{Type: models.MethodCard}, "", 0)
	if err != nil {
		t.Fatalf("Checkout error: %v", err)
	}
	if result.Outcome.Kind != OutcomeFailure {
		t.Errorf("Outcome.Kind = %v; want OutcomeFailure without access code", result.Outcome.Kind)
	}
}

func TestCheckoutCardPending(t *testing.T) {
	fr := &fakeRepo{createResp: &models.OrderResponse{
		Order:   models.Order{ID: "order-1", Status: models.StatusPending},
		Payment: &models.PaymentInitiation{AccessCode: "ac-123"},
	}}
	svc := newTestService(fr, &fakeNotifier{}, &fakeCardGateway{})

	result, err := svc.Checkout(context.Background(), "cust-1", testCart(), testAddress(),
		&models.PaymentMethod{Type: models.MethodCard}, "", 0)
	if err != nil {
		t.Fatalf("Checkout error: %v", err)
	}
	if result.Outcome.Kind != OutcomePendingCard {
		t.Errorf("Outcome.Kind = %v; want OutcomePendingCard", result.Outcome.Kind)
	}
	if result.Outcome.Reference != "ac-123" {
		t.Errorf("Outcome.Reference = %q; want ac-123", result.Outcome.Reference)
	}
}

func TestSubmitWrapsTransportError(t *testing.T) {
	fr := &fakeRepo{createErr: errors.New("connection refused")}
	svc := newTestService(fr, &fakeNotifier{}, &fakeCardGateway{})

	_, err := svc.Submit(context.Background(), "cust-1", testCart(), testAddress(),
		&models.PaymentMethod{Type: models.MethodCash}, "", 0)
	if err == nil {
		t.Fatal("Submit error = nil; want wrapped transport error")
	}
	if fr.creates() != 1 {
		t.Errorf("create calls = %d; want 1 (no retry on failed creation)", fr.creates())
	}
}

func TestCompleteCardPayment(t *testing.T) {
	fr := &fakeRepo{}
	fn := &fakeNotifier{}
	svc := newTestService(fr, fn, &fakeCardGateway{ok: true})

	outcome, err := svc.CompleteCardPayment(context.Background(), "order-1", "ac-123")
	if err != nil {
		t.Fatalf("CompleteCardPayment error: %v", err)
	}
	if outcome.Kind != OutcomeSuccess {
		t.Errorf("Kind = %v; want OutcomeSuccess", outcome.Kind)
	}
}

func TestCompleteCardPaymentUnverifiable(t *testing.T) {
	fn := &fakeNotifier{}
	svc := newTestService(&fakeRepo{}, fn, &fakeCardGateway{err: errors.New("intent still processing")})

	outcome, err := svc.CompleteCardPayment(context.Background(), "order-1", "ac-123")
	if err != nil {
		t.Fatalf("CompleteCardPayment error: %v", err)
	}
	if outcome.Kind != OutcomeFailure {
		t.Errorf("Kind = %v; want OutcomeFailure when provider state is unknown", outcome.Kind)
	}
	if outcome.Message != models.ErrPaymentNotVerified.Error() {
		t.Errorf("Message = %q; want %q", outcome.Message, models.ErrPaymentNotVerified.Error())
	}

	// The order exists; the user must still be told, with the order id.
	deadline := time.After(time.Second)
	for fn.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("no notification emitted for terminal card failure")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestNotifierFailureDoesNotFailCheckout(t *testing.T) {
	fr := &fakeRepo{createResp: &models.OrderResponse{
		Order: models.Order{ID: "order-1", Status: models.StatusPending},
	}}
	fn := &fakeNotifier{err: errors.New("kafka down")}
	svc := newTestService(fr, fn, &fakeCardGateway{})

	result, err := svc.Checkout(context.Background(), "cust-1", testCart(), testAddress(),
		&models.PaymentMethod{Type: models.MethodCash}, "", 0)
	if err != nil {
		t.Fatalf("Checkout error: %v", err)
	}
	if result.Outcome.Kind != OutcomeSuccess {
		t.Errorf("Outcome.Kind = %v; want OutcomeSuccess despite notifier failure", result.Outcome.Kind)
	}
}
