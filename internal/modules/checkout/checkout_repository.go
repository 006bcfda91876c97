package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"checkout-and-tracking/internal/models"
)

// RepositoryInterface is the backend REST surface the checkout flow needs.
type RepositoryInterface interface {
	CreateOrder(ctx context.Context, req models.OrderRequest) (*models.OrderResponse, error)
	GetPaymentStatus(ctx context.Context, checkoutRequestID string) (string, error)
}

// Repository talks to the order backend over HTTP. Every call is bounded by
// the client timeout.
type Repository struct {
	baseURL    string
	httpClient *http.Client
}

func NewRepository(baseURL string, timeout time.Duration) *Repository {
	return &Repository{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateOrder POSTs the order. Creation carries no client-generated
// idempotency key, so it is never retried here; a transport failure is
// reported upward as-is.
func (r *Repository) CreateOrder(ctx context.Context, orderReq models.OrderRequest) (*models.OrderResponse, error) {
	body, err := json.Marshal(orderReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", models.ErrTransport, decodeErrorMessage(resp))
	}

	var out models.OrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrTransport, err)
	}
	return &out, nil
}

// GetPaymentStatus queries the mobile-money provider state by checkout
// reference. The raw provider vocabulary is returned; classification is the
// poller's job.
func (r *Repository) GetPaymentStatus(ctx context.Context, checkoutRequestID string) (string, error) {
	url := fmt.Sprintf("%s/payments/mpesa/%s", r.baseURL, checkoutRequestID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s", models.ErrTransport, decodeErrorMessage(resp))
	}

	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrTransport, err)
	}
	return out.Status, nil
}

func decodeErrorMessage(resp *http.Response) string {
	var e models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned %d", resp.StatusCode)
}
