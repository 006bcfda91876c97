package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"checkout-and-tracking/internal/models"
)

// RepositoryInterface fetches the authoritative order snapshot.
type RepositoryInterface interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
}

// Repository calls GET /orders/{id} on the backend REST API.
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

func (r *Repository) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	url := fmt.Sprintf("%s/orders/%s", r.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, models.ErrOrderNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: order fetch returned %d", models.ErrTransport, resp.StatusCode)
	}

	var out models.Order
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrTransport, err)
	}
	return &out, nil
}
