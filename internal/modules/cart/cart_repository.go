package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"checkout-and-tracking/internal/models"
)

// RepositoryInterface resolves restaurant pricing data from the backend.
type RepositoryInterface interface {
	GetDeliveryFee(ctx context.Context, restaurantID string) (float64, error)
}

// Repository calls GET /restaurants/{id} on the backend REST API.
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

func (r *Repository) GetDeliveryFee(ctx context.Context, restaurantID string) (float64, error) {
	url := fmt.Sprintf("%s/restaurants/%s", r.baseURL, restaurantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: restaurant lookup returned %d", models.ErrTransport, resp.StatusCode)
	}

	var out struct {
		DeliveryFee float64 `json:"delivery_fee"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrTransport, err)
	}
	return out.DeliveryFee, nil
}
