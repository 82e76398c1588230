package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
)

// HTTPClient implements Client against the ordering backend's REST API.
type HTTPClient struct {
	baseURL      string
	restaurantID string
	client       *http.Client
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates an ordering backend client.
func NewHTTPClient(baseURL, restaurantID string, client *http.Client) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("order API base URL is required")
	}
	if restaurantID == "" {
		return nil, fmt.Errorf("restaurant ID is required")
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPClient{
		baseURL:      baseURL,
		restaurantID: restaurantID,
		client:       client,
	}, nil
}

// customerResponse is the wire shape of a customer lookup result.
type customerResponse struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address *struct {
		Street         string `json:"street"`
		Number         string `json:"number"`
		Neighborhood   string `json:"neighborhood"`
		PostalCode     string `json:"postal_code"`
		Complement     string `json:"complement"`
		DistanceMeters *int   `json:"distance_meters"`
	} `json:"address"`
}

// CustomerByPhone looks up an existing customer by sanitized phone.
func (c *HTTPClient) CustomerByPhone(ctx context.Context, phone string) (*Customer, error) {
	endpoint := fmt.Sprintf("%s/api/restaurants/%s/customers?phone=%s",
		c.baseURL, url.PathEscape(c.restaurantID), url.QueryEscape(phone))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build customer lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.Unavailable(err, "orderapi.customer_by_phone", "Ordering service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrCustomerNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.Errorf(domain.EUNAVAILABLE, "orderapi.customer_by_phone", "ordering service returned status %d", resp.StatusCode)
	}

	var body customerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, domain.Internal(err, "orderapi.customer_by_phone", "failed to decode customer response")
	}

	customer := &Customer{Name: body.Name, Phone: body.Phone}
	if body.Address != nil {
		customer.Address = &domain.Address{
			Street:         body.Address.Street,
			Number:         body.Address.Number,
			Neighborhood:   body.Address.Neighborhood,
			PostalCode:     body.Address.PostalCode,
			Complement:     body.Address.Complement,
			DistanceMeters: body.Address.DistanceMeters,
		}
	}
	return customer, nil
}

// orderResponse is the wire shape of an order creation result.
type orderResponse struct {
	OrderID int64  `json:"order_id"`
	Token   string `json:"token"`
	Pix     *struct {
		CopyAndPaste string `json:"copy_and_paste"`
	} `json:"pix"`
}

// orderError is the wire shape of an upstream order failure.
type orderError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// CreateOrder submits an order with the session token as authorization.
func (c *HTTPClient) CreateOrder(ctx context.Context, payload OrderPayload, sessionToken string) (*OrderResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.Internal(err, "orderapi.create_order", "failed to encode order payload")
	}

	endpoint := fmt.Sprintf("%s/api/restaurants/%s/orders", c.baseURL, url.PathEscape(c.restaurantID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+sessionToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.Unavailable(err, "orderapi.create_order", "Ordering service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr orderError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			return nil, domain.Errorf(domain.EPAYMENT, "orderapi.create_order", "%s", apiErr.Message)
		}
		return nil, domain.Errorf(domain.EUNAVAILABLE, "orderapi.create_order", "ordering service returned status %d", resp.StatusCode)
	}

	var result orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, domain.Internal(err, "orderapi.create_order", "failed to decode order response")
	}

	out := &OrderResult{OrderID: result.OrderID, Token: result.Token}
	if result.Pix != nil {
		out.Pix = &PixInfo{CopyAndPaste: result.Pix.CopyAndPaste}
	}
	return out, nil
}
