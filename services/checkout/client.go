package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ampquote/pkg/config"

	"go.uber.org/fx"
)

// CustomerAPI resolves a purchaser's email from the payment provider's
// customer record when the webhook payload does not carry it inline.
type CustomerAPI interface {
	CustomerEmail(ctx context.Context, customerID string) (string, error)
}

type customerClient struct {
	addr   string
	apiKey string
	http   *http.Client
}

type ClientParams struct {
	fx.In

	Config *config.Config
}

func NewCustomerClient(p ClientParams) CustomerAPI {
	return &customerClient{
		addr:   strings.TrimRight(p.Config.Billing.APIAddr, "/"),
		apiKey: p.Config.Billing.APIKey,
		http:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *customerClient) CustomerEmail(ctx context.Context, customerID string) (string, error) {
	if customerID == "" {
		return "", fmt.Errorf("customer id is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/customers/%s", c.addr, customerID), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("customer lookup returned status %d", resp.StatusCode)
	}

	var customer struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&customer); err != nil {
		return "", err
	}

	return customer.Email, nil
}
