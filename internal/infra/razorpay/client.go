package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/upskillhq/backend/internal/infra/httpclient"
)

const defaultBaseURL = "https://api.razorpay.com"

type Config struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

// Client talks to the Razorpay orders API and recomputes callback
// signatures. It never stores anything; the ledger treats the gateway as
// an opaque signer/verifier.
type Client struct {
	cfg  Config
	http *http.Client
}

// OrderRef is the gateway-issued handle returned to the buyer for
// checkout. Nothing is persisted on our side until the payment verifies.
type OrderRef struct {
	OrderID     string
	AmountPaise int64
	Currency    string
	Receipt     string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, fmt.Errorf("razorpay credentials are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		cfg:  cfg,
		http: httpclient.New(cfg.Timeout),
	}, nil
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func (c *Client) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (OrderRef, error) {
	if amountPaise <= 0 {
		return OrderRef{}, fmt.Errorf("order amount must be positive")
	}
	if currency == "" {
		currency = "INR"
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   amountPaise,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return OrderRef{}, fmt.Errorf("marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return OrderRef{}, fmt.Errorf("build order request: %w", err)
	}
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return OrderRef{}, fmt.Errorf("create gateway order: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return OrderRef{}, fmt.Errorf("gateway order request failed with status %d", resp.StatusCode)
	}

	var parsed createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return OrderRef{}, fmt.Errorf("decode gateway order response: %w", err)
	}
	if parsed.ID == "" {
		return OrderRef{}, fmt.Errorf("gateway returned empty order id")
	}

	return OrderRef{
		OrderID:     parsed.ID,
		AmountPaise: parsed.Amount,
		Currency:    parsed.Currency,
		Receipt:     parsed.Receipt,
	}, nil
}

// VerifySignature recomputes the callback signature as
// HMAC-SHA256(orderID + "|" + paymentID, keySecret) and compares it to
// the supplied hex digest in constant time.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(c.cfg.KeySecret, orderID, paymentID, signature)
}

func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" || orderID == "" || paymentID == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
