package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// PayPal creates CAPTURE-intent orders through the REST v2 API.
type PayPal struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	HTTP         *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
	now     func() time.Time
}

func NewPayPal(baseURL, clientID, secret string) *PayPal {
	return &PayPal{
		BaseURL:      baseURL,
		ClientID:     clientID,
		ClientSecret: secret,
		HTTP:         &http.Client{Timeout: 10 * time.Second},
		now:          time.Now,
	}
}

type money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type ppItem struct {
	Name       string `json:"name"`
	SKU        string `json:"sku,omitempty"`
	Quantity   string `json:"quantity"`
	UnitAmount money  `json:"unit_amount"`
}

type ppAmount struct {
	money
	Breakdown struct {
		ItemTotal money `json:"item_total"`
	} `json:"breakdown"`
}

type ppPurchaseUnit struct {
	Amount ppAmount `json:"amount"`
	Items  []ppItem `json:"items"`
}

type ppOrder struct {
	Intent        string           `json:"intent"`
	PurchaseUnits []ppPurchaseUnit `json:"purchase_units"`
}

func (p *PayPal) CreateOrder(ctx context.Context, req OrderRequest) (string, error) {
	tok, err := p.accessToken(ctx)
	if err != nil {
		return "", err
	}

	total := money{CurrencyCode: req.Currency, Value: FormatCents(req.TotalCents())}
	unit := ppPurchaseUnit{Amount: ppAmount{money: total}}
	unit.Amount.Breakdown.ItemTotal = total
	for _, it := range req.Items {
		unit.Items = append(unit.Items, ppItem{
			Name:       it.Name,
			SKU:        it.SKU,
			Quantity:   strconv.Itoa(it.Quantity),
			UnitAmount: money{CurrencyCode: req.Currency, Value: FormatCents(it.UnitCents)},
		})
	}
	body, err := json.Marshal(ppOrder{Intent: "CAPTURE", PurchaseUnits: []ppPurchaseUnit{unit}})
	if err != nil {
		return "", err
	}

	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v2/checkout/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	hr.Header.Set("Authorization", "Bearer "+tok)
	hr.Header.Set("Content-Type", "application/json")
	if req.IdempotencyKey != "" {
		hr.Header.Set("PayPal-Request-Id", req.IdempotencyKey)
	}

	resp, err := p.HTTP.Do(hr)
	if err != nil {
		return "", fmt.Errorf("paypal create order: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", statusErr("create order", resp)
	}

	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("paypal create order: decode: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("paypal create order: empty id (status %q)", out.Status)
	}
	return out.ID, nil
}

// accessToken returns the cached OAuth token, refreshing it a minute before
// it expires.
func (p *PayPal) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != "" && p.now().Before(p.expires) {
		return p.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	hr.SetBasicAuth(p.ClientID, p.ClientSecret)
	hr.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.HTTP.Do(hr)
	if err != nil {
		return "", fmt.Errorf("paypal token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", statusErr("token", resp)
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("paypal token: decode: %w", err)
	}
	p.token = out.AccessToken
	p.expires = p.now().Add(time.Duration(out.ExpiresIn)*time.Second - time.Minute)
	return p.token, nil
}

func statusErr(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("paypal %s: status %d: %s", op, resp.StatusCode, bytes.TrimSpace(b))
}
