// Package gateway is the typed HTTP adapter to the remote inventory and
// face-verification service. It owns the wire shapes and the mapping from
// response envelopes to the workflow's error kinds; it keeps no state of its
// own beyond connection configuration.
package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bekzodm/omborscan/internal/movement"
	"github.com/bekzodm/omborscan/internal/verify"
)

const defaultTimeout = 10 * time.Second

// Config carries connection settings for the remote service.
type Config struct {
	BaseURL   string
	APIToken  string
	CSRFToken string
	Timeout   time.Duration
}

// Client talks to the remote service. It implements movement.Gateway and
// verify.FaceVerifier.
type Client struct {
	baseURL   string
	apiToken  string
	csrfToken string
	client    *http.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiToken:  cfg.APIToken,
		csrfToken: cfg.CSRFToken,
		client:    &http.Client{Timeout: timeout},
	}
}

type productPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	StockQty int    `json:"stock_qty"`
	Unit     string `json:"unit"`
}

// LookupProduct resolves a scanned code. A missing product maps to
// movement.ErrProductNotFound; transport and server faults surface as
// *RemoteError and are never folded into not-found.
func (c *Client) LookupProduct(ctx context.Context, code string) (*movement.Product, error) {
	var env struct {
		Found   bool           `json:"found"`
		Product productPayload `json:"product"`
		Error   string         `json:"error"`
	}

	status, err := c.do(ctx, http.MethodGet, "/api/products/by-barcode?q="+url.QueryEscape(code), nil, &env)
	if err != nil {
		return nil, err
	}

	if !env.Found {
		if status == http.StatusOK {
			return nil, movement.ErrProductNotFound
		}

		return nil, &RemoteError{Status: status, Message: env.Error}
	}

	return &movement.Product{
		ID:       env.Product.ID,
		Name:     env.Product.Name,
		SKU:      env.Product.SKU,
		Unit:     env.Product.Unit,
		StockQty: env.Product.StockQty,
	}, nil
}

func (c *Client) CreateMovement(ctx context.Context, kind movement.Kind, note string) (string, error) {
	body := map[string]string{
		"movement_type": string(kind),
		"note":          note,
	}

	var env struct {
		OK         bool   `json:"ok"`
		MovementID string `json:"movement_id"`
		Error      string `json:"error"`
	}

	status, err := c.do(ctx, http.MethodPost, "/api/movements", body, &env)
	if err != nil {
		return "", err
	}

	if !env.OK {
		return "", &RemoteError{Status: status, Message: env.Error}
	}

	return env.MovementID, nil
}

func (c *Client) AddItem(ctx context.Context, movementID, productID string, quantity int, unitPrice float64) (*movement.AddReceipt, error) {
	body := map[string]any{
		"product_id": productID,
		"quantity":   quantity,
		"unit_price": unitPrice,
	}

	var env struct {
		OK            bool   `json:"ok"`
		ItemID        string `json:"item_id"`
		TotalQuantity int    `json:"total_quantity"`
		Error         string `json:"error"`
	}

	status, err := c.do(ctx, http.MethodPost, "/api/movements/"+url.PathEscape(movementID)+"/items", body, &env)
	if err != nil {
		return nil, err
	}

	if !env.OK {
		return nil, &RemoteError{Status: status, Message: env.Error}
	}

	return &movement.AddReceipt{ItemID: env.ItemID, TotalQuantity: env.TotalQuantity}, nil
}

func (c *Client) RemoveItem(ctx context.Context, movementID, itemID string) error {
	path := "/api/movements/" + url.PathEscape(movementID) + "/items/" + url.PathEscape(itemID) + "/remove"

	var env struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}

	status, err := c.do(ctx, http.MethodPost, path, nil, &env)
	if err != nil {
		return err
	}

	if !env.OK {
		return &RemoteError{Status: status, Message: env.Error}
	}

	return nil
}

func (c *Client) Finalize(ctx context.Context, movementID string) (string, error) {
	var env struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	status, err := c.do(ctx, http.MethodPost, "/api/movements/"+url.PathEscape(movementID)+"/finalize", nil, &env)
	if err != nil {
		return "", err
	}

	if !env.OK {
		return "", &RemoteError{Status: status, Message: env.Error}
	}

	return env.Message, nil
}

func (c *Client) Cancel(ctx context.Context, movementID string) error {
	var env struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}

	status, err := c.do(ctx, http.MethodPost, "/api/movements/"+url.PathEscape(movementID)+"/cancel", nil, &env)
	if err != nil {
		return err
	}

	if !env.OK {
		return &RemoteError{Status: status, Message: env.Error}
	}

	return nil
}

func (c *Client) DiscardPending(ctx context.Context, kind movement.Kind) (string, error) {
	body := map[string]string{"movement_type": string(kind)}

	var env struct {
		OK         bool   `json:"ok"`
		MovementID string `json:"movement_id"`
		Error      string `json:"error"`
	}

	status, err := c.do(ctx, http.MethodPost, "/api/movements/discard", body, &env)
	if err != nil {
		return "", err
	}

	if !env.OK {
		return "", &RemoteError{Status: status, Message: env.Error}
	}

	return env.MovementID, nil
}

// Pending is a movement left open by a prior session, returned so the
// workflow can resume it instead of starting fresh.
type Pending struct {
	MovementID string
	Note       string
	Lines      []movement.Line
}

func (c *Client) PendingMovement(ctx context.Context, kind movement.Kind) (*Pending, error) {
	var env struct {
		Found    bool `json:"found"`
		Movement struct {
			ID    string `json:"id"`
			Note  string `json:"note"`
			Items []struct {
				ID        string  `json:"id"`
				ProductID string  `json:"product_id"`
				Name      string  `json:"name"`
				SKU       string  `json:"sku"`
				Quantity  int     `json:"quantity"`
				Unit      string  `json:"unit"`
				UnitPrice float64 `json:"unit_price"`
				StockQty  int     `json:"stock_qty"`
			} `json:"items"`
		} `json:"movement"`
	}

	_, err := c.do(ctx, http.MethodGet, "/api/movements/pending?type="+url.QueryEscape(string(kind)), nil, &env)
	if err != nil {
		return nil, err
	}

	if !env.Found {
		return nil, nil
	}

	pending := &Pending{MovementID: env.Movement.ID, Note: env.Movement.Note}
	for _, it := range env.Movement.Items {
		pending.Lines = append(pending.Lines, movement.Line{
			ItemID:    it.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			Unit:      it.Unit,
			UnitPrice: it.UnitPrice,
			StockQty:  it.StockQty,
		})
	}

	return pending, nil
}

// VerifyFace submits a captured frame. A negative match is a *VerifyError,
// not a transport fault.
func (c *Client) VerifyFace(ctx context.Context, image []byte) (*verify.Verification, error) {
	body := map[string]string{
		"image": "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image),
	}

	var env struct {
		OK         bool    `json:"ok"`
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
		Error      string  `json:"error"`
	}

	status, err := c.do(ctx, http.MethodPost, "/api/face/verify", body, &env)
	if err != nil {
		return nil, err
	}

	if !env.OK {
		// Auth and CSRF rejections are service faults, not a face mismatch.
		if status == http.StatusUnauthorized || status == http.StatusForbidden ||
			status >= http.StatusInternalServerError {
			return nil, &RemoteError{Status: status, Message: env.Error}
		}

		return nil, &VerifyError{Reason: env.Error}
	}

	return &verify.Verification{Name: env.Name, Confidence: env.Confidence}, nil
}

// FaceStatus reports a verification carried over from a prior session, or
// nil when the operator has not verified yet.
func (c *Client) FaceStatus(ctx context.Context) (*verify.Verification, error) {
	var env struct {
		Verified   bool    `json:"verified"`
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	}

	if _, err := c.do(ctx, http.MethodGet, "/api/face/status", nil, &env); err != nil {
		return nil, err
	}

	if !env.Verified {
		return nil, nil
	}

	return &verify.Verification{Name: env.Name, Confidence: env.Confidence}, nil
}

// do issues one request and decodes the JSON envelope into out, returning
// the HTTP status for the caller's ok/found checks. Mutating calls carry the
// anti-forgery token and a request id.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encoding request: %w", err)
		}

		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	if method != http.MethodGet {
		req.Header.Set("X-CSRF-Token", c.csrfToken)
		req.Header.Set("X-Request-ID", uuid.NewString())
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, &RemoteError{Message: "inventory service unreachable", Err: err}
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, &RemoteError{Status: resp.StatusCode, Message: "malformed response", Err: err}
	}

	return resp.StatusCode, nil
}
