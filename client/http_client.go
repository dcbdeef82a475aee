package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yeremiapane/restaurant-pos-terminal/models"
)

// HTTPClient adalah implementasi PersistenceAPI yang memanggil server pusat
// restoran lewat HTTP. Body response memakai envelope standar
// {status, message, data}; status false dikembalikan sebagai *APIError.
type HTTPClient struct {
	BaseURL string
	http    *http.Client
}

// envelope -> bentuk response standar dari server
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewHTTPClient -> client dengan timeout per request
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		BaseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// call -> kirim request JSON, decode envelope, unmarshal data ke out (boleh nil)
func (c *HTTPClient) call(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "invalid response body: " + err.Error()}
	}
	if !env.Status {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &APIError{StatusCode: resp.StatusCode, Message: "decode entity: " + err.Error()}
		}
	}
	return nil
}

func (c *HTTPClient) ListTableOrders(ctx context.Context) ([]models.TableOrder, error) {
	var orders []models.TableOrder
	if err := c.call(ctx, http.MethodGet, "/table-orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *HTTPClient) CreateTableOrder(ctx context.Context, req CreateTableOrderRequest) (*models.TableOrder, error) {
	var order models.TableOrder
	if err := c.call(ctx, http.MethodPost, "/table-orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *HTTPClient) UpdateTableOrder(ctx context.Context, req UpdateTableOrderRequest) (*models.TableOrder, error) {
	var order models.TableOrder
	path := fmt.Sprintf("/table-orders/%d/items", req.TableNumber)
	if err := c.call(ctx, http.MethodPut, path, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *HTTPClient) CompleteTableOrder(ctx context.Context, tableNumber int) error {
	path := fmt.Sprintf("/table-orders/%d/complete", tableNumber)
	return c.call(ctx, http.MethodPost, path, nil, nil)
}

func (c *HTTPClient) ResetTableToAvailable(ctx context.Context, tableNumber int) error {
	path := fmt.Sprintf("/table-orders/%d/reset", tableNumber)
	return c.call(ctx, http.MethodPost, path, nil, nil)
}

func (c *HTTPClient) ListCustomerTabsForTable(ctx context.Context, tableNumber int) ([]models.CustomerTab, error) {
	var tabs []models.CustomerTab
	path := fmt.Sprintf("/table-orders/%d/tabs", tableNumber)
	if err := c.call(ctx, http.MethodGet, path, nil, &tabs); err != nil {
		return nil, err
	}
	return tabs, nil
}

func (c *HTTPClient) CreateCustomerTab(ctx context.Context, req CreateCustomerTabRequest) (*models.CustomerTab, error) {
	var tab models.CustomerTab
	if err := c.call(ctx, http.MethodPost, "/customer-tabs", req, &tab); err != nil {
		return nil, err
	}
	return &tab, nil
}

func (c *HTTPClient) UpdateCustomerTab(ctx context.Context, req UpdateCustomerTabRequest) (*models.CustomerTab, error) {
	var tab models.CustomerTab
	if err := c.call(ctx, http.MethodPatch, "/customer-tabs/"+req.TabID, req, &tab); err != nil {
		return nil, err
	}
	return &tab, nil
}

func (c *HTTPClient) AddItemsToCustomerTab(ctx context.Context, tabID string, items []models.OrderItem) (*models.CustomerTab, error) {
	var tab models.CustomerTab
	body := map[string]interface{}{"items": items}
	if err := c.call(ctx, http.MethodPost, "/customer-tabs/"+tabID+"/items", body, &tab); err != nil {
		return nil, err
	}
	return &tab, nil
}

func (c *HTTPClient) CloseCustomerTab(ctx context.Context, tabID string) (*models.CustomerTab, error) {
	var tab models.CustomerTab
	if err := c.call(ctx, http.MethodPost, "/customer-tabs/"+tabID+"/close", nil, &tab); err != nil {
		return nil, err
	}
	return &tab, nil
}

func (c *HTTPClient) DeleteCustomerTab(ctx context.Context, tabID string) error {
	return c.call(ctx, http.MethodDelete, "/customer-tabs/"+tabID, nil, nil)
}

func (c *HTTPClient) SplitTab(ctx context.Context, req SplitTabRequest) (*SplitTabResult, error) {
	var result SplitTabResult
	if err := c.call(ctx, http.MethodPost, "/customer-tabs/split", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) MergeTabs(ctx context.Context, sourceTabID, targetTabID string) (*models.CustomerTab, error) {
	var tab models.CustomerTab
	body := map[string]string{"source_tab_id": sourceTabID, "target_tab_id": targetTabID}
	if err := c.call(ctx, http.MethodPost, "/customer-tabs/merge", body, &tab); err != nil {
		return nil, err
	}
	return &tab, nil
}

func (c *HTTPClient) MoveItemsBetweenTabs(ctx context.Context, req MoveItemsRequest) (*MoveItemsResult, error) {
	var result MoveItemsResult
	if err := c.call(ctx, http.MethodPost, "/customer-tabs/move-items", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
