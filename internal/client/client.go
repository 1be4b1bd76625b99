package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"inventory-tracker/internal/delivery/dto"
	"inventory-tracker/pkg/response"

	"github.com/shopspring/decimal"
)

// APIError is a non-2xx answer from the inventory API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// APIMessage is the message the server put in the error body.
func (e *APIError) APIMessage() string {
	return e.Message
}

// createProductBody and updateProductBody send counts as bare JSON numbers.
type createProductBody struct {
	Name  string      `json:"name"`
	Count json.Number `json:"count"`
}

type updateProductBody struct {
	Name    string      `json:"name"`
	NewName string      `json:"newName,omitempty"`
	Count   json.Number `json:"count,omitempty"`
}

// Client talks to the inventory HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SetToken sets the bearer token sent with every request. An empty token sends none.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Login(ctx context.Context, username, password string) (*dto.TokenResponse, error) {
	var out dto.TokenResponse
	_, err := c.do(ctx, http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: username, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	return err
}

// Session returns an unauthenticated session, not an error, when the server answers 401.
func (c *Client) Session(ctx context.Context) (*dto.SessionResponse, error) {
	var out dto.SessionResponse
	_, err := c.do(ctx, http.MethodGet, "/api/auth/session", nil, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return &dto.SessionResponse{Authenticated: false}, nil
		}
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListProducts(ctx context.Context, query dto.ProductQuery) (*dto.ProductListResponse, error) {
	values := url.Values{}
	if query.Name != "" {
		values.Set("name", query.Name)
	}
	if query.Search != "" {
		values.Set("search", query.Search)
	}
	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}

	path := "/api/products"
	if len(values) > 0 {
		path += "?" + values.Encode()
	}

	var out dto.ProductListResponse
	if _, err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProduct creates name with count, or adds count to it. created reports which happened.
func (c *Client) CreateProduct(ctx context.Context, name string, count decimal.Decimal) (*dto.ProductResponse, bool, error) {
	var out dto.ProductResponse
	body := createProductBody{Name: name, Count: json.Number(count.String())}
	status, err := c.do(ctx, http.MethodPost, "/api/products", body, &out)
	if err != nil {
		return nil, false, err
	}
	return &out, status == http.StatusCreated, nil
}

func (c *Client) UpdateProduct(ctx context.Context, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	body := updateProductBody{Name: req.Name, NewName: req.NewName}
	if req.Count != nil {
		body.Count = json.Number(req.Count.String())
	}

	var out dto.ProductResponse
	if _, err := c.do(ctx, http.MethodPut, "/api/products", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, name string) (string, error) {
	var out response.MessageResponse
	if _, err := c.do(ctx, http.MethodDelete, "/api/products", dto.DeleteProductRequest{ProductName: name}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e response.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
