// Package backend cliente del backend REST de inventario (/api/inventory). La estación de
// escaneo lo usa como Inventory y PersistenceGateway cuando no tiene base de datos propia.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/aviation-inventory/internal/application/dto"
	"github.com/jhoicas/aviation-inventory/internal/application/scanflow"
	"github.com/jhoicas/aviation-inventory/internal/domain"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
)

var (
	_ scanflow.Inventory          = (*Client)(nil)
	_ scanflow.PersistenceGateway = (*Client)(nil)
)

const inventoryPath = "/api/inventory"

// Client implementa los puertos de inventario y persistencia sobre HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient construye el cliente. timeout <= 0 deja el tope al contexto de cada llamada.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient reemplaza el cliente HTTP (tests).
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// StatusError respuesta no 2xx del backend.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Body)
}

// FindPart descarga el inventario y busca la parte por ID.
func (c *Client) FindPart(ctx context.Context, id string) (*entity.Part, error) {
	var all []dto.PartDTO
	if err := c.doJSON(ctx, http.MethodGet, inventoryPath, nil, &all); err != nil {
		return nil, fmt.Errorf("find part: %w", err)
	}
	for _, p := range all {
		if p.ID == id {
			return p.ToEntity()
		}
	}
	return nil, domain.ErrPartNotFound
}

// Save envía la instantánea completa como lista de un elemento (upsert del backend).
func (c *Client) Save(ctx context.Context, part *entity.Part) error {
	if part == nil {
		return domain.ErrInvalidInput
	}
	body := []dto.PartDTO{dto.PartFromEntity(part)}
	if err := c.doJSON(ctx, http.MethodPost, inventoryPath, body, nil); err != nil {
		return fmt.Errorf("save part %s: %w", part.ID, err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, respBody any) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
