// Package inventoryapi talks to the upstream fixed-asset inventory REST API.
package inventoryapi

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

	"github.com/sirupsen/logrus"

	"assetimport/internal/config"
	"assetimport/internal/domain"
)

const (
	maxLookupPages = 1000
	maxErrorRunes  = 200
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// Client implements port.BulkSubmitter and port.CategoryLookup over HTTP.
type Client struct {
	baseURL    string
	token      string
	cfg        config.APIConfig
	httpClient *http.Client
	log        *logrus.Entry
}

// NewClient creates a client for the configured inventory API. A zero
// timeout leaves the transport default in place.
func NewClient(cfg *config.APIConfig, log *logrus.Entry) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout}, log)
}

// NewClientWithHTTP creates a client with a custom http.Client. Used in tests.
func NewClientWithHTTP(cfg *config.APIConfig, httpClient *http.Client, log *logrus.Entry) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		cfg:        *cfg,
		httpClient: httpClient,
		log:        log.WithField("component", "inventoryapi"),
	}
}

// BulkSubmit sends the whole batch in one request and returns the raw body.
func (c *Client) BulkSubmit(ctx context.Context, kind domain.ImportKind, records []map[string]any) (json.RawMessage, error) {
	method, path, err := c.bulkEndpoint(kind)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshaling bulk payload: %w", err)
	}

	c.log.WithFields(logrus.Fields{"kind": kind, "records": len(records), "path": path}).Info("submitting bulk batch")
	body, err := c.do(ctx, method, path, nil, payload)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) bulkEndpoint(kind domain.ImportKind) (method, path string, err error) {
	switch kind {
	case domain.ImportKindCategories:
		return http.MethodPost, c.cfg.CategoriesBulkPath, nil
	case domain.ImportKindAssets:
		return http.MethodPost, c.cfg.AssetsBulkPath, nil
	case domain.ImportKindAssetUpdates:
		return http.MethodPut, c.cfg.AssetsBulkPath, nil
	default:
		return "", "", fmt.Errorf("%w: %s", domain.ErrUnknownImportKind, kind)
	}
}

type categoryPage struct {
	Items []categoryItem `json:"items"`
	Page  int            `json:"page"`
	Pages int            `json:"pages"`
}

type categoryItem struct {
	ID       any    `json:"id"`
	Category string `json:"category"`
	Name     string `json:"name"`
}

// ListCategories walks every page of the category list.
func (c *Client) ListCategories(ctx context.Context) ([]domain.KnownCategory, error) {
	size := c.cfg.LookupPageSize
	if size <= 0 {
		size = 100
	}

	var out []domain.KnownCategory
	for page := 1; page <= maxLookupPages; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("size", strconv.Itoa(size))

		body, err := c.do(ctx, http.MethodGet, c.cfg.CategoriesListPath, q, nil)
		if err != nil {
			return nil, fmt.Errorf("listing categories page %d: %w", page, err)
		}

		var resp categoryPage
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decoding categories page %d: %w", page, err)
		}

		for _, item := range resp.Items {
			name := item.Category
			if name == "" {
				name = item.Name
			}
			out = append(out, domain.KnownCategory{ID: idString(item.ID), Category: name})
		}

		if len(resp.Items) == 0 {
			break
		}
		if resp.Pages > 0 && page >= resp.Pages {
			break
		}
		if resp.Pages == 0 && len(resp.Items) < size {
			break
		}
	}

	c.log.WithField("categories", len(out)).Debug("category list fetched")
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

// errorMessage pulls a readable message out of an error body.
func errorMessage(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err == nil {
		for _, k := range []string{"detail", "message", "error"} {
			if s, ok := obj[k].(string); ok && s != "" {
				return s
			}
		}
	}
	msg := strings.TrimSpace(string(body))
	if runes := []rune(msg); len(runes) > maxErrorRunes {
		msg = string(runes[:maxErrorRunes])
	}
	return msg
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}
