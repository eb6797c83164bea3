package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/epavlova/macroledger/internal/common"
	"github.com/epavlova/macroledger/internal/models"
	"github.com/epavlova/macroledger/internal/session"
)

// HTTPClient talks to the nutrition backend over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	tokens  session.TokenProvider
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the given base URL. Every request
// carries a bearer token from tokens; token errors (no session, expired)
// short-circuit the request before any network I/O.
func NewHTTPClient(baseURL string, tokens session.TokenProvider, timeout time.Duration) (*HTTPClient, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	return &HTTPClient{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	token, err := c.tokens.Token()
	if err != nil {
		return err
	}

	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set(common.AuthorizationHeader, "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp.StatusCode); err != nil {
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func mapStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return common.ErrUnauthorized
	case code == http.StatusNotFound:
		return common.ErrNotFound
	case code >= 500:
		return fmt.Errorf("%w: status %d", common.ErrUnavailable, code)
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}

func (c *HTTPClient) GetDay(ctx context.Context, date string) (*DaySnapshot, error) {
	var payload DaySnapshot
	if err := c.do(ctx, http.MethodGet, "/meals/day/"+date, nil, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *HTTPClient) SyncDay(ctx context.Context, req SyncDayRequest) (*SyncDayResponse, error) {
	var payload SyncDayResponse
	if err := c.do(ctx, http.MethodPost, "/meals/sync", nil, req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *HTTPClient) GetHistory(ctx context.Context, q HistoryQuery) ([]models.MealHistoryEntry, error) {
	values := url.Values{}
	if q.StartDate != "" {
		values.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		values.Set("endDate", q.EndDate)
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}

	var payload []models.MealHistoryEntry
	if err := c.do(ctx, http.MethodGet, "/meals/history", values, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *HTTPClient) GetAnalytics(ctx context.Context, days int) (*models.NutritionAnalytics, error) {
	values := url.Values{}
	values.Set("days", strconv.Itoa(days))

	var payload models.NutritionAnalytics
	if err := c.do(ctx, http.MethodGet, "/meals/analytics", values, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *HTTPClient) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	var payload []models.Recipe
	if err := c.do(ctx, http.MethodGet, "/recipes", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *HTTPClient) SyncRecipes(ctx context.Context, recipes []models.Recipe) ([]models.Recipe, error) {
	var payload []models.Recipe
	if err := c.do(ctx, http.MethodPost, "/recipes/sync", nil, recipes, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *HTTPClient) DeleteRecipe(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/recipes/"+id, nil, nil, nil)
}
