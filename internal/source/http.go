package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"

	"usage-sync-backend/config"
)

// HTTPAdapter talks to the usage-tracking agent over its paged HTTP API.
type HTTPAdapter struct {
	cfg        *config.SourceConfig
	client     *http.Client
	labelCache *cache.Cache
	pageSize   int
}

// NewHTTPAdapter creates an adapter from the source configuration.
func NewHTTPAdapter(cfg *config.SourceConfig) *HTTPAdapter {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Source adapter will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	labelTTL := time.Duration(cfg.LabelCacheTTLSeconds) * time.Second

	// The paging loop advances by pageSize; a non-positive value would never
	// terminate it.
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 1
	}

	return &HTTPAdapter{
		cfg:      cfg,
		pageSize: pageSize,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		labelCache: cache.New(labelTTL, 2*labelTTL),
	}
}

type statsResponse struct {
	Code int `json:"code"`
	Data struct {
		Page     int            `json:"page"`
		PageSize int            `json:"pageSize"`
		Total    int            `json:"total"`
		Items    []IntervalStat `json:"items"`
	} `json:"data"`
}

type eventsResponse struct {
	Code int `json:"code"`
	Data struct {
		Page     int               `json:"page"`
		PageSize int               `json:"pageSize"`
		Total    int               `json:"total"`
		Items    []TransitionEvent `json:"items"`
	} `json:"data"`
}

type labelResponse struct {
	Code int `json:"code"`
	Data struct {
		Label string `json:"label"`
	} `json:"data"`
}

// QueryIntervalStats fetches all interval statistics pages for the window.
func (a *HTTPAdapter) QueryIntervalStats(ctx context.Context, start, end int64) ([]IntervalStat, error) {
	var all []IntervalStat
	total := 1
	pageSize := a.pageSize
	for page := 1; (page-1)*pageSize < total; page++ {
		body, err := a.post(ctx, a.cfg.StatsURL, map[string]any{
			"start":    start,
			"end":      end,
			"page":     page,
			"pageSize": pageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("stats page %d: %w", page, err)
		}

		var resp statsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stats response: %w", err)
		}
		if resp.Code != 0 {
			return nil, fmt.Errorf("source returned non-zero application code: %d", resp.Code)
		}
		if resp.Data.Total == 0 || len(resp.Data.Items) == 0 {
			break
		}
		total = resp.Data.Total
		all = append(all, resp.Data.Items...)
	}
	return all, nil
}

// QueryTransitionEvents fetches the ordered transition event stream for the
// window. Pages preserve the source's timestamp ordering.
func (a *HTTPAdapter) QueryTransitionEvents(ctx context.Context, start, end int64) ([]TransitionEvent, error) {
	var all []TransitionEvent
	total := 1
	pageSize := a.pageSize
	for page := 1; (page-1)*pageSize < total; page++ {
		body, err := a.post(ctx, a.cfg.EventsURL, map[string]any{
			"start":    start,
			"end":      end,
			"page":     page,
			"pageSize": pageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("events page %d: %w", page, err)
		}

		var resp eventsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal events response: %w", err)
		}
		if resp.Code != 0 {
			return nil, fmt.Errorf("source returned non-zero application code: %d", resp.Code)
		}
		if resp.Data.Total == 0 || len(resp.Data.Items) == 0 {
			break
		}
		total = resp.Data.Total
		all = append(all, resp.Data.Items...)
	}
	return all, nil
}

// ResolveDisplayName looks up the human-readable label for a package name.
// Results are cached so repeated aggregation calls do not hammer the agent.
func (a *HTTPAdapter) ResolveDisplayName(ctx context.Context, packageName string) (string, error) {
	if label, found := a.labelCache.Get(packageName); found {
		return label.(string), nil
	}

	if a.cfg.LabelsURL == "" {
		return "", fmt.Errorf("no labels endpoint configured")
	}

	body, err := a.post(ctx, a.cfg.LabelsURL, map[string]any{
		"package_name": packageName,
	})
	if err != nil {
		return "", err
	}

	var resp labelResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal label response: %w", err)
	}
	if resp.Code != 0 {
		return "", fmt.Errorf("source returned non-zero application code: %d", resp.Code)
	}
	if resp.Data.Label == "" {
		return "", fmt.Errorf("no label for package %q", packageName)
	}

	a.labelCache.Set(packageName, resp.Data.Label, cache.DefaultExpiration)
	return resp.Data.Label, nil
}

// post sends one JSON request to the agent and returns the raw response body.
func (a *HTTPAdapter) post(ctx context.Context, endpoint string, payload map[string]any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	for key, value := range a.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
