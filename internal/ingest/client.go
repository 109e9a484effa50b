// Package ingest implements the boundary adapter for the external fetch
// contract described in spec.md §5: `fetch(symbol, source, periods) ->
// {success, financial_statements, company_id?, error?}`. Market-data
// ingestion itself (scraping Yahoo/NSE/BSE/FMP) is an external
// collaborator referenced only by this interface; HTTPClient just speaks
// the wire contract to wherever that collaborator is deployed.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
	"github.com/Rishikoli/IRIS1-sub001/internal/orchestrator"
)

// Config points HTTPClient at a deployed ingest gateway.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig matches the teacher's provider defaults: a 10s timeout
// and a localhost gateway for local development.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:9000",
		Timeout: 10 * time.Second,
	}
}

// HTTPClient implements orchestrator.IngestClient over a JSON HTTP
// gateway. It carries no resilience logic of its own — the orchestrator
// wraps every IngestClient in a rate limiter and circuit breaker before
// use, so HTTPClient's only job is the wire round trip.
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewHTTPClient builds a client against cfg.BaseURL.
func NewHTTPClient(cfg Config) *HTTPClient {
	if cfg.BaseURL == "" {
		cfg = DefaultConfig()
	}
	return &HTTPClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// wireResponse is the gateway's response body. Its statements decode into
// domain.SourceStatement directly; Go's encoding/json matches that type's
// exported fields case-insensitively against the gateway's JSON keys
// without needing struct tags on the domain type itself.
type wireResponse struct {
	Success             bool                     `json:"success"`
	FinancialStatements []domain.SourceStatement `json:"financial_statements"`
	CompanyID           string                   `json:"company_id"`
	Error               string                   `json:"error"`
}

// Fetch calls GET {BaseURL}/ingest?symbol=...&source=...&periods=... and
// decodes the gateway's response into orchestrator.IngestResult.
func (c *HTTPClient) Fetch(ctx context.Context, symbol, source string, periods int) (orchestrator.IngestResult, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("source", source)
	q.Set("periods", strconv.Itoa(periods))

	reqURL := fmt.Sprintf("%s/ingest?%s", c.cfg.BaseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return orchestrator.IngestResult{}, fmt.Errorf("build ingest request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return orchestrator.IngestResult{}, fmt.Errorf("ingest gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return orchestrator.IngestResult{}, fmt.Errorf("ingest gateway returned HTTP %d", resp.StatusCode)
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return orchestrator.IngestResult{}, fmt.Errorf("decode ingest response: %w", err)
	}

	return orchestrator.IngestResult{
		Success:    wire.Success,
		Statements: wire.FinancialStatements,
		SourceTag:  source,
		CompanyID:  wire.CompanyID,
		Error:      wire.Error,
	}, nil
}

var _ orchestrator.IngestClient = (*HTTPClient)(nil)
