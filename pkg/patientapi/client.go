// Package patientapi talks to the remote clinical-data API: it pulls the full
// patient list page by page with retry/backoff and submits assessments.
package patientapi

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

	"github.com/riskwatch/platform/pkg/common/config"
	"github.com/riskwatch/platform/pkg/common/logger"
	"github.com/riskwatch/platform/pkg/common/models"
	"github.com/riskwatch/platform/pkg/gateway/httpclient"
	"github.com/riskwatch/platform/pkg/observability/metrics"
	"golang.org/x/time/rate"
)

const (
	MinLimit = 1
	MaxLimit = 20

	apiKeyHeader = "x-api-key"
	maxBodyBytes = 4 * 1024 * 1024

	opListPatients = "list patients"
	opSubmit       = "submit assessment"
)

// Config describes how to reach the remote API.
type Config struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	Retry        httpclient.RetryPolicy
	RPS          float64
	Burst        int
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// ConfigFrom maps the process configuration onto a client Config.
func ConfigFrom(cfg *config.Config) Config {
	policy := httpclient.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.RetryMaxAttempts
	policy.BaseDelay = cfg.RetryBaseDelay
	policy.MaxDelay = cfg.RetryMaxDelay

	return Config{
		BaseURL:      cfg.PatientAPIBaseURL,
		APIKey:       cfg.PatientAPIKey,
		Timeout:      cfg.PatientAPITimeout,
		Retry:        policy,
		RPS:          cfg.PatientAPIRPS,
		Burst:        cfg.PatientAPIBurst,
		TokenURL:     cfg.PatientAPITokenURL,
		ClientID:     cfg.PatientAPIClientID,
		ClientSecret: cfg.PatientAPIClientSecret,
	}
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	policy  httpclient.RetryPolicy
	sleep   httpclient.Sleeper
	limiter *rate.Limiter
}

type Option func(*Client)

// WithHTTPClient replaces the default tuned HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSleeper replaces the wall-clock sleep used between retries.
func WithSleeper(s httpclient.Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

// New validates cfg and builds a client. A missing API key is reported as a
// *ConfigurationError before any network activity.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ConfigurationError{Setting: "PATIENT_API_KEY", Err: ErrMissingAPIKey}
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &ConfigurationError{Setting: "PATIENT_API_BASE_URL", Err: fmt.Errorf("invalid base url %q", cfg.BaseURL)}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	policy := cfg.Retry
	if policy.MaxAttempts == 0 && policy.BaseDelay == 0 {
		policy = httpclient.DefaultRetryPolicy()
	}

	c := &Client{
		baseURL: base.String(),
		apiKey:  cfg.APIKey,
		http:    httpclient.New(timeout, httpclient.WithClientCredentials(cfg.TokenURL, cfg.ClientID, cfg.ClientSecret)),
		policy:  policy,
		sleep:   httpclient.Sleep,
	}
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ClampLimit bounds a page size to what the remote accepts.
func ClampLimit(limit int) int {
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// FetchAllPatients pulls pages sequentially until pagination reports the end
// or maxPages pages have been fetched. Hitting maxPages is not an error;
// callers detect truncation with FetchResult.Partial.
func (c *Client) FetchAllPatients(ctx context.Context, limit, maxPages int) (*models.FetchResult, error) {
	limit = ClampLimit(limit)
	if maxPages < 1 {
		maxPages = 1
	}

	start := time.Now()
	result := &models.FetchResult{Records: []models.PatientRecord{}, Limit: limit}
	reportedTotal := -1

	for pageNum := 1; pageNum <= maxPages; pageNum++ {
		p, err := c.fetchPage(ctx, pageNum, limit)
		if err != nil {
			metrics.ObserveFetch("failed", time.Since(start))
			return nil, err
		}

		result.Records = append(result.Records, p.records...)
		result.PagesFetched++
		metrics.RecordPage()
		if p.totalPages != nil {
			reportedTotal = *p.totalPages
		}

		hasNext := p.next(pageNum, maxPages)
		logger.Log.WithFields(map[string]interface{}{
			"page":     pageNum,
			"limit":    limit,
			"records":  len(p.records),
			"has_next": hasNext,
		}).Debug("fetched patient page")

		if !hasNext {
			break
		}
		if pageNum == maxPages {
			logger.Log.WithField("max_pages", maxPages).Warn("page ceiling reached, patient list truncated")
		}
	}

	result.TotalPages = result.PagesFetched
	if reportedTotal >= 0 {
		result.TotalPages = reportedTotal
	}

	metrics.ObserveFetch("ok", time.Since(start))
	logger.Log.WithFields(map[string]interface{}{
		"records":       len(result.Records),
		"pages_fetched": result.PagesFetched,
		"total_pages":   result.TotalPages,
		"duration_ms":   time.Since(start).Milliseconds(),
	}).Info("patient fetch complete")

	return result, nil
}

func (c *Client) fetchPage(ctx context.Context, pageNum, limit int) (page, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(pageNum))
	query.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/patients?" + query.Encode()

	var out page
	attempts, err := httpclient.Retry(ctx, c.policy, c.sleep, func(attempt int) error {
		status, body, err := c.do(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			metrics.RecordAttempt(opListPatients, "transport_error")
			c.logRetry(pageNum, attempt, 0, err)
			return httpclient.Retriable(&TransferError{Op: opListPatients, Page: pageNum, Transient: true, Err: err})
		}

		if c.policy.RetriableStatus(status) {
			metrics.RecordAttempt(opListPatients, strconv.Itoa(status))
			c.logRetry(pageNum, attempt, status, nil)
			return httpclient.Retriable(&TransferError{Op: opListPatients, Page: pageNum, StatusCode: status, Body: string(body), Transient: true})
		}
		if status < 200 || status >= 300 {
			metrics.RecordAttempt(opListPatients, strconv.Itoa(status))
			return &TransferError{Op: opListPatients, Page: pageNum, StatusCode: status, Body: string(body)}
		}

		metrics.RecordAttempt(opListPatients, "ok")
		decoded, decodeErr := decodePage(body)
		if decodeErr != nil {
			logger.Log.WithError(decodeErr).WithField("page", pageNum).Warn("undecodable patient page, treating as empty")
		}
		out = decoded
		return nil
	})
	if err != nil {
		return page{}, c.transferError(opListPatients, pageNum, attempts, err)
	}
	return out, nil
}

// SubmitResponse is the remote reply to a submission, passed through as-is.
type SubmitResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// SubmitAssessment posts the alert lists. POST is not idempotent, so this makes
// a single attempt. A non-2xx reply returns both the response and a TransferError.
func (c *Client) SubmitAssessment(ctx context.Context, req models.SubmitRequest) (*SubmitResponse, error) {
	req = models.AlertSets{
		HighRisk:          req.HighRiskPatients,
		Fever:             req.FeverPatients,
		DataQualityIssues: req.DataQualityIssues,
	}.SubmitRequest()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding submission: %w", err)
	}

	resp, err := c.send(ctx, http.MethodPost, c.baseURL+"/submit-assessment", payload)
	if err != nil {
		metrics.RecordAttempt(opSubmit, "transport_error")
		return nil, c.transferError(opSubmit, 0, 1, err)
	}
	metrics.RecordAttempt(opSubmit, strconv.Itoa(resp.StatusCode))

	logger.Log.WithFields(map[string]interface{}{
		"status":      resp.StatusCode,
		"high_risk":   len(req.HighRiskPatients),
		"fever":       len(req.FeverPatients),
		"data_issues": len(req.DataQualityIssues),
	}).Info("assessment submitted")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, &TransferError{Op: opSubmit, StatusCode: resp.StatusCode, Body: string(resp.Body), Attempts: 1}
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) (int, []byte, error) {
	resp, err := c.send(ctx, method, endpoint, payload)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, resp.Body, nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte) (*SubmitResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &SubmitResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

func (c *Client) transferError(op string, pageNum, attempts int, err error) error {
	var te *TransferError
	if errors.As(err, &te) {
		te.Attempts = attempts
		return te
	}
	return &TransferError{Op: op, Page: pageNum, Attempts: attempts, Err: err}
}

func (c *Client) logRetry(pageNum, attempt, status int, err error) {
	entry := logger.Log.WithFields(map[string]interface{}{
		"page":    pageNum,
		"attempt": attempt,
		"status":  status,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	if attempt >= c.policy.MaxAttempts {
		entry.Error("patient page failed, retry budget exhausted")
		return
	}

	reason := "transport"
	if status != 0 {
		reason = strconv.Itoa(status)
	}
	metrics.RecordRetry(reason)
	entry.WithField("backoff_ms", c.policy.Backoff(attempt).Milliseconds()).Warn("patient page failed, retrying")
}
