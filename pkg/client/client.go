package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
)

// Client is the API client for the timesheets server
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SubmitResult mirrors the server's submit summary
type SubmitResult struct {
	BatchID     string              `json:"batch_id"`
	DryRun      bool                `json:"dry_run"`
	Records     int                 `json:"records"`
	Entries     int                 `json:"entries"`
	Submitted   int                 `json:"submitted"`
	Submissions []domain.Submission `json:"submissions"`
}

// BatchDetail is a batch with its submitted lines
type BatchDetail struct {
	Batch       *domain.SubmissionBatch `json:"batch"`
	Submissions []domain.Submission     `json:"submissions"`
}

// Preview retrieves the aggregated entries for a window
func (c *Client) Preview(start, end time.Time) ([]domain.Submission, error) {
	var response struct {
		Data []domain.Submission `json:"data"`
	}
	if err := c.do(http.MethodGet, "/api/v1/timesheets/preview", c.buildTimeParams(start, end), &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// Submit asks the server to aggregate and submit a window
func (c *Client) Submit(start, end time.Time, dryRun bool) (*SubmitResult, error) {
	params := c.buildTimeParams(start, end)
	params.Set("dry_run", strconv.FormatBool(dryRun))

	var response struct {
		Data *SubmitResult `json:"data"`
	}
	if err := c.do(http.MethodPost, "/api/v1/timesheets/submit", params, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// ListBatches retrieves the most recent batches
func (c *Client) ListBatches(limit int) ([]*domain.SubmissionBatch, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var response struct {
		Data []*domain.SubmissionBatch `json:"data"`
	}
	if err := c.do(http.MethodGet, "/api/v1/batches", params, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetBatch retrieves one batch with its lines
func (c *Client) GetBatch(id string) (*BatchDetail, error) {
	var response struct {
		Data *BatchDetail `json:"data"`
	}
	if err := c.do(http.MethodGet, "/api/v1/batches/"+url.PathEscape(id), nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck() error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.do(http.MethodGet, "/health", nil, &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

func (c *Client) buildTimeParams(start, end time.Time) url.Values {
	params := url.Values{}
	if !start.IsZero() {
		params.Set("start", start.Format(time.RFC3339))
	}
	if !end.IsZero() {
		params.Set("end", end.Format(time.RFC3339))
	}
	return params
}

func (c *Client) do(method, path string, params url.Values, result interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequest(method, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
