package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
	apperrors "github.com/kurihiro0119/hamster-timesheets/internal/errors"
	"github.com/kurihiro0119/hamster-timesheets/internal/logger"
)

const (
	objectUsers      = "getmytime.api.usermanager"
	objectManage     = "getmytime.api.managemanager"
	objectTimeEntry  = "getmytime.api.timeentrymanager"
	lookupsRequested = "[customerjobs],[serviceitems]"
	billableTag      = "billable"
)

// Options configures a GetMyTime client
type Options struct {
	BaseURL    string
	Username   string
	Password   string
	Token      string // bearer token; skips the login form when set
	EmployeeID string
	ProjectID  int
	// RequestDelay is the minimum gap between two calls.
	RequestDelay time.Duration
	HTTPClient   *http.Client
	Log          *logger.Logger
}

// Client talks to the GetMyTime form API
type Client struct {
	opts       Options
	baseURL    *url.URL
	httpClient *http.Client
	limiter    RateLimiter
	log        *logger.Logger

	mu         sync.Mutex
	loggedIn   bool
	employeeID string
	customers  map[string]string
	tasks      map[string]string
}

// NewClient creates a new GetMyTime client
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("invalid GetMyTime URL %q", opts.BaseURL))
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		httpClient = &copied
	}
	if opts.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		tc := oauth2.NewClient(ctx, ts)
		tc.Timeout = httpClient.Timeout
		httpClient = tc
	}
	httpClient.Jar = jar

	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		opts:       opts,
		baseURL:    base,
		httpClient: httpClient,
		limiter:    NewRateLimiter(opts.RequestDelay),
		log:        log.With("component", "getmytime"),
	}, nil
}

// Login starts a session. With a token configured no request is made.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.login(ctx)
}

func (c *Client) login(ctx context.Context) error {
	if c.loggedIn {
		return nil
	}
	if c.opts.Token != "" {
		c.employeeID = c.opts.EmployeeID
		c.loggedIn = true
		return nil
	}

	body, err := c.post(ctx, objectUsers, "login", url.Values{
		"username": {c.opts.Username},
		"password": {c.opts.Password},
	})
	if err != nil {
		return err
	}
	if strings.Contains(body, "Incorrect") {
		return apperrors.NewUnauthorizedError(strings.TrimSpace(body))
	}

	c.employeeID = c.opts.EmployeeID
	for _, cookie := range c.httpClient.Jar.Cookies(c.baseURL) {
		if cookie.Name == "userid" {
			c.employeeID = cookie.Value
		}
	}
	if c.employeeID == "" {
		return apperrors.NewUnauthorizedError("login response did not identify the employee")
	}

	c.loggedIn = true
	c.log.Info("logged in", "username", c.opts.Username, "employee_id", c.employeeID)
	return nil
}

type lookupsResponse struct {
	CustomerJobs struct {
		Rows []struct {
			Name string      `json:"strClientJobName"`
			ID   json.Number `json:"intClientJobListID"`
		} `json:"rows"`
	} `json:"customerjobs"`
	ServiceItems struct {
		Rows []struct {
			Name string      `json:"strTaskName"`
			ID   json.Number `json:"intTaskListID"`
		} `json:"rows"`
	} `json:"serviceitems"`
}

// FetchLookups loads customer and task ids once per client.
func (c *Client) FetchLookups(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchLookups(ctx)
}

func (c *Client) fetchLookups(ctx context.Context) error {
	if c.customers != nil {
		return nil
	}
	if err := c.login(ctx); err != nil {
		return err
	}

	body, err := c.post(ctx, objectManage, "fetchLookups", url.Values{"lookups": {lookupsRequested}})
	if err != nil {
		return err
	}

	var resp lookupsResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return apperrors.NewUpstreamError("invalid lookups response", err)
	}

	customers := make(map[string]string, len(resp.CustomerJobs.Rows))
	for _, row := range resp.CustomerJobs.Rows {
		customers[normalizeName(row.Name)] = row.ID.String()
	}
	tasks := make(map[string]string, len(resp.ServiceItems.Rows))
	for _, row := range resp.ServiceItems.Rows {
		tasks[strings.ToLower(row.Name)] = row.ID.String()
	}
	c.customers, c.tasks = customers, tasks

	c.log.Debug("fetched lookups", "customers", len(customers), "tasks", len(tasks))
	return nil
}

// Validate checks every submission before any of them is sent.
func (c *Client) Validate(ctx context.Context, subs []domain.Submission) error {
	var problems []string
	for i, sub := range subs {
		if strings.TrimSpace(sub.Comments) == "" {
			problems = append(problems, fmt.Sprintf("entry %d (%s %s/%s): comments may not be empty", i+1, sub.StartTime, sub.Customer, sub.Activity))
		}
	}
	if len(subs) == 0 {
		return nil
	}

	c.mu.Lock()
	err := c.fetchLookups(ctx)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	for i, sub := range subs {
		if _, _, err := c.resolve(sub); err != nil {
			problems = append(problems, fmt.Sprintf("entry %d (%s): %s", i+1, sub.StartTime, err))
		}
	}
	if len(problems) > 0 {
		return apperrors.NewValidationError(problems)
	}
	return nil
}

// Submit creates one time entry.
func (c *Client) Submit(ctx context.Context, sub domain.Submission) error {
	if strings.TrimSpace(sub.Comments) == "" {
		return apperrors.NewValidationError([]string{"comments may not be empty"})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fetchLookups(ctx); err != nil {
		return err
	}
	customerID, taskID, err := c.resolve(sub)
	if err != nil {
		return apperrors.NewValidationError([]string{err.Error()})
	}

	form := url.Values{
		"employeeid":    {c.employeeID},
		"startdate":     {sub.StartTime},
		"startdatetime": {sub.StartTime},
		"minutes":       {strconv.Itoa(sub.Minutes)},
		"customerid":    {customerID},
		"taskid":        {taskID},
		"comments":      {sub.Comments},
		"billable":      {strconv.FormatBool(hasTag(sub.Tags, billableTag))},
		"projectid":     {strconv.Itoa(c.opts.ProjectID)},
		"classid":       {"0"},
		"starttimer":    {"false"},
	}

	c.log.Info("submitting entry", "start", sub.StartTime, "end", sub.EndTime, "customer", sub.Customer, "minutes", sub.Minutes)
	body, err := c.post(ctx, objectTimeEntry, "createTimeEntry", form)
	if err != nil {
		return err
	}
	if strings.Contains(body, "error") {
		return apperrors.NewUpstreamError(fmt.Sprintf("createTimeEntry rejected entry at %s", sub.StartTime), fmt.Errorf("%s", strings.TrimSpace(body)))
	}
	return nil
}

// resolve must be called with lookups loaded.
func (c *Client) resolve(sub domain.Submission) (customerID, taskID string, err error) {
	customerID, ok := c.customers[strings.ToLower(sub.Customer)]
	if !ok {
		return "", "", fmt.Errorf("unknown customer %q", sub.Customer)
	}
	taskID, ok = c.tasks[strings.ToLower(sub.Activity)]
	if !ok {
		return "", "", fmt.Errorf("unknown activity %q", sub.Activity)
	}
	return customerID, taskID, nil
}

func (c *Client) post(ctx context.Context, object, method string, form url.Values) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	u := *c.baseURL
	q := u.Query()
	q.Set("object", object)
	q.Set("method", method)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewUpstreamError(fmt.Sprintf("%s request failed", method), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewUpstreamError(fmt.Sprintf("failed to read %s response", method), err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		c.limiter.PauseUntil(time.Now().Add(retryAfter(resp.Header.Get("Retry-After"))))
		return "", apperrors.NewRateLimitedError(fmt.Sprintf("%s was rate limited", method))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", apperrors.NewUnauthorizedError(fmt.Sprintf("%s returned status %d", method, resp.StatusCode))
	case resp.StatusCode >= 300:
		return "", apperrors.NewUpstreamError(fmt.Sprintf("%s returned status %d", method, resp.StatusCode), fmt.Errorf("%s", strings.TrimSpace(string(body))))
	}
	return string(body), nil
}

func retryAfter(header string) time.Duration {
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return time.Minute
}

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "&amp;", "&")
}

func hasTag(tags, want string) bool {
	for _, tag := range strings.Split(tags, ",") {
		if strings.EqualFold(strings.TrimSpace(tag), want) {
			return true
		}
	}
	return false
}
