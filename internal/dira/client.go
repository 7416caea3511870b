package dira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pfrederiksen/dira-lottery/internal/logger"
)

const (
	DefaultBaseURL = "https://www.dira.moch.gov.il/api/Invoker"
	DefaultTimeout = 30 * time.Second

	// PageNumber and PageSize are fixed by the dashboard; only the first
	// project item is read.
	PageNumber = 1
	PageSize   = 12

	acceptHeader         = "application/json, text/plain, */*"
	acceptLanguageHeader = "en-US,en;q=0.9,he;q=0.8"
)

// SubscriberCounts is the subscriber summary of one lottery stage.
type SubscriberCounts struct {
	TotalSubscribers      int `json:"TotalSubscribers"`
	TotalLocalSubscribers int `json:"TotalLocalSubscribers"`
}

type projectsResponse struct {
	ProjectItems []projectItem `json:"ProjectItems"`
}

type projectItem struct {
	LotteryStageSummery *stageSummary `json:"LotteryStageSummery"`
}

type stageSummary struct {
	TotalSubscribers      *int `json:"TotalSubscribers"`
	TotalLocalSubscribers *int `json:"TotalLocalSubscribers"`
}

// Client calls the Projects method of the Dira API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a client for the public Dira API.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logger.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithBaseURL points the client at another Invoker endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// RequestURL builds the Invoker URL for one lottery. The Projects query is
// passed URL-encoded inside the param argument.
func (c *Client) RequestURL(project, lottery string) string {
	inner := fmt.Sprintf("?firstApplicantIdentityNumber=&secondApplicantIdentityNumber=&PageNumber=%d&PageSize=%d&ProjectNumber=%s&LotteryNumber=%s&",
		PageNumber, PageSize, url.QueryEscape(project), url.QueryEscape(lottery))

	query := url.Values{}
	query.Set("method", "Projects")
	query.Set("param", inner)

	return c.baseURL + "?" + query.Encode()
}

// FetchSubscribers returns the subscriber counts of one lottery. Every failure
// is a *RemoteDataError carrying the project and lottery. It does not retry.
func (c *Client) FetchSubscribers(ctx context.Context, project, lottery string) (SubscriberCounts, error) {
	fail := func(reason Reason, status int, err error) (SubscriberCounts, error) {
		return SubscriberCounts{}, &RemoteDataError{
			Project:    project,
			Lottery:    lottery,
			Reason:     reason,
			StatusCode: status,
			Err:        err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RequestURL(project, lottery), nil)
	if err != nil {
		return fail(ReasonTransport, 0, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguageHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(ReasonTransport, 0, fmt.Errorf("making request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(ReasonTransport, 0, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(ReasonStatus, resp.StatusCode, fmt.Errorf("API returned status %d", resp.StatusCode))
	}

	counts, reason, err := decodeSubscribers(body)
	if err != nil {
		return fail(reason, 0, err)
	}

	c.logger.Debug("Fetched subscribers", logger.Fields{
		"project":           project,
		"lottery":           lottery,
		"subscribers":       counts.TotalSubscribers,
		"local_subscribers": counts.TotalLocalSubscribers,
	})

	return counts, nil
}

func decodeSubscribers(body []byte) (SubscriberCounts, Reason, error) {
	var result projectsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return SubscriberCounts{}, ReasonDecode, fmt.Errorf("parsing response: %w", err)
	}

	if len(result.ProjectItems) == 0 {
		return SubscriberCounts{}, ReasonEmpty, ErrNoProjectItems
	}

	summary := result.ProjectItems[0].LotteryStageSummery
	if summary == nil {
		return SubscriberCounts{}, ReasonDecode, fmt.Errorf("first project item has no LotteryStageSummery")
	}
	if summary.TotalSubscribers == nil || summary.TotalLocalSubscribers == nil {
		return SubscriberCounts{}, ReasonDecode, fmt.Errorf("LotteryStageSummery is missing subscriber totals")
	}

	return SubscriberCounts{
		TotalSubscribers:      *summary.TotalSubscribers,
		TotalLocalSubscribers: *summary.TotalLocalSubscribers,
	}, "", nil
}
