package samplevotes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/radial/internal/adapters/repository"
	"github.com/okian/radial/internal/domain/model"
	"github.com/okian/radial/internal/domain/preference"
	"github.com/okian/radial/pkg/logger"
)

// Request mirrors the body of POST /groupings.
type Request struct {
	Projects              []string      `json:"projects"`
	Participants          []Participant `json:"participants"`
	Attendance            []string      `json:"attendance,omitempty"`
	SecondRoundAttendance []string      `json:"second_round_attendance,omitempty"`
	HomogeneousGroups     int           `json:"homogeneous_groups,omitempty"`
	HeterogeneousGroups   int           `json:"heterogeneous_groups,omitempty"`
	Seed                  *int64        `json:"seed,omitempty"`
}

// Participant is one ballot row in a Request.
type Participant struct {
	ID    string       `json:"id"`
	Votes []model.Vote `json:"votes"`
}

// NewRequest copies m into a request body.
func NewRequest(m *preference.Matrix) Request {
	req := Request{Projects: m.Projects(), Participants: make([]Participant, m.Rows())}
	for i := range req.Participants {
		p := m.Participant(i)
		req.Participants[i] = Participant{ID: p.ID, Votes: p.Votes}
	}
	return req
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client talks to a radial HTTP service.
type Client struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

// NewClient creates a client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.Get().Named("samplevotes"),
	}
}

// CheckHealth verifies the service answers /healthz with 200.
func (c *Client) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer c.closeBody(ctx, resp)
	_, _ = io.Copy(io.Discard, resp.Body)

	// The service returns Prometheus metrics on /healthz; any 200 is healthy.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// Submit posts body to /groupings and decodes the returned run. With async
// set the service queues the run and the result is pending.
func (c *Client) Submit(ctx context.Context, body Request, async bool) (repository.Run, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return repository.Run{}, fmt.Errorf("marshal request body: %w", err)
	}
	url := c.baseURL + "/groupings"
	if async {
		url += "?async=true"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return repository.Run{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return repository.Run{}, fmt.Errorf("post groupings: %w", err)
	}
	defer c.closeBody(ctx, resp)
	return decodeRun(resp)
}

// Get fetches a stored run by id.
func (c *Client) Get(ctx context.Context, id string) (repository.Run, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/groupings/"+id, http.NoBody)
	if err != nil {
		return repository.Run{}, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return repository.Run{}, fmt.Errorf("get grouping: %w", err)
	}
	defer c.closeBody(ctx, resp)
	return decodeRun(resp)
}

// Wait polls a queued run until it leaves the pending state or ctx ends.
func (c *Client) Wait(ctx context.Context, id string, every time.Duration) (repository.Run, error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		run, err := c.Get(ctx, id)
		if err != nil {
			return run, err
		}
		if run.Status != repository.StatusPending {
			return run, nil
		}
		select {
		case <-ctx.Done():
			return run, ctx.Err()
		case <-ticker.C:
		}
	}
}

func decodeRun(resp *http.Response) (repository.Run, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return repository.Run{}, fmt.Errorf("read response: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		var run repository.Run
		if err := json.Unmarshal(data, &run); err != nil {
			return repository.Run{}, fmt.Errorf("decode run: %w", err)
		}
		return run, nil
	default:
		var e apiError
		if err := json.Unmarshal(data, &e); err != nil || e.Code == "" {
			return repository.Run{}, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
		}
		return repository.Run{}, fmt.Errorf("%w: %s: %s", ErrRequestFailed, e.Code, e.Message)
	}
}

func (c *Client) closeBody(ctx context.Context, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.logger.Error(ctx, "failed to close response body", logger.Error(err))
	}
}
