// Package portalapi is a thin read client for the remote job and
// application APIs the dashboards aggregate over. The gateway never
// owns this data; failures degrade the affected dashboard slice to an
// empty default.
package portalapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Job is a posted job as returned by the jobs API
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CompanyName string    `json:"company_name"`
	Location    string    `json:"location,omitempty"`
	SalaryRange string    `json:"salary_range,omitempty"`
	PostedAt    time.Time `json:"posted_at"`
}

// Application is a candidate's application to a job
type Application struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	JobTitle  string    `json:"job_title"`
	Status    string    `json:"status"`
	AppliedAt time.Time `json:"applied_at"`
}

// Approval is a recruiter account awaiting admin review
type Approval struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	CompanyName string    `json:"company_name"`
	RequestedAt time.Time `json:"requested_at"`
}

// Client calls the remote portal data APIs with the session's bearer
// token
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a portal data client. httpClient may be nil.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: baseURL, client: httpClient}
}

// Jobs lists jobs visible to the current user
func (c *Client) Jobs(ctx context.Context, token string) ([]Job, error) {
	var jobs []Job
	if err := c.get(ctx, "/jobs", token, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Applications lists the current user's applications (candidate view)
// or applications to their postings (recruiter view)
func (c *Client) Applications(ctx context.Context, token string) ([]Application, error) {
	var applications []Application
	if err := c.get(ctx, "/applications", token, &applications); err != nil {
		return nil, err
	}
	return applications, nil
}

// PendingApprovals lists recruiter accounts awaiting review (admin only)
func (c *Client) PendingApprovals(ctx context.Context, token string) ([]Approval, error) {
	var approvals []Approval
	if err := c.get(ctx, "/admin/approvals", token, &approvals); err != nil {
		return nil, err
	}
	return approvals, nil
}

// Stats fetches aggregate counters for the admin dashboard
func (c *Client) Stats(ctx context.Context, token string) (map[string]int, error) {
	var stats map[string]int
	if err := c.get(ctx, "/admin/stats", token, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *Client) get(ctx context.Context, path, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("portal request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("portal request returned %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	return json.Unmarshal(raw, out)
}
