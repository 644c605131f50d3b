package burp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Issue is a single finding reported by Burp's scanner.
type Issue struct {
	// Name is the issue title (e.g., "SQL injection").
	Name string `json:"name"`

	// Severity is Burp's severity string ("high", "medium", "low",
	// "information").
	Severity string `json:"severity"`

	// Confidence is Burp's confidence rating ("certain", "firm",
	// "tentative").
	Confidence string `json:"confidence"`

	// Origin is the scheme and host the issue was found on.
	Origin string `json:"origin"`

	// Path is the URL path the issue was found on.
	Path string `json:"path"`

	// Description is Burp's issue background text, if requested.
	Description string `json:"description,omitempty"`
}

// scanRequest is the POST /scan payload for the Burp REST API.
type scanRequest struct {
	URLs []string `json:"urls"`
}

// scanStatus is the GET /scan/{id} response from the Burp REST API.
type scanStatus struct {
	ScanStatus  string       `json:"scan_status"`
	IssueEvents []issueEvent `json:"issue_events"`
}

// issueEvent wraps an issue in Burp's event envelope.
type issueEvent struct {
	Type  string `json:"type"`
	Issue Issue  `json:"issue"`
}

// apiBase returns the REST API base URL, including the key segment when
// an API key is configured. Burp's API places the key in the path:
// http://host:1337/{key}/v0.1/...
func (c *Client) apiBase() string {
	if c.apiKey != "" {
		return fmt.Sprintf("http://%s/%s/v0.1", c.apiAddress, c.apiKey)
	}
	return fmt.Sprintf("http://%s/v0.1", c.apiAddress)
}

// CheckAPI verifies the REST API answers.
func (c *Client) CheckAPI(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAPIUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %s", ErrAPIUnavailable, resp.Status)
	}
	return nil
}

// StartScan submits a target URL to Burp's scanner and returns the scan
// task ID. The ID comes back in the Location header of the 201 response.
func (c *Client) StartScan(ctx context.Context, targetURL string) (string, error) {
	payload, err := json.Marshal(scanRequest{URLs: []string{targetURL}})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase()+"/scan", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPIUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("Burp scan request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("Burp scan response missing Location header")
	}

	// Location is either a bare task ID or a path ending in one
	parts := strings.Split(strings.TrimSuffix(location, "/"), "/")
	return parts[len(parts)-1], nil
}

// ScanIssues fetches the current issues for a scan task.
// It also returns Burp's scan status string ("crawling", "auditing",
// "succeeded", "failed").
func (c *Client) ScanIssues(ctx context.Context, taskID string) ([]Issue, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase()+"/scan/"+taskID, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrAPIUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("Burp scan status request failed: %s", resp.Status)
	}

	var status scanStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, "", fmt.Errorf("failed to decode Burp scan status: %w", err)
	}

	issues := make([]Issue, 0, len(status.IssueEvents))
	for _, ev := range status.IssueEvents {
		issues = append(issues, ev.Issue)
	}
	return issues, status.ScanStatus, nil
}
