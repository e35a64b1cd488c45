// Package labelstudio talks to a Label Studio server: it lists projects,
// reads their labeling configuration and downloads annotation exports.
package labelstudio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the address of a local Label Studio install.
const DefaultBaseURL = "http://localhost:8080"

// ErrNoLabels is returned when a project's labeling config declares no labels.
var ErrNoLabels = errors.New("project has no labels")

// StatusError reports a non-2xx response.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Body)
}

// Client is a minimal Label Studio API client.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithLogger sets the client's logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// NewClient creates a client for the server at baseURL authenticating with
// apiKey. An empty baseURL means DefaultBaseURL.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 10 * time.Minute,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Project is a Label Studio project as returned by the projects API.
type Project struct {
	ID                int                      `json:"id"`
	Title             string                   `json:"title"`
	ParsedLabelConfig map[string]ControlConfig `json:"parsed_label_config"`
}

// ControlConfig is one control tag of a parsed labeling config.
type ControlConfig struct {
	Type   string   `json:"type"`
	Labels []string `json:"labels"`
}

// DisplayName returns the title, or a placeholder for untitled projects.
func (p Project) DisplayName() string {
	if p.Title == "" {
		return "Unnamed Project"
	}
	return p.Title
}

// Labels returns the class labels of the project. The control named "label"
// wins; otherwise the first control, by name, that declares labels.
func (p Project) Labels() []string {
	if ctrl, ok := p.ParsedLabelConfig["label"]; ok && len(ctrl.Labels) > 0 {
		return ctrl.Labels
	}
	names := make([]string, 0, len(p.ParsedLabelConfig))
	for name := range p.ParsedLabelConfig {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if labels := p.ParsedLabelConfig[name].Labels; len(labels) > 0 {
			return labels
		}
	}
	return nil
}

// ListProjects returns all projects visible to the API key. Both the bare
// array and the paginated {"results": [...]} response shapes are accepted.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	body, err := c.get(ctx, "/api/projects", "fetch projects")
	if err != nil {
		return nil, err
	}

	var projects []Project
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		err = json.Unmarshal(body, &projects)
	} else {
		var page struct {
			Results []Project `json:"results"`
		}
		err = json.Unmarshal(body, &page)
		projects = page.Results
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}

	valid := projects[:0]
	for _, p := range projects {
		if p.ID != 0 {
			valid = append(valid, p)
		}
	}
	c.logger.Debug("Fetched projects", zap.Int("count", len(valid)))
	return valid, nil
}

// GetProject returns the project with the given id.
func (c *Client) GetProject(ctx context.Context, id int) (*Project, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/projects/%d", id), fmt.Sprintf("fetch project detail for project %d", id))
	if err != nil {
		return nil, err
	}
	var p Project
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to decode project %d: %w", id, err)
	}
	return &p, nil
}

// ProjectLabels returns the class labels of project id, or ErrNoLabels when
// its labeling config declares none.
func (c *Client) ProjectLabels(ctx context.Context, id int) ([]string, error) {
	p, err := c.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	labels := p.Labels()
	if len(labels) == 0 {
		return nil, fmt.Errorf("project %d: %w", id, ErrNoLabels)
	}
	return labels, nil
}

// get performs an authenticated GET and returns the whole body.
func (c *Client) get(ctx context.Context, path, op string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)

	c.logger.Debug("Label Studio request", zap.String("url", req.URL.String()))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("Label Studio response",
		zap.Int("status", resp.StatusCode),
		zap.String("snippet", snippet(body, 200)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Op: "failed to " + op, StatusCode: resp.StatusCode, Body: snippet(body, 512)}
	}
	return body, nil
}

func snippet(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
