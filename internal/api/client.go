package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/plan"
)

// CSRFHeader is the anti-forgery header attached to every mutating
// request.
const CSRFHeader = "X-CSRF-Token"

const defaultTimeout = 10 * time.Second

// HeaderInjector mutates outgoing request headers. Injectors run on
// every request, so token refresh logic can live inside one.
type HeaderInjector func(h http.Header)

// BearerToken returns an injector adding an Authorization header.
func BearerToken(token string) HeaderInjector {
	return func(h http.Header) {
		h.Set("Authorization", "Bearer "+token)
	}
}

// CSRFToken returns an injector that attaches the anti-forgery token
// from the given source on each request.
func CSRFToken(source func() string) HeaderInjector {
	return func(h http.Header) {
		if t := source(); t != "" {
			h.Set(CSRFHeader, t)
		}
	}
}

// Client talks to the planning backend.
type Client struct {
	baseURL   string
	http      *http.Client
	injectors []HeaderInjector
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithHeaderInjector appends a header injector.
func WithHeaderInjector(in HeaderInjector) Option {
	return func(c *Client) { c.injectors = append(c.injectors, in) }
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchToken performs the anti-forgery handshake. The returned token is
// typically wired back in through CSRFToken.
func (c *Client) FetchToken(ctx context.Context) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodGet, "/api/token", nil, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// ListSubjects returns every subject.
func (c *Client) ListSubjects(ctx context.Context) ([]*plan.Subject, error) {
	var dtos []subjectDTO
	if err := c.do(ctx, http.MethodGet, "/api/subjects", nil, &dtos); err != nil {
		return nil, err
	}
	subjects := make([]*plan.Subject, len(dtos))
	for i, d := range dtos {
		subjects[i] = d.toDomain()
	}
	return subjects, nil
}

// ListProjects returns every project.
func (c *Client) ListProjects(ctx context.Context) ([]*plan.Project, error) {
	var dtos []projectDTO
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, &dtos); err != nil {
		return nil, err
	}
	projects := make([]*plan.Project, len(dtos))
	for i, d := range dtos {
		projects[i] = d.toDomain()
	}
	return projects, nil
}

// ListAllocations returns the allocations overlapping the query range.
func (c *Client) ListAllocations(ctx context.Context, q RangeQuery) ([]*plan.Allocation, error) {
	var dtos []allocationDTO
	if err := c.do(ctx, http.MethodGet, "/api/allocations"+q.encode(), nil, &dtos); err != nil {
		return nil, err
	}
	allocations := make([]*plan.Allocation, len(dtos))
	for i, d := range dtos {
		a, err := d.toDomain()
		if err != nil {
			return nil, fmt.Errorf("allocation %d: %w", d.ID, err)
		}
		allocations[i] = a
	}
	return allocations, nil
}

// CreateAllocation creates an allocation. Warnings are non-blocking
// advisories returned alongside a successful write.
func (c *Client) CreateAllocation(ctx context.Context, params AllocationParams) (*plan.Allocation, []string, error) {
	var out allocationResponse
	if err := c.do(ctx, http.MethodPost, "/api/allocations", params, &out); err != nil {
		return nil, nil, err
	}
	a, err := out.allocationDTO.toDomain()
	if err != nil {
		return nil, nil, err
	}
	return a, out.Warnings, nil
}

// UpdateAllocation rewrites an allocation.
func (c *Client) UpdateAllocation(ctx context.Context, id int64, params AllocationParams) (*plan.Allocation, []string, error) {
	var out allocationResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/allocations/%d", id), params, &out); err != nil {
		return nil, nil, err
	}
	a, err := out.allocationDTO.toDomain()
	if err != nil {
		return nil, nil, err
	}
	return a, out.Warnings, nil
}

// DeleteAllocation removes an allocation.
func (c *Client) DeleteAllocation(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/allocations/%d", id), nil, nil)
}

// ListLeave returns the leave entries overlapping the query range.
func (c *Client) ListLeave(ctx context.Context, q RangeQuery) ([]*plan.LeaveEntry, error) {
	var dtos []leaveDTO
	if err := c.do(ctx, http.MethodGet, "/api/annual-leave"+q.encode(), nil, &dtos); err != nil {
		return nil, err
	}
	entries := make([]*plan.LeaveEntry, len(dtos))
	for i, d := range dtos {
		l, err := d.toDomain()
		if err != nil {
			return nil, fmt.Errorf("leave entry %d: %w", d.ID, err)
		}
		entries[i] = l
	}
	return entries, nil
}

// CreateLeave creates a leave entry.
func (c *Client) CreateLeave(ctx context.Context, params LeaveParams) (*plan.LeaveEntry, []string, error) {
	var out leaveResponse
	if err := c.do(ctx, http.MethodPost, "/api/annual-leave", params, &out); err != nil {
		return nil, nil, err
	}
	l, err := out.leaveDTO.toDomain()
	if err != nil {
		return nil, nil, err
	}
	return l, out.Warnings, nil
}

// UpdateLeave rewrites a leave entry.
func (c *Client) UpdateLeave(ctx context.Context, id int64, params LeaveParams) (*plan.LeaveEntry, []string, error) {
	var out leaveResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/annual-leave/%d", id), params, &out); err != nil {
		return nil, nil, err
	}
	l, err := out.leaveDTO.toDomain()
	if err != nil {
		return nil, nil, err
	}
	return l, out.Warnings, nil
}

// DeleteLeave removes a leave entry.
func (c *Client) DeleteLeave(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/annual-leave/%d", id), nil, nil)
}

// ListMarkers returns the markers overlapping the query range.
func (c *Client) ListMarkers(ctx context.Context, q RangeQuery) ([]*plan.Marker, error) {
	var dtos []markerDTO
	if err := c.do(ctx, http.MethodGet, "/api/markers"+q.encode(), nil, &dtos); err != nil {
		return nil, err
	}
	markers := make([]*plan.Marker, len(dtos))
	for i, d := range dtos {
		m, err := d.toDomain()
		if err != nil {
			return nil, fmt.Errorf("marker %d: %w", d.ID, err)
		}
		markers[i] = m
	}
	return markers, nil
}

// CreateMarker creates a marker.
func (c *Client) CreateMarker(ctx context.Context, params MarkerParams) (*plan.Marker, error) {
	var out markerDTO
	if err := c.do(ctx, http.MethodPost, "/api/markers", params, &out); err != nil {
		return nil, err
	}
	return out.toDomain()
}

// UpdateMarker rewrites a marker.
func (c *Client) UpdateMarker(ctx context.Context, id int64, params MarkerParams) (*plan.Marker, error) {
	var out markerDTO
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/markers/%d", id), params, &out); err != nil {
		return nil, err
	}
	return out.toDomain()
}

// DeleteMarker removes a marker.
func (c *Client) DeleteMarker(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/markers/%d", id), nil, nil)
}

func (q RangeQuery) encode() string {
	v := url.Values{}
	v.Set("start_date", dateutil.FormatDate(q.Start))
	v.Set("end_date", dateutil.FormatDate(q.End))
	if q.SubjectID != 0 {
		v.Set("subject_id", strconv.FormatInt(q.SubjectID, 10))
	}
	if q.ProjectID != 0 {
		v.Set("project_id", strconv.FormatInt(q.ProjectID, 10))
	}
	return "?" + v.Encode()
}

// do runs one request and decodes the response into out (skipped when
// out is nil). Non-2xx responses become the typed errors in errors.go;
// transport failures become NetworkError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s body: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, inject := range c.injectors {
		inject(req.Header)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", op, err)
	}
	return nil
}

// decodeError maps a non-2xx response to the error taxonomy.
func decodeError(status int, body []byte) error {
	var payload errorPayload
	_ = json.Unmarshal(body, &payload)
	if payload.Message == "" {
		payload.Message = strings.TrimSpace(string(body))
	}

	switch status {
	case http.StatusUnprocessableEntity:
		return &ValidationError{Message: payload.Message, Fields: payload.Errors}
	case http.StatusForbidden, http.StatusUnauthorized:
		return &AuthorizationError{Message: payload.Message}
	default:
		return &StatusError{StatusCode: status, Message: payload.Message}
	}
}
