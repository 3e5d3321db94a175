package jobboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// API lists the job board endpoints jobdeck uses. It is implemented by
// *Client and can be faked in tests.
type API interface {
	FetchJobs(ctx context.Context) ([]Job, error)
	SearchJobs(ctx context.Context, query string) ([]Job, error)
	FetchJob(ctx context.Context, id string) (Job, error)
	FetchPostedJobs(ctx context.Context) ([]Job, error)
	PostJob(ctx context.Context, job Job) (Job, error)
	UpdateJob(ctx context.Context, id string, patch JobPatch) (Job, error)
	DeleteJob(ctx context.Context, id string) error
	ApplyToJob(ctx context.Context, id, phone string) (Application, error)

	FetchAdminJobs(ctx context.Context) ([]Job, error)
	AdminUpdateJobStatus(ctx context.Context, id string, status JobStatus) (Job, error)
	AdminDeleteJob(ctx context.Context, id string) error
	FetchUsers(ctx context.Context) ([]User, error)
	BanUser(ctx context.Context, id string) (User, error)
	UnbanUser(ctx context.Context, id string) (User, error)

	FetchMyApplications(ctx context.Context) ([]Application, error)

	Login(ctx context.Context, email, password string) (Auth, error)
	Register(ctx context.Context, r Registration) (Auth, error)
	FetchProfile(ctx context.Context) (User, error)
	UpdateProfile(ctx context.Context, p ProfileUpdate) (User, error)
	UploadResume(ctx context.Context, filename string, data []byte) (string, error)
	DeleteResume(ctx context.Context, resumeURL string) error
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Auth is the login/register response.
type Auth struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Registration is the sign-up request body.
type Registration struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	MobileNumber string `json:"mobileNumber,omitempty"`
	Role         Role   `json:"role"`
}

// Client talks to the job board REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	token     string
}

const (
	DefaultAPIURL    = "http://localhost:3000/api"
	DefaultTimeout   = 10 * time.Second
	defaultUserAgent = "jobdeck/0.1"
)

// NewClient builds a Client for apiURL (including the /api prefix). A
// non-empty token is sent as a bearer credential. timeout <= 0 uses
// DefaultTimeout.
func NewClient(apiURL, token string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
		token:     strings.TrimSpace(token),
	}, nil
}

// FetchJobs lists all open postings.
func (c *Client) FetchJobs(ctx context.Context) ([]Job, error) {
	var jobs []Job
	if err := c.do(ctx, http.MethodGet, "jobs", nil, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// SearchJobs runs a server-side search.
func (c *Client) SearchJobs(ctx context.Context, query string) ([]Job, error) {
	var jobs []Job
	q := url.Values{"query": {query}}
	if err := c.do(ctx, http.MethodGet, "jobs/search", q, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// FetchJob loads one posting.
func (c *Client) FetchJob(ctx context.Context, id string) (Job, error) {
	var job Job
	err := c.do(ctx, http.MethodGet, "jobs/"+url.PathEscape(id), nil, nil, &job)
	return job, err
}

// FetchPostedJobs lists the caller's own postings.
func (c *Client) FetchPostedJobs(ctx context.Context) ([]Job, error) {
	var jobs []Job
	if err := c.do(ctx, http.MethodGet, "jobs/recruiter/jobs", nil, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// PostJob creates a posting. The id of job is ignored by the server.
func (c *Client) PostJob(ctx context.Context, job Job) (Job, error) {
	job.ID = ""
	var created Job
	err := c.do(ctx, http.MethodPost, "jobs", nil, job, &created)
	return created, err
}

// UpdateJob applies patch to a posting owned by the caller.
func (c *Client) UpdateJob(ctx context.Context, id string, patch JobPatch) (Job, error) {
	var job Job
	err := c.do(ctx, http.MethodPut, "jobs/"+url.PathEscape(id), nil, patch, &job)
	return job, err
}

// DeleteJob deletes a posting owned by the caller.
func (c *Client) DeleteJob(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "jobs/"+url.PathEscape(id), nil, nil, nil)
}

// ApplyToJob submits an application with the applicant's phone number.
func (c *Client) ApplyToJob(ctx context.Context, id, phone string) (Application, error) {
	var app Application
	body := map[string]string{"phone": phone}
	err := c.do(ctx, http.MethodPost, "jobs/"+url.PathEscape(id)+"/apply", nil, body, &app)
	return app, err
}

// FetchAdminJobs lists every posting regardless of owner.
func (c *Client) FetchAdminJobs(ctx context.Context) ([]Job, error) {
	var jobs []Job
	if err := c.do(ctx, http.MethodGet, "admin/jobs", nil, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// AdminUpdateJobStatus sets any posting's status.
func (c *Client) AdminUpdateJobStatus(ctx context.Context, id string, status JobStatus) (Job, error) {
	var job Job
	body := map[string]JobStatus{"status": status}
	err := c.do(ctx, http.MethodPut, "admin/jobs/"+url.PathEscape(id)+"/status", nil, body, &job)
	return job, err
}

// AdminDeleteJob deletes any posting.
func (c *Client) AdminDeleteJob(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "admin/jobs/"+url.PathEscape(id), nil, nil, nil)
}

// FetchUsers lists all accounts.
func (c *Client) FetchUsers(ctx context.Context) ([]User, error) {
	var payload struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "admin/users", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Users, nil
}

// BanUser bans an account.
func (c *Client) BanUser(ctx context.Context, id string) (User, error) {
	var user User
	err := c.do(ctx, http.MethodPut, "admin/users/"+url.PathEscape(id)+"/ban", nil, nil, &user)
	return user, err
}

// UnbanUser lifts a ban.
func (c *Client) UnbanUser(ctx context.Context, id string) (User, error) {
	var user User
	err := c.do(ctx, http.MethodPut, "admin/users/"+url.PathEscape(id)+"/unban", nil, nil, &user)
	return user, err
}

// FetchMyApplications lists the caller's applications with job summaries.
func (c *Client) FetchMyApplications(ctx context.Context) ([]Application, error) {
	var apps []Application
	if err := c.do(ctx, http.MethodGet, "applications/me", nil, nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (Auth, error) {
	var auth Auth
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "auth/login", nil, body, &auth); err != nil {
		return Auth{}, err
	}
	if auth.Token == "" {
		return Auth{}, errors.New("login response carried no token")
	}
	return auth, nil
}

// Register creates an account and returns its token.
func (c *Client) Register(ctx context.Context, r Registration) (Auth, error) {
	var auth Auth
	if err := c.do(ctx, http.MethodPost, "auth/register", nil, r, &auth); err != nil {
		return Auth{}, err
	}
	return auth, nil
}

// FetchProfile loads the caller's own account.
func (c *Client) FetchProfile(ctx context.Context) (User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "users/me", nil, nil, &user)
	return user, err
}

// UpdateProfile edits the caller's own account.
func (c *Client) UpdateProfile(ctx context.Context, p ProfileUpdate) (User, error) {
	var user User
	err := c.do(ctx, http.MethodPut, "users/me", nil, p, &user)
	return user, err
}

// UploadResume sends data as the "file" field of a multipart form and
// returns the stored resume's URL. Only PDFs and images are accepted.
func (c *Client) UploadResume(ctx context.Context, filename string, data []byte) (string, error) {
	contentType, err := ResumeContentType(data)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf("form-data; name=%q; filename=%q", "file", filepath.Base(filename)))
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("encode resume: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("encode resume: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("encode resume: %w", err)
	}

	var res Resume
	if err := c.send(ctx, http.MethodPost, "users/me/resume", nil, form.FormDataContentType(), &buf, &res); err != nil {
		return "", err
	}
	if res.URL == "" {
		return "", errors.New("upload response carried no url")
	}
	return res.URL, nil
}

// DeleteResume removes one of the caller's resumes by URL.
func (c *Client) DeleteResume(ctx context.Context, resumeURL string) error {
	return c.do(ctx, http.MethodDelete, "users/me/resume", nil, Resume{URL: resumeURL}, nil)
}

// envelope is the {data, message} wrapper around every response.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader, contentType = bytes.NewReader(raw), "application/json"
	}
	return c.send(ctx, method, path, query, contentType, reader, dest)
}

// send performs one request and decodes the response envelope into dest.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	reqURL := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		reqURL.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	var env envelope
	// Error bodies are not always JSON; the message is best effort.
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: env.Message, Path: reqURL.Path}
	}
	if dest == nil {
		return nil
	}
	payload := []byte(env.Data)
	if len(payload) == 0 || string(payload) == "null" {
		// Some endpoints answer without the envelope.
		payload = raw
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = DefaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", apiURL)
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	return u, nil
}
