package jobboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultAPIURL {
		t.Fatalf("url = %q, want %q", u.String(), DefaultAPIURL)
	}

	u, err = parseBaseURL("example.com:1234/api/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Path != "/api" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatal("expected error for url without host")
	}
}

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	body   map[string]any
}

func newRecordingServer(t *testing.T, routes map[string]string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var mu sync.Mutex
	var calls []recorded

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
		}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		mu.Lock()
		calls = append(calls, rec)
		mu.Unlock()

		resp, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestClient_EndpointsAndEnvelope(t *testing.T) {
	t.Parallel()

	job := `{"_id":"j1","title":"Go Dev","companyName":"Acme","status":"open","jobType":"full-time","postedBy":"u9"}`
	routes := map[string]string{
		"GET /api/jobs":                   `{"data":[` + job + `],"message":"ok"}`,
		"GET /api/jobs/search":            `{"data":[]}`,
		"GET /api/jobs/j1":                `{"data":` + job + `}`,
		"GET /api/jobs/recruiter/jobs":    `{"data":[` + job + `]}`,
		"POST /api/jobs":                  `{"data":` + job + `}`,
		"PUT /api/jobs/j1":                `{"data":{"_id":"j1","status":"closed"}}`,
		"DELETE /api/jobs/j1":             `{"message":"deleted"}`,
		"POST /api/jobs/j1/apply":         `{"data":{"_id":"a1","jobId":"j1","status":"pending"}}`,
		"GET /api/admin/jobs":             `{"data":[` + job + `]}`,
		"PUT /api/admin/jobs/j1/status":   `{"data":{"_id":"j1","status":"closed"}}`,
		"DELETE /api/admin/jobs/j1":       `{"message":"deleted"}`,
		"GET /api/admin/users":            `{"data":{"users":[{"_id":"u1","name":"Ann","isBanned":false}]}}`,
		"PUT /api/admin/users/u1/ban":     `{"data":{"_id":"u1","isBanned":true}}`,
		"PUT /api/admin/users/u1/unban":   `{"data":{"_id":"u1","isBanned":false}}`,
		"GET /api/applications/me":        `{"data":[{"_id":"a1","jobId":` + job + `,"status":"pending"}]}`,
		"POST /api/auth/login":            `{"data":{"token":"tok","user":{"_id":"u1","role":"admin"}}}`,
		"POST /api/auth/register":         `{"token":"tok2","user":{"_id":"u2","role":"seeker"}}`,
		"GET /api/users/me":               `{"data":{"_id":"u1","name":"Ann"}}`,
		"PUT /api/users/me":               `{"data":{"_id":"u1","name":"Annie","mobileNumber":"555"}}`,
		"DELETE /api/users/me/resume":     `{"data":{"url":"https://files.test/cv.pdf"}}`,
	}
	server, calls := newRecordingServer(t, routes)

	c, err := NewClient(server.URL+"/api", "secret", time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	jobs, err := c.FetchJobs(ctx)
	if err != nil || len(jobs) != 1 || jobs[0].ID != "j1" || jobs[0].PostedBy.ID != "u9" {
		t.Fatalf("FetchJobs = %+v, %v", jobs, err)
	}
	if _, err := c.SearchJobs(ctx, "go dev"); err != nil {
		t.Fatalf("SearchJobs: %v", err)
	}
	if j, err := c.FetchJob(ctx, "j1"); err != nil || j.Title != "Go Dev" {
		t.Fatalf("FetchJob = %+v, %v", j, err)
	}
	if _, err := c.FetchPostedJobs(ctx); err != nil {
		t.Fatalf("FetchPostedJobs: %v", err)
	}
	if j, err := c.PostJob(ctx, Job{ID: "tmp", Title: "Go Dev"}); err != nil || j.ID != "j1" {
		t.Fatalf("PostJob = %+v, %v", j, err)
	}
	if j, err := c.UpdateJob(ctx, "j1", StatusPatch(JobClosed)); err != nil || j.Status != JobClosed {
		t.Fatalf("UpdateJob = %+v, %v", j, err)
	}
	if err := c.DeleteJob(ctx, "j1"); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if a, err := c.ApplyToJob(ctx, "j1", "555"); err != nil || a.JobID() != "j1" {
		t.Fatalf("ApplyToJob = %+v, %v", a, err)
	}
	if _, err := c.FetchAdminJobs(ctx); err != nil {
		t.Fatalf("FetchAdminJobs: %v", err)
	}
	if j, err := c.AdminUpdateJobStatus(ctx, "j1", JobClosed); err != nil || j.Status != JobClosed {
		t.Fatalf("AdminUpdateJobStatus = %+v, %v", j, err)
	}
	if err := c.AdminDeleteJob(ctx, "j1"); err != nil {
		t.Fatalf("AdminDeleteJob: %v", err)
	}
	if users, err := c.FetchUsers(ctx); err != nil || len(users) != 1 || users[0].Name != "Ann" {
		t.Fatalf("FetchUsers = %+v, %v", users, err)
	}
	if u, err := c.BanUser(ctx, "u1"); err != nil || !u.Banned {
		t.Fatalf("BanUser = %+v, %v", u, err)
	}
	if u, err := c.UnbanUser(ctx, "u1"); err != nil || u.Banned {
		t.Fatalf("UnbanUser = %+v, %v", u, err)
	}
	apps, err := c.FetchMyApplications(ctx)
	if err != nil || len(apps) != 1 || apps[0].Job.Value == nil || apps[0].FilterValue("company") != "Acme" {
		t.Fatalf("FetchMyApplications = %+v, %v", apps, err)
	}
	if auth, err := c.Login(ctx, "ann@example.com", "pw"); err != nil || auth.Token != "tok" || auth.User.Role != RoleAdmin {
		t.Fatalf("Login = %+v, %v", auth, err)
	}
	if auth, err := c.Register(ctx, Registration{Name: "Bo", Role: RoleSeeker}); err != nil || auth.Token != "tok2" {
		t.Fatalf("Register = %+v, %v", auth, err)
	}
	if u, err := c.FetchProfile(ctx); err != nil || u.Name != "Ann" {
		t.Fatalf("FetchProfile = %+v, %v", u, err)
	}
	name := "Annie"
	if u, err := c.UpdateProfile(ctx, ProfileUpdate{Name: &name}); err != nil || u.Name != "Annie" {
		t.Fatalf("UpdateProfile = %+v, %v", u, err)
	}
	if err := c.DeleteResume(ctx, "https://files.test/cv.pdf"); err != nil {
		t.Fatalf("DeleteResume: %v", err)
	}

	byRoute := map[string]recorded{}
	for _, call := range *calls {
		byRoute[call.method+" "+call.path] = call
		if call.auth != "Bearer secret" {
			t.Fatalf("%s %s Authorization = %q", call.method, call.path, call.auth)
		}
	}
	if q := byRoute["GET /api/jobs/search"].query; q != "query=go+dev" {
		t.Fatalf("search query = %q", q)
	}
	if b := byRoute["POST /api/jobs"].body; b["_id"] != "" || b["title"] != "Go Dev" {
		t.Fatalf("post body = %v, want id cleared", b)
	}
	if b := byRoute["PUT /api/jobs/j1"].body; len(b) != 1 || b["status"] != "closed" {
		t.Fatalf("update body = %v, want only status", b)
	}
	if b := byRoute["POST /api/jobs/j1/apply"].body; b["phone"] != "555" {
		t.Fatalf("apply body = %v", b)
	}
	if b := byRoute["PUT /api/admin/jobs/j1/status"].body; b["status"] != "closed" {
		t.Fatalf("status body = %v", b)
	}
	if b := byRoute["PUT /api/users/me"].body; len(b) != 1 || b["name"] != "Annie" {
		t.Fatalf("profile body = %v, want only name", b)
	}
	if b := byRoute["DELETE /api/users/me/resume"].body; b["url"] != "https://files.test/cv.pdf" {
		t.Fatalf("delete resume body = %v", b)
	}
}

func TestClient_UploadResumeSendsMultipart(t *testing.T) {
	t.Parallel()

	type upload struct {
		filename    string
		contentType string
		data        []byte
	}
	got := make(chan upload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/users/me/resume" {
			http.NotFound(w, r)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		got <- upload{filename: header.Filename, contentType: header.Header.Get("Content-Type"), data: data}
		_, _ = w.Write([]byte(`{"data":{"url":"https://files.test/resumes/cv.pdf"}}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL+"/api", "secret", time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	pdf := []byte("%PDF-1.4\n%%EOF\n")

	resumeURL, err := c.UploadResume(context.Background(), "/home/sam/cv.pdf", pdf)
	if err != nil || resumeURL != "https://files.test/resumes/cv.pdf" {
		t.Fatalf("UploadResume = %q, %v", resumeURL, err)
	}
	up := <-got
	if up.filename != "cv.pdf" || up.contentType != "application/pdf" || string(up.data) != string(pdf) {
		t.Fatalf("upload = %+v", up)
	}

	if _, err := c.UploadResume(context.Background(), "notes.txt", []byte("hello")); !errors.Is(err, ErrUnsupportedResume) {
		t.Fatalf("text upload error = %v", err)
	}
}

func TestResumeContentType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr bool
	}{
		{"pdf", []byte("%PDF-1.7\n"), "application/pdf", false},
		{"png", png, "image/png", false},
		{"text", []byte("plain words"), "", true},
		{"empty", nil, "", true},
		{"too large", append([]byte("%PDF-1.7\n"), make([]byte, MaxResumeBytes)...), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResumeContentType(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResumeContentType error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedResume) {
				t.Fatalf("error = %v, want ErrUnsupportedResume", err)
			}
			if got != tt.want {
				t.Fatalf("ResumeContentType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResumeNameAndEdits(t *testing.T) {
	if got := ResumeName("https://files.test/resumes/cv.pdf"); got != "cv.pdf" {
		t.Fatalf("ResumeName = %q", got)
	}
	if got := ResumeName("cv.pdf"); got != "cv.pdf" {
		t.Fatalf("ResumeName(bare) = %q", got)
	}

	u := User{ResumeURLs: []string{"a", "b"}}
	added := u.WithResume("c").WithResume("c")
	if len(added.ResumeURLs) != 3 || len(u.ResumeURLs) != 2 {
		t.Fatalf("WithResume = %v, original = %v", added.ResumeURLs, u.ResumeURLs)
	}
	removed := added.WithoutResume("a")
	if len(removed.ResumeURLs) != 2 || removed.ResumeURLs[0] != "b" || added.ResumeURLs[0] != "a" {
		t.Fatalf("WithoutResume = %v, source = %v", removed.ResumeURLs, added.ResumeURLs)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/jobs":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"token expired"}`))
		case "/api/jobs/j1/apply":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"already applied"}`))
		case "/api/jobs/missing":
			http.NotFound(w, r)
		case "/api/admin/jobs":
			_, _ = w.Write([]byte(`{not-json`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL+"/api", "", 0)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()

	_, err = c.FetchJobs(ctx)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("FetchJobs error = %v, want ErrUnauthorized", err)
	}
	if Message(err) != "token expired" {
		t.Fatalf("Message = %q", Message(err))
	}

	_, err = c.ApplyToJob(ctx, "j1", "555")
	if !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("ApplyToJob error = %v, want ErrAlreadyApplied", err)
	}

	_, err = c.FetchJob(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("FetchJob error = %v, want ErrNotFound", err)
	}

	_, err = c.FetchAdminJobs(ctx)
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchAdminJobs error = %v, want decode error", err)
	}

	_, err = c.FetchUsers(ctx)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 500 || apiErr.Path != "/api/admin/users" {
		t.Fatalf("FetchUsers error = %v, want 500 APIError", err)
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound) {
		t.Fatal("500 must not match sentinels")
	}
}

func TestClient_LoginWithoutTokenFails(t *testing.T) {
	server, _ := newRecordingServer(t, map[string]string{
		"POST /api/auth/login": `{"data":{"user":{"_id":"u1"}}}`,
	})
	c, err := NewClient(server.URL+"/api", "", time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Login(context.Background(), "a", "b"); err == nil {
		t.Fatal("Login returned nil error for tokenless response")
	}
}
