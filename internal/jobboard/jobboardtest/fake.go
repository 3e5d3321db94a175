// Package jobboardtest provides an in-memory jobboard.API for tests.
package jobboardtest

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/jobdeck/jobdeck/internal/jobboard"
)

// Fake is an in-memory job board. Mutations change the stored lists the way
// the real server would, so a later fetch observes them.
type Fake struct {
	mu sync.Mutex

	Jobs         []jobboard.Job
	PostedJobs   []jobboard.Job
	Users        []jobboard.User
	Applications []jobboard.Application
	Profile      jobboard.User
	Token        string

	// Errors makes the named method (e.g. "BanUser") fail.
	Errors map[string]error
	// Hook runs before every method with its name, outside the lock. Tests
	// use it to block a call.
	Hook func(method string)

	calls  []string
	nextID int
}

var _ jobboard.API = (*Fake)(nil)

// Calls returns the method names invoked so far.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// SetError makes method fail with err, or succeed again when err is nil.
func (f *Fake) SetError(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Errors == nil {
		f.Errors = make(map[string]error)
	}
	if err == nil {
		delete(f.Errors, method)
		return
	}
	f.Errors[method] = err
}

func (f *Fake) enter(ctx context.Context, method string) error {
	f.mu.Lock()
	f.calls = append(f.calls, method)
	err := f.Errors[method]
	hook := f.Hook
	f.mu.Unlock()

	if hook != nil {
		hook(method)
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

func (f *Fake) FetchJobs(ctx context.Context) ([]jobboard.Job, error) {
	if err := f.enter(ctx, "FetchJobs"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var open []jobboard.Job
	for _, j := range f.Jobs {
		if j.Status != jobboard.JobClosed {
			open = append(open, j)
		}
	}
	return open, nil
}

func (f *Fake) SearchJobs(ctx context.Context, query string) ([]jobboard.Job, error) {
	if err := f.enter(ctx, "SearchJobs"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	crit := jobboard.JobFilters{Search: query}.Criteria()
	var out []jobboard.Job
	for _, j := range f.Jobs {
		if crit[0].Match(j) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *Fake) FetchJob(ctx context.Context, id string) (jobboard.Job, error) {
	if err := f.enter(ctx, "FetchJob"); err != nil {
		return jobboard.Job{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := indexOf(f.Jobs, id); i >= 0 {
		return f.Jobs[i], nil
	}
	return jobboard.Job{}, notFound("/jobs/" + id)
}

func (f *Fake) FetchPostedJobs(ctx context.Context) ([]jobboard.Job, error) {
	if err := f.enter(ctx, "FetchPostedJobs"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.PostedJobs), nil
}

func (f *Fake) PostJob(ctx context.Context, job jobboard.Job) (jobboard.Job, error) {
	if err := f.enter(ctx, "PostJob"); err != nil {
		return jobboard.Job{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	job.ID = fmt.Sprintf("srv-%d", f.nextID)
	f.PostedJobs = slices.Insert(f.PostedJobs, 0, job)
	f.Jobs = slices.Insert(f.Jobs, 0, job)
	return job, nil
}

func (f *Fake) UpdateJob(ctx context.Context, id string, patch jobboard.JobPatch) (jobboard.Job, error) {
	if err := f.enter(ctx, "UpdateJob"); err != nil {
		return jobboard.Job{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := indexOf(f.PostedJobs, id)
	if i < 0 {
		return jobboard.Job{}, notFound("/jobs/" + id)
	}
	f.PostedJobs[i] = patch.Apply(f.PostedJobs[i])
	if j := indexOf(f.Jobs, id); j >= 0 {
		f.Jobs[j] = f.PostedJobs[i]
	}
	return f.PostedJobs[i], nil
}

func (f *Fake) DeleteJob(ctx context.Context, id string) error {
	if err := f.enter(ctx, "DeleteJob"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if indexOf(f.PostedJobs, id) < 0 {
		return notFound("/jobs/" + id)
	}
	f.PostedJobs = remove(f.PostedJobs, id)
	f.Jobs = remove(f.Jobs, id)
	return nil
}

func (f *Fake) ApplyToJob(ctx context.Context, id, phone string) (jobboard.Application, error) {
	if err := f.enter(ctx, "ApplyToJob"); err != nil {
		return jobboard.Application{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.Applications {
		if a.JobID() == id {
			return jobboard.Application{}, &jobboard.APIError{Status: 400, Message: "already applied", Path: "/jobs/" + id + "/apply"}
		}
	}
	f.nextID++
	app := jobboard.Application{
		ID:     fmt.Sprintf("app-%d", f.nextID),
		Job:    jobboard.Ref[jobboard.Job]{ID: id},
		Phone:  phone,
		Status: jobboard.ApplicationPending,
	}
	if i := indexOf(f.Jobs, id); i >= 0 {
		app.Job = jobboard.RefTo(f.Jobs[i])
	}
	f.Applications = append(f.Applications, app)
	return app, nil
}

func (f *Fake) FetchAdminJobs(ctx context.Context) ([]jobboard.Job, error) {
	if err := f.enter(ctx, "FetchAdminJobs"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.Jobs), nil
}

func (f *Fake) AdminUpdateJobStatus(ctx context.Context, id string, status jobboard.JobStatus) (jobboard.Job, error) {
	if err := f.enter(ctx, "AdminUpdateJobStatus"); err != nil {
		return jobboard.Job{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := indexOf(f.Jobs, id)
	if i < 0 {
		return jobboard.Job{}, notFound("/admin/jobs/" + id)
	}
	f.Jobs[i].Status = status
	return f.Jobs[i], nil
}

func (f *Fake) AdminDeleteJob(ctx context.Context, id string) error {
	if err := f.enter(ctx, "AdminDeleteJob"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if indexOf(f.Jobs, id) < 0 {
		return notFound("/admin/jobs/" + id)
	}
	f.Jobs = remove(f.Jobs, id)
	f.PostedJobs = remove(f.PostedJobs, id)
	return nil
}

func (f *Fake) FetchUsers(ctx context.Context) ([]jobboard.User, error) {
	if err := f.enter(ctx, "FetchUsers"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.Users), nil
}

func (f *Fake) BanUser(ctx context.Context, id string) (jobboard.User, error) {
	return f.setBanned(ctx, "BanUser", id, true)
}

func (f *Fake) UnbanUser(ctx context.Context, id string) (jobboard.User, error) {
	return f.setBanned(ctx, "UnbanUser", id, false)
}

func (f *Fake) setBanned(ctx context.Context, method, id string, banned bool) (jobboard.User, error) {
	if err := f.enter(ctx, method); err != nil {
		return jobboard.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := indexOf(f.Users, id)
	if i < 0 {
		return jobboard.User{}, notFound("/admin/users/" + id)
	}
	f.Users[i].Banned = banned
	return f.Users[i], nil
}

func (f *Fake) FetchMyApplications(ctx context.Context) ([]jobboard.Application, error) {
	if err := f.enter(ctx, "FetchMyApplications"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.Applications), nil
}

func (f *Fake) Login(ctx context.Context, email, password string) (jobboard.Auth, error) {
	if err := f.enter(ctx, "Login"); err != nil {
		return jobboard.Auth{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if password == "" || (f.Profile.Email != "" && email != f.Profile.Email) {
		return jobboard.Auth{}, &jobboard.APIError{Status: 401, Message: "invalid credentials", Path: "/auth/login"}
	}
	return jobboard.Auth{Token: f.token(), User: f.Profile}, nil
}

func (f *Fake) Register(ctx context.Context, r jobboard.Registration) (jobboard.Auth, error) {
	if err := f.enter(ctx, "Register"); err != nil {
		return jobboard.Auth{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u := jobboard.User{ID: fmt.Sprintf("user-%d", f.nextID), Name: r.Name, Email: r.Email, MobileNumber: r.MobileNumber, Role: r.Role}
	f.Users = append(f.Users, u)
	f.Profile = u
	return jobboard.Auth{Token: f.token(), User: u}, nil
}

func (f *Fake) FetchProfile(ctx context.Context) (jobboard.User, error) {
	if err := f.enter(ctx, "FetchProfile"); err != nil {
		return jobboard.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Profile, nil
}

func (f *Fake) UpdateProfile(ctx context.Context, p jobboard.ProfileUpdate) (jobboard.User, error) {
	if err := f.enter(ctx, "UpdateProfile"); err != nil {
		return jobboard.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Profile = p.Apply(f.Profile)
	f.syncProfile()
	return f.Profile, nil
}

func (f *Fake) UploadResume(ctx context.Context, filename string, data []byte) (string, error) {
	if err := f.enter(ctx, "UploadResume"); err != nil {
		return "", err
	}
	if _, err := jobboard.ResumeContentType(data); err != nil {
		return "", &jobboard.APIError{Status: 400, Message: err.Error(), Path: "/users/me/resume"}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u := fmt.Sprintf("https://files.test/resumes/%d-%s", f.nextID, filepath.Base(filename))
	f.Profile = f.Profile.WithResume(u)
	f.syncProfile()
	return u, nil
}

func (f *Fake) DeleteResume(ctx context.Context, resumeURL string) error {
	if err := f.enter(ctx, "DeleteResume"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !slices.Contains(f.Profile.ResumeURLs, resumeURL) {
		return notFound("/users/me/resume")
	}
	f.Profile = f.Profile.WithoutResume(resumeURL)
	f.syncProfile()
	return nil
}

// syncProfile copies the profile into the user list. Callers hold f.mu.
func (f *Fake) syncProfile() {
	if i := indexOf(f.Users, f.Profile.ID); i >= 0 {
		f.Users[i] = f.Profile
	}
}

func (f *Fake) token() string {
	if f.Token != "" {
		return f.Token
	}
	return "test-token"
}

func indexOf[T jobboard.Identified](items []T, id string) int {
	return slices.IndexFunc(items, func(v T) bool { return v.EntityID() == id })
}

func remove[T jobboard.Identified](items []T, id string) []T {
	return slices.DeleteFunc(items, func(v T) bool { return v.EntityID() == id })
}

func notFound(path string) error {
	return &jobboard.APIError{Status: 404, Message: "not found", Path: path}
}
