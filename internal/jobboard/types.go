package jobboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// JobStatus is the open/closed state of a posting.
type JobStatus string

const (
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
)

// Toggle flips open and closed. Unknown values become open.
func (s JobStatus) Toggle() JobStatus {
	if s == JobOpen {
		return JobClosed
	}
	return JobOpen
}

// JobType is the employment type of a posting.
type JobType string

const (
	FullTime   JobType = "full-time"
	PartTime   JobType = "part-time"
	Internship JobType = "internship"
	Freelance  JobType = "freelance"
	Temporary  JobType = "temporary"
)

// JobTypes lists the accepted job types in display order.
var JobTypes = []JobType{FullTime, PartTime, Internship, Freelance, Temporary}

// Role is a user's account role.
type Role string

const (
	RoleSeeker    Role = "seeker"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

// ApplicationStatus tracks where an application is in review.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationReviewed ApplicationStatus = "reviewed"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Identified is implemented by every record the API returns with an _id.
type Identified interface {
	EntityID() string
}

// Ref is a foreign key that the API returns either as a bare id or as the
// populated document.
type Ref[T Identified] struct {
	ID    string
	Value *T
}

// RefTo builds a populated reference.
func RefTo[T Identified](v T) Ref[T] {
	return Ref[T]{ID: v.EntityID(), Value: &v}
}

// UnmarshalJSON accepts a string id, null or the full object.
func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = Ref[T]{}
		return nil
	case data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref[T]{ID: id}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Ref[T]{ID: v.EntityID(), Value: &v}
	return nil
}

// MarshalJSON writes the populated document when known, else the id.
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.Value != nil {
		return json.Marshal(*r.Value)
	}
	return json.Marshal(r.ID)
}

// Job mirrors a job posting document.
type Job struct {
	ID             string    `json:"_id"`
	Title          string    `json:"title"`
	CompanyName    string    `json:"companyName"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	ContactName    string    `json:"contactName"`
	MobileNumber   string    `json:"mobileNumber"`
	WhatsappNumber string    `json:"whatsappNumber,omitempty"`
	Salary         string    `json:"salary,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	JobType        JobType   `json:"jobType"`
	Status         JobStatus `json:"status"`
	PostedBy       Ref[User] `json:"postedBy,omitzero"`
	CreatedAt      string    `json:"createdAt,omitempty"`
}

// EntityID implements state.Entity.
func (j Job) EntityID() string { return j.ID }

// ParsedCreatedAt returns CreatedAt as time.Time, or the zero time.
func (j Job) ParsedCreatedAt() time.Time { return parseTime(j.CreatedAt) }

// FilterValue exposes job fields to the filter package.
func (j Job) FilterValue(field string) string {
	switch field {
	case "id":
		return j.ID
	case "title":
		return j.Title
	case "company":
		return j.CompanyName
	case "description":
		return j.Description
	case "location":
		return j.Location
	case "contact":
		return j.ContactName
	case "jobType":
		return string(j.JobType)
	case "status":
		return string(j.Status)
	case "tags":
		return strings.Join(j.Tags, ",")
	}
	return ""
}

// User mirrors a user account as seen by admins.
type User struct {
	ID           string   `json:"_id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	MobileNumber string   `json:"mobileNumber,omitempty"`
	Role         Role     `json:"role"`
	Banned       bool     `json:"isBanned"`
	ResumeURLs   []string `json:"resumeUrls,omitempty"`
	CreatedAt    string   `json:"createdAt,omitempty"`
}

// EntityID implements state.Entity.
func (u User) EntityID() string { return u.ID }

// AccountStatus is "banned" or "active".
func (u User) AccountStatus() string {
	if u.Banned {
		return "banned"
	}
	return "active"
}

// FilterValue exposes user fields to the filter package.
func (u User) FilterValue(field string) string {
	switch field {
	case "id":
		return u.ID
	case "name":
		return u.Name
	case "email":
		return u.Email
	case "mobile":
		return u.MobileNumber
	case "role":
		return string(u.Role)
	case "status":
		return u.AccountStatus()
	}
	return ""
}

// Application is a seeker's application to a job.
type Application struct {
	ID        string            `json:"_id"`
	Job       Ref[Job]          `json:"jobId"`
	Applicant Ref[User]         `json:"applicant,omitzero"`
	Phone     string            `json:"phone,omitempty"`
	Status    ApplicationStatus `json:"status"`
	CreatedAt string            `json:"createdAt,omitempty"`
}

// EntityID implements state.Entity.
func (a Application) EntityID() string { return a.ID }

// JobID returns the referenced job's id.
func (a Application) JobID() string { return a.Job.ID }

// FilterValue exposes application fields, including those of the embedded
// job summary.
func (a Application) FilterValue(field string) string {
	switch field {
	case "id":
		return a.ID
	case "jobId":
		return a.Job.ID
	case "status":
		return string(a.Status)
	}
	if a.Job.Value == nil {
		return ""
	}
	switch field {
	case "title", "company", "location":
		return a.Job.Value.FilterValue(field)
	}
	return ""
}

// JobDraft is the user input for a new posting. Tags is the raw
// comma-separated string.
type JobDraft struct {
	Title          string
	CompanyName    string
	Description    string
	Location       string
	ContactName    string
	MobileNumber   string
	WhatsappNumber string
	Salary         string
	Tags           string
	JobType        JobType
}

// ErrInvalidJob is returned by NewJob when required fields are missing.
var ErrInvalidJob = errors.New("invalid job")

// NewJob validates d and builds an open job with defaults applied. The
// result has no id; callers assign one.
func NewJob(d JobDraft) (Job, error) {
	required := []struct{ name, value string }{
		{"title", d.Title},
		{"company name", d.CompanyName},
		{"description", d.Description},
		{"location", d.Location},
		{"contact name", d.ContactName},
		{"mobile number", d.MobileNumber},
	}
	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return Job{}, fmt.Errorf("%w: missing %s", ErrInvalidJob, strings.Join(missing, ", "))
	}

	jobType := d.JobType
	if jobType == "" {
		jobType = FullTime
	}
	if !slices.Contains(JobTypes, jobType) {
		return Job{}, fmt.Errorf("%w: unknown job type %q", ErrInvalidJob, jobType)
	}
	whatsapp := strings.TrimSpace(d.WhatsappNumber)
	if whatsapp == "" {
		whatsapp = strings.TrimSpace(d.MobileNumber)
	}

	return Job{
		Title:          strings.TrimSpace(d.Title),
		CompanyName:    strings.TrimSpace(d.CompanyName),
		Description:    strings.TrimSpace(d.Description),
		Location:       strings.TrimSpace(d.Location),
		ContactName:    strings.TrimSpace(d.ContactName),
		MobileNumber:   strings.TrimSpace(d.MobileNumber),
		WhatsappNumber: whatsapp,
		Salary:         strings.TrimSpace(d.Salary),
		Tags:           SplitTags(d.Tags),
		JobType:        jobType,
		Status:         JobOpen,
	}, nil
}

// SplitTags splits a comma-separated list, dropping blanks.
func SplitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
