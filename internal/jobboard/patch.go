package jobboard

import "github.com/jobdeck/jobdeck/internal/filter"

// JobPatch is a partial job update. Nil fields are left unchanged.
type JobPatch struct {
	Title          *string    `json:"title,omitempty"`
	CompanyName    *string    `json:"companyName,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Location       *string    `json:"location,omitempty"`
	ContactName    *string    `json:"contactName,omitempty"`
	MobileNumber   *string    `json:"mobileNumber,omitempty"`
	WhatsappNumber *string    `json:"whatsappNumber,omitempty"`
	Salary         *string    `json:"salary,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	JobType        *JobType   `json:"jobType,omitempty"`
	Status         *JobStatus `json:"status,omitempty"`
}

// StatusPatch changes only a job's status.
func StatusPatch(s JobStatus) JobPatch {
	return JobPatch{Status: &s}
}

// Apply returns j with the set fields of p copied over.
func (p JobPatch) Apply(j Job) Job {
	setString(&j.Title, p.Title)
	setString(&j.CompanyName, p.CompanyName)
	setString(&j.Description, p.Description)
	setString(&j.Location, p.Location)
	setString(&j.ContactName, p.ContactName)
	setString(&j.MobileNumber, p.MobileNumber)
	setString(&j.WhatsappNumber, p.WhatsappNumber)
	setString(&j.Salary, p.Salary)
	if p.Tags != nil {
		j.Tags = append([]string(nil), p.Tags...)
	}
	if p.JobType != nil {
		j.JobType = *p.JobType
	}
	if p.Status != nil {
		j.Status = *p.Status
	}
	return j
}

// UserPatch is a partial user update.
type UserPatch struct {
	Banned *bool
	Role   *Role
}

// BanPatch sets the banned flag.
func BanPatch(banned bool) UserPatch {
	return UserPatch{Banned: &banned}
}

// Apply returns u with the set fields of p copied over.
func (p UserPatch) Apply(u User) User {
	if p.Banned != nil {
		u.Banned = *p.Banned
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	return u
}

// ProfileUpdate edits the caller's own account. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	MobileNumber *string `json:"mobileNumber,omitempty"`
}

// Empty reports whether p changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Email == nil && p.MobileNumber == nil
}

// Apply returns u with the set fields of p copied over.
func (p ProfileUpdate) Apply(u User) User {
	setString(&u.Name, p.Name)
	setString(&u.Email, p.Email)
	setString(&u.MobileNumber, p.MobileNumber)
	return u
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// JobFilters are the job list filters. Categorical fields accept "all".
type JobFilters struct {
	Search   string `toml:"search"`
	JobType  string `toml:"job_type"`
	Location string `toml:"location"`
	Status   string `toml:"status"`
}

// Criteria converts f for the filter package.
func (f JobFilters) Criteria() filter.Criteria {
	return filter.Criteria{
		{Fields: []string{"title", "company", "description", "contact"}, Value: f.Search, Kind: filter.Text},
		{Fields: []string{"jobType"}, Value: f.JobType, Kind: filter.Exact},
		{Fields: []string{"location"}, Value: f.Location, Kind: filter.Partial},
		{Fields: []string{"status"}, Value: f.Status, Kind: filter.Exact},
	}
}

// UserFilters are the admin user list filters.
type UserFilters struct {
	Search string `toml:"search"`
	Role   string `toml:"role"`
	Status string `toml:"status"`
}

// Criteria converts f for the filter package.
func (f UserFilters) Criteria() filter.Criteria {
	return filter.Criteria{
		{Fields: []string{"name", "email", "mobile"}, Value: f.Search, Kind: filter.Text},
		{Fields: []string{"role"}, Value: f.Role, Kind: filter.Exact},
		{Fields: []string{"status"}, Value: f.Status, Kind: filter.Exact},
	}
}

// ApplicationFilters are the "my applications" filters.
type ApplicationFilters struct {
	Search   string `toml:"search"`
	Status   string `toml:"status"`
	Location string `toml:"location"`
}

// Criteria converts f for the filter package.
func (f ApplicationFilters) Criteria() filter.Criteria {
	return filter.Criteria{
		{Fields: []string{"title", "company"}, Value: f.Search, Kind: filter.Text},
		{Fields: []string{"status"}, Value: f.Status, Kind: filter.Exact},
		{Fields: []string{"location"}, Value: f.Location, Kind: filter.Exact},
	}
}
