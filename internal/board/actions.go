package board

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/jobdeck/jobdeck/internal/jobboard"
	"github.com/jobdeck/jobdeck/internal/logging"
	"github.com/jobdeck/jobdeck/internal/state"
)

// Operation names. The tracker key of a mutation is OpKey(op, target).
const (
	// OpBanUser covers both ban and unban so the two cannot overlap.
	OpBanUser      = "banUser"
	OpJobStatus    = "jobStatus"
	OpDeleteJob    = "deleteJob"
	OpUpdatePosted = "updatePostedJob"
	OpDeletePosted = "deletePostedJob"
	OpPostJob      = "postJob"
	OpApplyToJob   = "applyToJob"

	OpUpdateProfile = "updateProfile"
	OpUploadResume  = "uploadResume"
	OpDeleteResume  = "deleteResume"
)

const tempIDPrefix = "local-"

var (
	// ErrUnknownEntity is returned when an action targets an id that is not
	// in the local list.
	ErrUnknownEntity = errors.New("not in the local list")
	// ErrNoPhone is returned by ApplyToJob when the profile has no mobile number.
	ErrNoPhone = errors.New("a mobile number is required to apply")
	// ErrEmptyUpdate is returned by UpdateProfile when no field is set.
	ErrEmptyUpdate = errors.New("nothing to update")
)

// OpKey scopes an operation to one target, e.g. "banUser:u1".
func OpKey(op, id string) string {
	if id == "" {
		return op
	}
	return op + ":" + id
}

// IsTemporaryID reports whether id was assigned locally to an unconfirmed
// create.
func IsTemporaryID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// Actions performs user operations against the API with optimistic updates.
type Actions struct {
	board *Board
	api   jobboard.API
	phone string
	log   logging.Logger
	newID func() string
}

// NewActions wires actions to a board and API. phone is sent with job
// applications.
func NewActions(b *Board, api jobboard.API, phone string, log logging.Logger) *Actions {
	if log == nil {
		log = logging.Nop()
	}
	return &Actions{
		board: b,
		api:   api,
		phone: phone,
		log:   log,
		newID: func() string { return tempIDPrefix + uuid.NewString() },
	}
}

// BanUser marks id banned immediately and confirms with the API.
func (a *Actions) BanUser(ctx context.Context, id string) (jobboard.User, error) {
	return a.setBanned(ctx, id, true)
}

// UnbanUser clears the banned flag immediately and confirms with the API.
func (a *Actions) UnbanUser(ctx context.Context, id string) (jobboard.User, error) {
	return a.setBanned(ctx, id, false)
}

func (a *Actions) setBanned(ctx context.Context, id string, banned bool) (jobboard.User, error) {
	call := a.api.BanUser
	if !banned {
		call = a.api.UnbanUser
	}
	users := a.board.Users
	return users.Mutate(ctx, OpKey(OpBanUser, id), id,
		state.Update[jobboard.User](jobboard.BanPatch(banned)),
		func(ctx context.Context) (jobboard.User, error) {
			u, err := call(ctx, id)
			if err == nil && u.ID == "" {
				// Empty body: the optimistic value stands.
				u, _ = users.Get(id)
			}
			return u, err
		})
}

// ToggleJobStatus flips a job between open and closed through the admin
// endpoint.
func (a *Actions) ToggleJobStatus(ctx context.Context, id string) (jobboard.Job, error) {
	job, ok := a.board.Jobs.Get(id)
	if !ok {
		return jobboard.Job{}, fmt.Errorf("toggle job %s: %w", id, ErrUnknownEntity)
	}
	return a.SetJobStatus(ctx, id, job.Status.Toggle())
}

// SetJobStatus sets a job's status through the admin endpoint.
func (a *Actions) SetJobStatus(ctx context.Context, id string, status jobboard.JobStatus) (jobboard.Job, error) {
	jobs := a.board.Jobs
	return jobs.Mutate(ctx, OpKey(OpJobStatus, id), id,
		state.Update[jobboard.Job](jobboard.StatusPatch(status)),
		func(ctx context.Context) (jobboard.Job, error) {
			j, err := a.api.AdminUpdateJobStatus(ctx, id, status)
			if err == nil && j.ID == "" {
				j, _ = jobs.Get(id)
			}
			return j, err
		})
}

// DeleteJob removes any job through the admin endpoint.
func (a *Actions) DeleteJob(ctx context.Context, id string) error {
	_, err := a.board.Jobs.Mutate(ctx, OpKey(OpDeleteJob, id), id,
		state.Delete[jobboard.Job](),
		func(ctx context.Context) (jobboard.Job, error) {
			return jobboard.Job{}, a.api.AdminDeleteJob(ctx, id)
		})
	return err
}

// DeletePostedJob removes one of the caller's own postings.
func (a *Actions) DeletePostedJob(ctx context.Context, id string) error {
	_, err := a.board.PostedJobs.Mutate(ctx, OpKey(OpDeletePosted, id), id,
		state.Delete[jobboard.Job](),
		func(ctx context.Context) (jobboard.Job, error) {
			return jobboard.Job{}, a.api.DeleteJob(ctx, id)
		})
	return err
}

// UpdatePostedJob edits one of the caller's own postings.
func (a *Actions) UpdatePostedJob(ctx context.Context, id string, patch jobboard.JobPatch) (jobboard.Job, error) {
	posted := a.board.PostedJobs
	return posted.Mutate(ctx, OpKey(OpUpdatePosted, id), id,
		state.Update[jobboard.Job](patch),
		func(ctx context.Context) (jobboard.Job, error) {
			j, err := a.api.UpdateJob(ctx, id, patch)
			if err == nil && j.ID == "" {
				j, _ = posted.Get(id)
			}
			return j, err
		})
}

// TogglePostedJobStatus flips one of the caller's own postings between open
// and closed.
func (a *Actions) TogglePostedJobStatus(ctx context.Context, id string) (jobboard.Job, error) {
	job, ok := a.board.PostedJobs.Get(id)
	if !ok {
		return jobboard.Job{}, fmt.Errorf("toggle posted job %s: %w", id, ErrUnknownEntity)
	}
	return a.UpdatePostedJob(ctx, id, jobboard.StatusPatch(job.Status.Toggle()))
}

// PostJob validates draft, shows it at the top of the posted list under a
// temporary id and replaces it with the server's copy once created.
func (a *Actions) PostJob(ctx context.Context, draft jobboard.JobDraft) (jobboard.Job, error) {
	job, err := jobboard.NewJob(draft)
	if err != nil {
		return jobboard.Job{}, err
	}
	job.ID = a.newID()

	return a.board.PostedJobs.Mutate(ctx, OpPostJob, job.ID, state.Create(job),
		func(ctx context.Context) (jobboard.Job, error) {
			created, err := a.api.PostJob(ctx, job)
			if err != nil {
				return jobboard.Job{}, err
			}
			if created.ID == "" {
				return jobboard.Job{}, errors.New("post job: server returned no id")
			}
			a.log.Info(ctx, "job posted", "temp_id", job.ID, "id", created.ID)
			return created, nil
		})
}

// ApplyToJob adds a pending application for jobID and submits it. A second
// application to the same job is refused locally with
// jobboard.ErrAlreadyApplied.
func (a *Actions) ApplyToJob(ctx context.Context, jobID string) (jobboard.Application, error) {
	if a.phone == "" {
		return jobboard.Application{}, ErrNoPhone
	}
	for _, existing := range a.board.Applications.Items() {
		if existing.JobID() == jobID {
			a.log.Debug(ctx, "application refused locally", "job", jobID, "existing", existing.ID)
			return jobboard.Application{}, jobboard.ErrAlreadyApplied
		}
	}

	ref := jobboard.Ref[jobboard.Job]{ID: jobID}
	if job, ok := a.board.Jobs.Get(jobID); ok {
		ref = jobboard.RefTo(job)
	}
	app := jobboard.Application{
		ID:     a.newID(),
		Job:    ref,
		Phone:  a.phone,
		Status: jobboard.ApplicationPending,
	}

	return a.board.Applications.Mutate(ctx, OpKey(OpApplyToJob, jobID), app.ID, state.Create(app),
		func(ctx context.Context) (jobboard.Application, error) {
			got, err := a.api.ApplyToJob(ctx, jobID, a.phone)
			if err != nil {
				return jobboard.Application{}, err
			}
			if got.ID == "" {
				// Keep the local copy until the next refresh brings the real one.
				return app, nil
			}
			if got.Job.Value == nil && ref.Value != nil {
				got.Job = ref
			}
			if got.Status == "" {
				got.Status = jobboard.ApplicationPending
			}
			return got, nil
		})
}

// LoadProfile fetches the caller's account into the profile list.
func (a *Actions) LoadProfile(ctx context.Context) (jobboard.User, error) {
	u, err := a.api.FetchProfile(ctx)
	if err != nil {
		return jobboard.User{}, fmt.Errorf("load profile: %w", err)
	}
	if u.ID == "" {
		return jobboard.User{}, errors.New("load profile: server returned no id")
	}
	if err := a.board.Profile.Reset([]jobboard.User{u}); err != nil {
		return jobboard.User{}, err
	}
	return u, nil
}

// profile returns the loaded profile, fetching it on first use.
func (a *Actions) profile(ctx context.Context) (jobboard.User, error) {
	if items := a.board.Profile.Items(); len(items) > 0 {
		return items[0], nil
	}
	return a.LoadProfile(ctx)
}

// UpdateProfile shows the edited name, email or mobile number immediately
// and confirms with the API.
func (a *Actions) UpdateProfile(ctx context.Context, p jobboard.ProfileUpdate) (jobboard.User, error) {
	if p.Empty() {
		return jobboard.User{}, ErrEmptyUpdate
	}
	me, err := a.profile(ctx)
	if err != nil {
		return jobboard.User{}, err
	}
	profile := a.board.Profile
	return profile.Mutate(ctx, OpKey(OpUpdateProfile, me.ID), me.ID,
		state.Update[jobboard.User](p),
		func(ctx context.Context) (jobboard.User, error) {
			u, err := a.api.UpdateProfile(ctx, p)
			if err == nil && u.ID == "" {
				u, _ = profile.Get(me.ID)
			}
			return u, err
		})
}

// UploadResume sends a resume file. Nothing changes locally until the server
// returns the new URL, but the operation is tracked like any other.
func (a *Actions) UploadResume(ctx context.Context, filename string, data []byte) (jobboard.User, error) {
	if _, err := jobboard.ResumeContentType(data); err != nil {
		return jobboard.User{}, err
	}
	me, err := a.profile(ctx)
	if err != nil {
		return jobboard.User{}, err
	}
	profile := a.board.Profile
	return profile.Mutate(ctx, OpKey(OpUploadResume, me.ID), me.ID,
		state.Update[jobboard.User](nil),
		func(ctx context.Context) (jobboard.User, error) {
			resumeURL, err := a.api.UploadResume(ctx, filename, data)
			if err != nil {
				return jobboard.User{}, err
			}
			a.log.Info(ctx, "resume uploaded", "url", resumeURL)
			cur, _ := profile.Get(me.ID)
			return cur.WithResume(resumeURL), nil
		})
}

// DeleteResume hides resumeURL immediately and confirms with the API.
func (a *Actions) DeleteResume(ctx context.Context, resumeURL string) (jobboard.User, error) {
	me, err := a.profile(ctx)
	if err != nil {
		return jobboard.User{}, err
	}
	if !slices.Contains(me.ResumeURLs, resumeURL) {
		return jobboard.User{}, fmt.Errorf("delete resume %s: %w", resumeURL, ErrUnknownEntity)
	}
	profile := a.board.Profile
	return profile.Mutate(ctx, OpKey(OpDeleteResume, me.ID), me.ID,
		state.Update[jobboard.User](state.PatchFunc[jobboard.User](func(u jobboard.User) jobboard.User {
			return u.WithoutResume(resumeURL)
		})),
		func(ctx context.Context) (jobboard.User, error) {
			if err := a.api.DeleteResume(ctx, resumeURL); err != nil {
				return jobboard.User{}, err
			}
			cur, _ := profile.Get(me.ID)
			return cur, nil
		})
}
