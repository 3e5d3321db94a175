// Package jobboard is the job board domain model and its REST client.
//
// # Records
//
// Job, User and Application mirror the documents served under /api. Each
// implements state.Entity (EntityID) and filter.Record (FilterValue), so a
// state.Collection can hold them and the filter package can evaluate them
// without reflection. Foreign keys use Ref, which decodes both a bare id and
// a populated document; /applications/me returns the latter for jobId.
//
// NewJob turns user input into a valid posting: required fields are
// checked, the WhatsApp number defaults to the mobile number, comma
// separated tags are split and the job starts open as a full-time role
// unless told otherwise.
//
// # Patches and Filters
//
// JobPatch and UserPatch use pointer fields so "unset" differs from "set to
// the zero value"; an unban is UserPatch{Banned: &false}. Both satisfy
// state.Patch. JobFilters, UserFilters and ApplicationFilters hold the list
// filter inputs and convert to filter.Criteria.
//
// # Client
//
//	client, err := jobboard.NewClient("http://localhost:3000/api", token, 10*time.Second)
//	jobs, err := client.FetchJobs(ctx)
//
// Responses are wrapped in a {data, message} envelope; the client unwraps
// data and falls back to the raw body for endpoints that skip the wrapper.
// Non-2xx responses become *APIError, which matches ErrUnauthorized (401),
// ErrNotFound (404) and ErrAlreadyApplied through errors.Is.
//
// The client holds no mutable state after construction and is safe for
// concurrent use. It never retries; the poller owns refresh cadence.
package jobboard
