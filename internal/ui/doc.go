// Package ui provides the jobdeck terminal user interface.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model renders the lists held by a
// board.Board and starts operations through board.Actions. It never talks to
// the API directly.
//
//   - app.go: Model, Options, Update/View and Run
//   - lists.go: filtered list rows, cursor, search and filter cycling
//   - ops.go: operation keys (ban, toggle, delete, apply) and their results
//   - changes.go: board subscription that triggers redraws
//   - header.go: status header, command bar and status line
//   - logs.go: tail of jobdeck's own log file
//   - theme.go, keys.go, help.go: colors, key bindings and help overlay
//
// # Views
//
// Which views exist depends on the session role:
//
//   - Jobs: the browse list (every job for admins)
//   - My Postings: a recruiter's own jobs
//   - Users: the admin user list
//   - My Applications: a seeker's applications
//   - Logs: jobdeck's log file, colored by level
//
// # Optimistic Operations
//
// An operation key starts the matching board.Actions call in a goroutine.
// The optimistic change lands in the board at once and the board
// subscription redraws the list; the row shows a spinner while its operation
// is pending and "!" after a failure. When the server answers, the status
// line shows the outcome. A second operation on the same target while one
// is pending is refused with "already in progress".
//
// # Filters
//
// "/" edits the view's search text live. "f" cycles the status filter and
// "t" the job type or user role. Filters and the theme ("T") are saved to the
// preferences file on every change.
package ui
