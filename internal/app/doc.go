// Package app is the composition root of jobdeck.
//
// # Overview
//
// NewEnv wires configuration, logging, the saved session, the job board API
// client and the synchronized board (see package board). The TUI entry point
// Run and every CLI command build on the same Env.
//
// # Data Flow
//
//	┌──────────────┐
//	│   NewEnv()   │
//	└──────┬───────┘
//	       ├─────> config.Load()        Read ~/.config/jobdeck/config.toml
//	       ├─────> logging.Open()       Append to the log file
//	       ├─────> session.Load()       Token and role, if logged in
//	       ├─────> jobboard.NewClient() REST client with bearer token
//	       ├─────> board.New()          One Synchronizer per list
//	       └─────> NewPoller()          Background refresh
//
//	Poller loop:
//	┌─────────────────────────────────────────┐
//	│ sleep interval (first load done by Run) │
//	│ errgroup: fetch lists for the role      │
//	│  └─> Synchronizer.Reset() per list      │
//	│      (in-flight changes survive)        │
//	│ Health.Update(err), OnError -> CheckAuth│
//	│ sleep calculateBackoff(failures, base)  │
//	└─────────────────────────────────────────┘
//
// # Polling Behavior
//
// Which lists are fetched depends on the session role: admins get every job
// and the user list, recruiters the public jobs and their own postings,
// seekers the public jobs and their applications. Logged-out sessions see
// the public jobs only.
//
// A failed refresh leaves the previous lists in place and increments the
// failure count. The delay doubles per consecutive failure up to 30 seconds.
//
// # Error Handling
//
// Configuration and client errors are fatal and returned from NewEnv.
// Refresh errors are logged and shown in the UI header. A 401 from the
// server, whether on the first load or a later poll, clears the saved
// session (CheckAuth), so the next command asks the user to log in again.
package app
