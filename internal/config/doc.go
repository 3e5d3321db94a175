// Package config loads jobdeck's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/jobdeck/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing, empty or non-positive, use defaults
//  5. JOBDECK_API_URL, when set, overrides api_url
//
// # Default Values
//
//   - API URL: http://localhost:3000/api
//   - Request timeout: 10s
//   - Refresh interval: 15s
//   - Log file: ~/.local/share/jobdeck/jobdeck.log
//   - Session file: ~/.local/share/jobdeck/session.toml
//   - Preferences: ~/.config/jobdeck/prefs.toml
//
// # TOML Format
//
//	api_url = "https://jobs.example.com/api"
//	timeout_seconds = 10
//	poll_seconds = 15
//	log_file = "~/.local/share/jobdeck/jobdeck.log"
//	session_file = "~/.local/share/jobdeck/session.toml"
//	prefs_file = "~/.config/jobdeck/prefs.toml"
//
// Paths starting with ~ are expanded and every path is made absolute.
// Unknown keys are ignored.
//
// # Error Handling
//
// Load fails only when the file exists but cannot be opened, read or
// parsed. Errors are wrapped with the failing step ("open config",
// "read config", "parse config").
package config
