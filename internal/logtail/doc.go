// Package logtail reads the tail of jobdeck's own log file for the Logs view.
//
// # Reading Log Files
//
// Read extracts the last maxLines from a file in one sequential pass. The
// buffer is compacted whenever it reaches twice the window, so memory stays
// bounded by the window regardless of file size. Lines come back in
// chronological order. A non-positive maxLines returns the
// whole file and a missing file returns no lines without error, since the
// log is created lazily on first write.
//
//	lines, err := logtail.Read(cfg.LogFile, 400)
//
// Lines longer than 1MB fail the scan with "read log: ...".
//
// # Levels
//
// jobdeck logs through slog's text handler, so each record carries a
// level=LEVEL attribute. Level extracts it so the UI can style warnings and
// errors without parsing the whole record, and AtLeast hides records below a
// minimum level.
package logtail
