package jobboard

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxResumeBytes is the largest resume UploadResume sends.
const MaxResumeBytes = 5 << 20

// ErrUnsupportedResume is returned for resumes that are not a PDF or an image.
var ErrUnsupportedResume = errors.New("resume must be a PDF or an image")

// Resume is the upload response and the delete request body.
type Resume struct {
	URL string `json:"url"`
}

// ResumeContentType sniffs data and returns its media type when it is an
// acceptable resume.
func ResumeContentType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: file is empty", ErrUnsupportedResume)
	}
	if len(data) > MaxResumeBytes {
		return "", fmt.Errorf("%w: file is larger than %d MiB", ErrUnsupportedResume, MaxResumeBytes>>20)
	}
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("application/pdf") || strings.HasPrefix(m.String(), "image/") {
			return mt.String(), nil
		}
	}
	return "", fmt.Errorf("%w: got %s", ErrUnsupportedResume, mt.String())
}

// ResumeName is the last path element of a resume URL.
func ResumeName(resumeURL string) string {
	trimmed := strings.TrimRight(resumeURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" {
		return resumeURL
	}
	return trimmed
}

// WithoutResume returns u without resumeURL. The slice is copied.
func (u User) WithoutResume(resumeURL string) User {
	u.ResumeURLs = slices.DeleteFunc(slices.Clone(u.ResumeURLs), func(v string) bool { return v == resumeURL })
	return u
}

// WithResume returns u with resumeURL appended unless already present.
func (u User) WithResume(resumeURL string) User {
	if slices.Contains(u.ResumeURLs, resumeURL) {
		return u
	}
	u.ResumeURLs = append(slices.Clone(u.ResumeURLs), resumeURL)
	return u
}
