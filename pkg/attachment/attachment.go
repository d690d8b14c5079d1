// Package attachment validates staged files against the upload policy. The
// policy is extension based only; it is a convenience filter for the wizard
// and not a security boundary, so file contents are never inspected.
package attachment

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-regwizard/pkg/model"
)

// DefaultMaxBytes is the largest accepted file (5 MB).
const DefaultMaxBytes int64 = 5 * 1024 * 1024

// DefaultExtensions are the accepted extensions, without the leading dot.
var DefaultExtensions = []string{"pdf", "jpg", "jpeg", "png"}

var (
	// ErrUnsupportedType rejects files whose extension is not allowed.
	ErrUnsupportedType = errors.New("attachment: unsupported file type")
	// ErrTooLarge rejects files above the size limit.
	ErrTooLarge = errors.New("attachment: file too large")
	// ErrInvalidSize rejects candidates reporting a negative size.
	ErrInvalidSize = errors.New("attachment: invalid file size")
)

// Reason names why a candidate was rejected.
type Reason string

const (
	ReasonUnsupportedType Reason = "UnsupportedType"
	ReasonTooLarge        Reason = "TooLarge"
	ReasonInvalidSize     Reason = "InvalidSize"
)

// Candidate is a file offered by the presentation layer. Only metadata is
// carried; Ref is passed through untouched.
type Candidate struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"sizeBytes"`
	Ref       string `json:"ref,omitempty"`
}

// Rejection reports a candidate that failed validation. Index is the
// candidate's position inside the batch it arrived in.
type Rejection struct {
	Name   string `json:"name"`
	Index  int    `json:"index"`
	Reason Reason `json:"reason"`
}

// Error implements error.
func (r Rejection) Error() string {
	return "attachment: " + r.Name + " rejected: " + string(r.Reason)
}

// Is maps the rejection reason onto the package sentinels.
func (r Rejection) Is(target error) bool {
	switch r.Reason {
	case ReasonUnsupportedType:
		return target == ErrUnsupportedType
	case ReasonTooLarge:
		return target == ErrTooLarge
	case ReasonInvalidSize:
		return target == ErrInvalidSize
	}
	return false
}

// Policy configures which files are accepted.
type Policy struct {
	MaxBytes   int64
	Extensions []string
}

// DefaultPolicy returns the pdf/jpg/jpeg/png, 5 MB policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxBytes:   DefaultMaxBytes,
		Extensions: append([]string(nil), DefaultExtensions...),
	}
}

// Validate checks a file name and size against the policy. It returns nil when
// the file is acceptable or a Rejection otherwise. The type is checked before
// the size so an oversized executable reports UnsupportedType.
func (p Policy) Validate(name string, sizeBytes int64) error {
	if !p.allows(Extension(name)) {
		return Rejection{Name: name, Reason: ReasonUnsupportedType}
	}
	if sizeBytes < 0 {
		return Rejection{Name: name, Reason: ReasonInvalidSize}
	}
	if sizeBytes > p.maxBytes() {
		return Rejection{Name: name, Reason: ReasonTooLarge}
	}
	return nil
}

// Accept validates a candidate and converts it into an attachment.
func (p Policy) Accept(c Candidate) (model.Attachment, error) {
	if err := p.Validate(c.Name, c.SizeBytes); err != nil {
		return model.Attachment{}, err
	}
	return model.Attachment{
		DisplayName:  c.Name,
		SizeBytes:    c.SizeBytes,
		MimeCategory: Classify(c.Name),
		Ref:          c.Ref,
	}, nil
}

// Accepts reports whether the extension of name is allowed.
func (p Policy) Accepts(name string) bool {
	return p.allows(Extension(name))
}

func (p Policy) allows(ext string) bool {
	if ext == "" {
		return false
	}
	extensions := p.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	for _, allowed := range extensions {
		if strings.EqualFold(strings.TrimPrefix(strings.TrimSpace(allowed), "."), ext) {
			return true
		}
	}
	return false
}

func (p Policy) maxBytes() int64 {
	if p.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return p.MaxBytes
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	ext := filepath.Ext(strings.TrimSpace(name))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Classify derives the mime category from the file extension.
func Classify(name string) model.MimeCategory {
	switch Extension(name) {
	case "jpg", "jpeg", "png", "gif", "webp":
		return model.MimeImage
	case "pdf", "doc", "docx", "txt":
		return model.MimeDocument
	default:
		return model.MimeOther
	}
}
