package logger

import (
	"io"
	"regexp"
)

const redacted = "[REDACTED]"

type redactionRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Redactor redacts sensitive information from logs
type Redactor struct {
	rules []redactionRule
}

// NewRedactor creates a new redactor with default patterns
func NewRedactor() *Redactor {
	r := &Redactor{}

	// Bearer tokens from Authorization headers
	r.mustAdd(`Bearer\s+[A-Za-z0-9._~+/=-]+`, redacted)

	// Gateway API keys
	r.mustAdd(`tg_[A-Za-z0-9]{20,}`, redacted)

	// Notion integration secrets
	r.mustAdd(`secret_[A-Za-z0-9]{20,}`, redacted)
	r.mustAdd(`ntn_[A-Za-z0-9]{20,}`, redacted)

	// Generic provider keys
	r.mustAdd(`sk-[A-Za-z0-9_-]{20,}`, redacted)

	// key=value and "key": "value" pairs; the key name is kept
	r.mustAdd(`(?i)("?(?:api_key|apikey|password|secret|token)"?\s*[:=]\s*"?)[^\s",}]+`, "${1}"+redacted)

	return r
}

func (r *Redactor) mustAdd(pattern, replacement string) {
	r.rules = append(r.rules, redactionRule{
		pattern:     regexp.MustCompile(pattern),
		replacement: replacement,
	})
}

// AddPattern adds a custom redaction pattern
func (r *Redactor) AddPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	r.rules = append(r.rules, redactionRule{pattern: re, replacement: redacted})
	return nil
}

// Redact redacts sensitive information from a string
func (r *Redactor) Redact(s string) string {
	result := s
	for _, rule := range r.rules {
		result = rule.pattern.ReplaceAllString(result, rule.replacement)
	}
	return result
}

// Wrap wraps an io.Writer to redact sensitive information
func (r *Redactor) Wrap(w io.Writer) io.Writer {
	return &redactingWriter{
		writer:   w,
		redactor: r,
	}
}

// redactingWriter is an io.Writer that redacts sensitive information
type redactingWriter struct {
	writer   io.Writer
	redactor *Redactor
}

// Write reports len(p) on success so zerolog does not treat the shorter
// redacted line as a short write
func (w *redactingWriter) Write(p []byte) (n int, err error) {
	if _, err := w.writer.Write([]byte(w.redactor.Redact(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
