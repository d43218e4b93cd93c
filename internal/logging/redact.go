package logging

import (
	"regexp"
	"strings"
)

// secretPatterns match credentials that can end up in error text, such as
// an echoed Authorization header or a GitHub token in a response body.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(authorization|token|password|secret)([=:\s]+)["']?([^\s"',]+)["']?`),
	regexp.MustCompile(`\b(ghp|gho|ghu|ghs|ghr)_[A-Za-z0-9]{20,}\b`),
	regexp.MustCompile(`\bgithub_pat_[A-Za-z0-9_]{20,}\b`),
}

// MaskCredential keeps the first and last four characters of long values
// and hides the rest.
func MaskCredential(value string) string {
	switch {
	case value == "":
		return ""
	case len(value) <= 4:
		return strings.Repeat("*", len(value))
	case len(value) <= 8:
		return value[:2] + strings.Repeat("*", len(value)-2)
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

// Redact masks every credential found in s.
func Redact(s string) string {
	s = secretPatterns[0].ReplaceAllStringFunc(s, func(match string) string {
		m := secretPatterns[0].FindStringSubmatch(match)
		return m[1] + m[2] + MaskCredential(m[3])
	})
	for _, p := range secretPatterns[1:] {
		s = p.ReplaceAllStringFunc(s, MaskCredential)
	}
	return s
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// RedactErr returns err with credentials masked in its message. The
// original stays reachable through errors.Is and errors.As.
func RedactErr(err error) error {
	if err == nil {
		return nil
	}
	msg := Redact(err.Error())
	if msg == err.Error() {
		return err
	}
	return &redactedError{msg: msg, err: err}
}
