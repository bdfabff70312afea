// Package security keeps credentials out of log output and config dumps.
package security

import (
	"regexp"
	"strings"
	"sync"
)

// RedactPlaceholder is the replacement string for redacted secrets.
const RedactPlaceholder = "***REDACTED***"

// secretKeyPattern matches map keys that likely contain secrets.
var secretKeyPattern = regexp.MustCompile(`(?i)(secret|token|password|hash|api_key|credential)`)

// Redactor replaces secret values in strings and maps with RedactPlaceholder.
// It matches known token formats by pattern and credentials loaded at
// runtime by literal value. All methods are safe for concurrent use.
type Redactor struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
	literals []string
}

// NewRedactor creates a Redactor pre-loaded with DefaultPatterns.
func NewRedactor() *Redactor {
	return &Redactor{patterns: DefaultPatterns()}
}

// AddPattern adds a compiled regex pattern to the redactor.
func (r *Redactor) AddPattern(pattern *regexp.Regexp) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, pattern)
}

// AddLiteral adds a literal secret value that should be redacted on sight.
// Empty strings and values shorter than four bytes are ignored, since
// replacing them would mangle ordinary text.
func (r *Redactor) AddLiteral(secret string) {
	if len(secret) < 4 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.literals = append(r.literals, secret)
}

// Redact replaces all known secret patterns and literal values in s.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}

	r.mu.RLock()
	patterns := r.patterns
	literals := r.literals
	r.mu.RUnlock()

	for _, lit := range literals {
		if strings.Contains(s, lit) {
			s = strings.ReplaceAll(s, lit, RedactPlaceholder)
		}
	}
	for _, p := range patterns {
		s = p.ReplaceAllString(s, RedactPlaceholder)
	}
	return s
}

// RedactMap walks a decoded YAML/JSON document and replaces values whose
// keys look like secrets (token, hash, password, ...). Other strings go
// through Redact.
func (r *Redactor) RedactMap(m map[string]any) {
	for k, v := range m {
		if secretKeyPattern.MatchString(k) {
			if s, ok := v.(string); ok && s != "" {
				m[k] = RedactPlaceholder
				continue
			}
		}
		switch val := v.(type) {
		case map[string]any:
			r.RedactMap(val)
		case []any:
			for i, item := range val {
				switch sub := item.(type) {
				case map[string]any:
					r.RedactMap(sub)
				case string:
					val[i] = r.Redact(sub)
				}
			}
		case string:
			if redacted := r.Redact(val); redacted != val {
				m[k] = redacted
			}
		}
	}
}

// DefaultPatterns returns compiled patterns for Telegram credentials.
func DefaultPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		// Bot API token: <bot id>:<35 char secret>.
		regexp.MustCompile(`\b\d{6,12}:[A-Za-z0-9_-]{30,}`),
		// Bot API URL path segment, including short test tokens.
		regexp.MustCompile(`/bot\d+:[A-Za-z0-9_-]+`),
	}
}
