// Package locale holds the patient-facing copy for the scheduling agent in
// each supported language.
package locale

import (
	"sort"
	"strings"
)

const (
	English = "en"
	French  = "fr"
)

// Copy is the full set of strings one language needs. Fields holding
// text/template syntax are rendered with a struct exposing Name, Email and Time.
type Copy struct {
	Code string

	Greeting    string
	IdentityAck string

	AskName     string
	AskEmail    string
	AskSymptoms string
	AskTime     string
	AskLocale   string

	InvalidName     string
	InvalidEmail    string
	InvalidSymptoms string
	InvalidTime     string

	Confirming string
	Success    string
	Failure    string
	Signature  string

	JoinLabel     string
	CalendarLabel string

	// TimeLayout formats the resolved appointment time for display.
	TimeLayout string
	// SkipWords are compared against the lower-cased, trimmed answer to the
	// locale question.
	SkipWords []string
}

// IsSkipWord reports whether answer, trimmed and lower-cased, equals one of
// the configured skip words.
func (c Copy) IsSkipWord(answer string) bool {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	for _, w := range c.SkipWords {
		if normalized == w {
			return true
		}
	}
	return false
}

// Catalog maps language codes to Copy.
type Catalog struct {
	defaultCode string
	copies      map[string]Copy
}

// NewCatalog returns the built-in English/French catalog. defaultCode is used
// for unknown or empty codes; an unsupported default falls back to English.
func NewCatalog(defaultCode string) *Catalog {
	c := &Catalog{copies: map[string]Copy{
		English: english,
		French:  french,
	}}
	c.defaultCode = English
	if code, ok := c.match(defaultCode); ok {
		c.defaultCode = code
	}
	return c
}

// Default is the code used when a lookup does not match.
func (c *Catalog) Default() string {
	return c.defaultCode
}

// Supported lists the catalog codes in sorted order.
func (c *Catalog) Supported() []string {
	out := make([]string, 0, len(c.copies))
	for code := range c.copies {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Normalize maps tags like "fr-CA" or "EN_us" to a supported code, or the default.
func (c *Catalog) Normalize(code string) string {
	if match, ok := c.match(code); ok {
		return match
	}
	return c.defaultCode
}

// Lookup returns the copy for code, falling back to the default language.
func (c *Catalog) Lookup(code string) Copy {
	return c.copies[c.Normalize(code)]
}

func (c *Catalog) match(code string) (string, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	if _, ok := c.copies[code]; ok {
		return code, true
	}
	return "", false
}
