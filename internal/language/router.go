// Package language routes queries to one of the supported response locales
// and supplies locale-specific instruction templates.
package language

import (
	"regexp"
	"strings"

	"smart-tutor-go/pkg/log"

	"github.com/abadojack/whatlanggo"
)

// Locale describes one supported response language.
type Locale struct {
	Code       string
	Name       string
	NativeName string
	Country    string
	Template   string
}

// Router detects the query language and resolves instruction templates.
// Detection is deterministic for identical input.
type Router struct {
	defaultCode string
	minLength   int
	locales     map[string]Locale
	// ordered so that script patterns resolve consistently
	patternOrder []string
	patterns     map[string][]*regexp.Regexp
}

// NewRouter builds a router over the six supported locales. defaultCode
// falls back to "en" when empty; minLength below 1 falls back to 3.
func NewRouter(defaultCode string, minLength int) *Router {
	if defaultCode == "" {
		defaultCode = "en"
	}
	if minLength < 1 {
		minLength = 3
	}
	r := &Router{
		defaultCode: defaultCode,
		minLength:   minLength,
		locales:     supportedLocales(),
	}
	r.patternOrder = []string{"am", "om", "ti", "yo", "sw"}
	r.patterns = map[string][]*regexp.Regexp{
		"am": {
			regexp.MustCompile(`[\x{1200}-\x{137F}]`),
			regexp.MustCompile(`እንዴት|ምን|የት|መቼ`),
		},
		"om": {
			regexp.MustCompile(`(?i)Afaan Oromoo|\b(?:Akkam|Maal|Eessa|Yoom)\b`),
		},
		"ti": {
			regexp.MustCompile(`ትግርኛ|ከመይ|እንታይ|ኣበይ|መዓስ`),
		},
		"yo": {
			regexp.MustCompile(`(?i)Èdè Yorùbá|\b(?:Bawo|Kini|Nigbawo)\b`),
			regexp.MustCompile(`[ẹọṣàáèéìíòóùú]`),
		},
		"sw": {
			regexp.MustCompile(`(?i)Kiswahili|\b(?:Vipi|Nini|Wapi|Lini)\b`),
		},
	}
	return r
}

// Detect returns the locale code for the text. Pattern matching runs first
// so that short or mixed-script input resolves without the statistical
// detector; text below the minimum length returns the default locale.
func (r *Router) Detect(text string) string {
	clean := cleanForDetection(text)
	if len([]rune(clean)) < r.minLength {
		return r.defaultCode
	}

	for _, code := range r.patternOrder {
		for _, p := range r.patterns[code] {
			if p.MatchString(text) {
				return code
			}
		}
	}

	info := whatlanggo.Detect(text)
	if code, ok := isoToLocale[whatlanggo.LangToString(info.Lang)]; ok {
		return code
	}
	log.Infof("[LanguageRouter] statistical detection gave unsupported language for %q, using default", truncate(text, 40))
	return r.defaultCode
}

// Route resolves a locale code to its full locale record. Unsupported codes
// fall back to the default locale; Route never fails.
func (r *Router) Route(code string) Locale {
	if loc, ok := r.locales[code]; ok {
		return loc
	}
	return r.locales[r.defaultCode]
}

// Supported reports whether code is one of the six locales.
func (r *Router) Supported(code string) bool {
	_, ok := r.locales[code]
	return ok
}

// DefaultCode returns the platform default locale code.
func (r *Router) DefaultCode() string {
	return r.defaultCode
}

// RenderTemplate fills the locale's instruction template.
func RenderTemplate(loc Locale, query, context string) string {
	return strings.NewReplacer(
		"{query}", query,
		"{context}", context,
		"{language_name}", loc.NativeName,
		"{country}", loc.Country,
	).Replace(loc.Template)
}

// ClarifyingQuestion returns the localized prompt asking the student to
// restate an empty or too-short question.
func ClarifyingQuestion(code string) string {
	if q, ok := clarifyingQuestions[code]; ok {
		return q
	}
	return clarifyingQuestions["en"]
}

// FallbackAnswer returns the localized message used when generation fails
// entirely.
func FallbackAnswer(code string) string {
	if m, ok := fallbackAnswers[code]; ok {
		return m
	}
	return fallbackAnswers["en"]
}

// isoToLocale maps ISO 639-3 codes from the statistical detector to the
// supported locale codes.
var isoToLocale = map[string]string{
	"amh": "am",
	"orm": "om",
	"tir": "ti",
	"yor": "yo",
	"swh": "sw",
	"eng": "en",
}

var nonDetectable = regexp.MustCompile(`[^\p{L}\p{N}]+`)

func cleanForDetection(text string) string {
	return strings.TrimSpace(nonDetectable.ReplaceAllString(text, " "))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
