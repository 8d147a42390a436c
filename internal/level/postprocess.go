package level

import (
	"regexp"
	"strings"
)

// Cosmetic passes only: these transforms adjust surface phrasing and must
// never alter factual content.

var simplifications = map[string]string{
	"utilize":       "use",
	"facilitate":    "help",
	"implement":     "do",
	"comprehensive": "complete",
	"sophisticated": "advanced",
	"paradigm":      "way of thinking",
	"methodology":   "method",
}

var elevations = map[string]string{
	"good":      "excellent",
	"important": "crucial",
	"big":       "significant",
	"small":     "minimal",
	"easy":      "straightforward",
}

var encouragements = []string{
	"Great question!",
	"You're doing well!",
	"Keep up the good work!",
	"That's a smart way to think about it!",
	"You're on the right track!",
}

var scaffoldingQuestions = []string{
	"Does this make sense so far?",
	"Would you like me to explain any part in more detail?",
	"Do you have any questions about this?",
	"Is there anything you'd like me to clarify?",
}

var connectives = []string{
	"Furthermore,",
	"Additionally,",
	"It's also important to note that",
}

var analyticalFramings = []string{
	"From a theoretical perspective, the underlying mechanism here rewards closer analysis.",
	"This raises interesting questions worth exploring independently.",
	"Consider how this generalizes beyond the specific case above.",
}

// PostProcess applies the level-specific cosmetic passes to the draft.
func PostProcess(draft, levelName string) string {
	if strings.TrimSpace(draft) == "" {
		return draft
	}
	switch GetProfile(levelName).Complexity {
	case 2:
		return injectConnective(draft)
	case 3:
		return addAnalyticalFraming(elevateVocabulary(draft))
	default:
		return addScaffolding(addEncouragement(simplifyVocabulary(draft)))
	}
}

func simplifyVocabulary(text string) string {
	return replaceWords(text, simplifications)
}

func elevateVocabulary(text string) string {
	return replaceWords(text, elevations)
}

// replaceWords substitutes whole words only, keeping surrounding text intact.
func replaceWords(text string, table map[string]string) string {
	for from, to := range table {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(from) + `\b`)
		text = re.ReplaceAllString(text, to)
	}
	return text
}

// pick selects deterministically so identical drafts produce identical output.
func pick(options []string, text string) string {
	return options[len([]rune(text))%len(options)]
}

func addEncouragement(text string) string {
	return pick(encouragements, text) + " " + text
}

func addScaffolding(text string) string {
	return text + "\n\n" + pick(scaffoldingQuestions, text)
}

// injectConnective prepends a transitional phrase to the second sentence
// when the draft has more than one and no connective is present yet.
func injectConnective(text string) string {
	for _, c := range connectives {
		if strings.Contains(text, c) {
			return text
		}
	}
	sentences := splitSentences(text)
	if len(sentences) < 2 {
		return text
	}
	c := pick(connectives, text)
	sentences[1] = c + " " + lowerFirst(sentences[1])
	return strings.Join(sentences, " ")
}

func addAnalyticalFraming(text string) string {
	return text + "\n\n" + pick(analyticalFramings, text)
}

var sentenceEnd = regexp.MustCompile(`(?s)(.*?[.!?])(?:\s+|$)`)

func splitSentences(text string) []string {
	matches := sentenceEnd.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return []string{text}
	}
	out := make([]string, 0, len(matches))
	consumed := 0
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[1]))
		consumed += len(m[0])
	}
	if rest := strings.TrimSpace(text[consumed:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

func lowerFirst(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return strings.ToLower(string(runes[0])) + string(runes[1:])
}
