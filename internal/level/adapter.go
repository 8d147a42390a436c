// Package level adapts generation instructions and output phrasing to a
// discrete learning level.
package level

import "strings"

// Level names. Unknown levels resolve to Beginner.
const (
	Beginner     = "beginner"
	Intermediate = "intermediate"
	Advanced     = "advanced"
)

// Profile is the read-only configuration for one learning level.
type Profile struct {
	Name             string
	Description      string
	Complexity       int // 1-3
	MaxSentenceWords int
	UseExamples      bool
	UseAnalogies     bool
	Scaffolding      bool
}

// GenerationParams encode the level-specific instructions for the
// text-completion service.
type GenerationParams struct {
	Level            string
	Complexity       int
	MaxSentenceWords int
	UseExamples      bool
	UseAnalogies     bool
	Scaffolding      bool
	Guidelines       string
}

var profiles = map[string]Profile{
	Beginner: {
		Name:             Beginner,
		Description:      "Simple explanations with step-by-step guidance",
		Complexity:       1,
		MaxSentenceWords: 15,
		UseExamples:      true,
		UseAnalogies:     true,
		Scaffolding:      true,
	},
	Intermediate: {
		Name:             Intermediate,
		Description:      "Balanced complexity with examples and reasoning",
		Complexity:       2,
		MaxSentenceWords: 25,
		UseExamples:      true,
		UseAnalogies:     false,
		Scaffolding:      false,
	},
	Advanced: {
		Name:             Advanced,
		Description:      "Complex reasoning with minimal hand-holding",
		Complexity:       3,
		MaxSentenceWords: 40,
		UseExamples:      false,
		UseAnalogies:     false,
		Scaffolding:      false,
	},
}

// GetProfile returns the profile for the level, defaulting to beginner.
func GetProfile(levelName string) Profile {
	if p, ok := profiles[strings.ToLower(levelName)]; ok {
		return p
	}
	return profiles[Beginner]
}

// AllProfiles returns every configured level profile.
func AllProfiles() []Profile {
	return []Profile{profiles[Beginner], profiles[Intermediate], profiles[Advanced]}
}

// AdaptInstructions returns the generation parameters for the level.
func AdaptInstructions(levelName string) GenerationParams {
	p := GetProfile(levelName)
	return GenerationParams{
		Level:            p.Name,
		Complexity:       p.Complexity,
		MaxSentenceWords: p.MaxSentenceWords,
		UseExamples:      p.UseExamples,
		UseAnalogies:     p.UseAnalogies,
		Scaffolding:      p.Scaffolding,
		Guidelines:       guidelines(p.Name),
	}
}

func guidelines(levelName string) string {
	switch levelName {
	case Intermediate:
		return `INTERMEDIATE RESPONSE REQUIREMENTS:
1. Provide balanced explanations with some complexity
2. Include relevant examples and applications
3. Show connections between concepts
4. Use appropriate technical terms with explanations
5. Provide reasoning behind answers
6. Suggest related topics for deeper learning`
	case Advanced:
		return `ADVANCED RESPONSE REQUIREMENTS:
1. Provide sophisticated, nuanced explanations
2. Include complex reasoning and analysis
3. Use technical terminology appropriately
4. Encourage independent thinking and research
5. Provide multiple perspectives when relevant
6. Suggest advanced applications and extensions`
	default:
		return `BEGINNER RESPONSE REQUIREMENTS:
1. Start with simple, clear explanations
2. Break complex concepts into small steps
3. Use everyday analogies and examples
4. Use encouraging, supportive language
5. Avoid jargon and technical terms
6. Keep sentences short and simple`
	}
}
