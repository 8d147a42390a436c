package language

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_AmharicScript(t *testing.T) {
	r := NewRouter("en", 3)

	t.Run("pure Amharic", func(t *testing.T) {
		assert.Equal(t, "am", r.Detect("ምን ማለት ነው ፎቶሲንተሲስ"))
	})

	t.Run("Amharic mixed with Latin digits", func(t *testing.T) {
		assert.Equal(t, "am", r.Detect("እንዴት 25 ማባዛት 4"))
	})
}

func TestDetect_PatternFastPath(t *testing.T) {
	r := NewRouter("en", 3)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"oromo greeting", "Akkam jirta, barumsa kee akkam?", "om"},
		{"tigrigna keyword", "ከመይ ክገብር ኣለኒ", "am"}, // Ethiopic script resolves to am first
		{"yoruba diacritics", "Kini ìtumọ̀ photosynthesis?", "yo"},
		{"swahili keyword", "Nini maana ya photosynthesis?", "sw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Detect(tt.text))
		})
	}
}

func TestDetect_ShortInputFallsBackToDefault(t *testing.T) {
	r := NewRouter("en", 3)

	assert.Equal(t, "en", r.Detect(""))
	assert.Equal(t, "en", r.Detect("hi"))
	assert.Equal(t, "en", r.Detect("?!"))
}

func TestDetect_Deterministic(t *testing.T) {
	r := NewRouter("en", 3)
	text := "What is the capital of Kenya and why does it matter for geography?"

	first := r.Detect(text)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, r.Detect(text))
	}
}

func TestRoute_FallsBackToDefault(t *testing.T) {
	r := NewRouter("en", 3)

	loc := r.Route("fr")
	assert.Equal(t, "en", loc.Code)

	loc = r.Route("sw")
	assert.Equal(t, "Kiswahili", loc.NativeName)
	assert.Equal(t, "East Africa", loc.Country)
}

func TestRenderTemplate_FillsPlaceholders(t *testing.T) {
	r := NewRouter("en", 3)
	loc := r.Route("en")

	out := RenderTemplate(loc, "What is photosynthesis?", "Plants convert light to energy.")
	assert.Contains(t, out, "What is photosynthesis?")
	assert.Contains(t, out, "Plants convert light to energy.")
	assert.False(t, strings.Contains(out, "{query}"))
	assert.False(t, strings.Contains(out, "{context}"))
	assert.False(t, strings.Contains(out, "{language_name}"))
}

func TestClarifyingQuestion_AllLocalesNonEmpty(t *testing.T) {
	r := NewRouter("en", 3)
	for _, code := range []string{"en", "am", "om", "ti", "yo", "sw"} {
		require.True(t, r.Supported(code))
		assert.NotEmpty(t, ClarifyingQuestion(code))
		assert.NotEmpty(t, FallbackAnswer(code))
	}
	// unknown code falls back to English
	assert.Equal(t, ClarifyingQuestion("en"), ClarifyingQuestion("xx"))
}
