package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "German", LanguageName("de"))
	assert.Equal(t, "Japanese", LanguageName("ja"))
	assert.Equal(t, "English", LanguageName("en"))
	assert.Equal(t, "English", LanguageName("xx"))
	assert.Equal(t, "English", LanguageName(""))
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt("You are Sparky, a cheerful dragon.", "fr")

	// safety rules always lead, character prompt always trails
	assert.True(t, strings.HasPrefix(prompt, SystemSafetyRules))
	assert.True(t, strings.HasSuffix(prompt, "You are Sparky, a cheerful dragon."))
	assert.Contains(t, prompt, "You must respond in French.")
	assert.Contains(t, prompt, "8-year-old child")

	rulesIdx := strings.Index(prompt, SystemSafetyRules)
	charIdx := strings.Index(prompt, "You are Sparky")
	assert.Less(t, rulesIdx, charIdx)
}

func TestBuildSpeechInstruction(t *testing.T) {
	instr := buildSpeechInstruction("Zephyr", "es")
	assert.Contains(t, instr, "Spanish")
	assert.Contains(t, instr, "Zephyr")
}
