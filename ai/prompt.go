package ai

import (
	"fmt"
	"strings"
)

// SystemSafetyRules lead every knowledge-path system prompt, before the
// language directive and the character's own prompt.
const SystemSafetyRules = `- You are a companion for an 8-year-old child.
- Use gentle, positive, and simple language.
- DO NOT discuss adult themes, violence, horror, or dark topics.
- DO NOT suggest dangerous activities.
- DO NOT scare the user.
- Answers should be short, clear, and engaging.
- Encourage curiosity and learning.
- If you use search, only summarize information from kid-friendly perspectives.`

var languageNames = map[string]string{
	"en": "English",
	"de": "German",
	"zh": "Chinese",
	"ja": "Japanese",
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
}

// LanguageName returns the English display name of a supported locale,
// defaulting to English for anything unknown.
func LanguageName(lang string) string {
	if name, ok := languageNames[lang]; ok {
		return name
	}
	return "English"
}

// BuildSystemPrompt composes the knowledge-path system prompt: safety rules,
// then the language directive, then the character's own prompt. The order is
// fixed so the safety rules always take precedence.
func BuildSystemPrompt(characterPrompt, lang string) string {
	directive := fmt.Sprintf(
		"IMPORTANT: You must respond in %s. You are speaking to an 8-year-old child.",
		LanguageName(lang),
	)
	return strings.Join([]string{SystemSafetyRules, directive, characterPrompt}, "\n")
}

// buildSpeechInstruction guides the TTS model's delivery beyond the raw text
func buildSpeechInstruction(voice, lang string) string {
	langName := LanguageName(lang)
	return fmt.Sprintf(
		"You are a high-quality multilingual speech engine for children. "+
			"Please read the text provided in %s. "+
			"The audience is an 8-year-old child, so speak clearly, warmly, and naturally. "+
			"Respect the linguistic nuances of %s while keeping the character's energy level consistent with the chosen voice: %s.",
		langName, langName, voice,
	)
}
