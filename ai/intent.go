package ai

import (
	"strings"
)

// imageTriggers are matched case-insensitively against the query, in order.
// The first match wins and anchors subject extraction. Longer phrases come
// before their substrings so "draw a picture of" beats "picture of".
var imageTriggers = []string{
	"show me a picture of",
	"draw a picture of",
	"make a picture of",
	"image of",
	"picture of",
	"can you draw",
	"draw me",
}

// fillerWords are stripped from the query when no clean remainder follows
// the matched trigger phrase.
var fillerWords = []string{
	"show me",
	"can you",
	"please",
	"draw",
	"a picture of",
	"picture of",
	"an image of",
	"image of",
}

// IsImageRequest reports whether the query contains any image trigger phrase
func IsImageRequest(query string) bool {
	_, ok := matchTrigger(query)
	return ok
}

// ExtractImageSubject returns the subject of an image request. The second
// return is false when the query is not an image request at all. A true with
// an empty subject means the child asked for a picture of nothing in
// particular and should be prompted to clarify.
func ExtractImageSubject(query string) (string, bool) {
	trigger, ok := matchTrigger(query)
	if !ok {
		return "", false
	}

	lower := strings.ToLower(query)
	idx := strings.Index(lower, trigger)
	subject := strings.TrimSpace(query[idx+len(trigger):])
	subject = strings.Trim(subject, "?!.,;:")
	subject = strings.TrimSpace(subject)

	if subject != "" {
		return subject, true
	}

	// No trailing clause: fall back to stripping known keywords from the
	// whole query and hope a subject is left over.
	stripped := lower
	for _, w := range fillerWords {
		stripped = strings.ReplaceAll(stripped, w, " ")
	}
	stripped = strings.Trim(stripped, " ?!.,;:")
	return strings.TrimSpace(stripped), true
}

func matchTrigger(query string) (string, bool) {
	lower := strings.ToLower(query)
	for _, trigger := range imageTriggers {
		if strings.Contains(lower, trigger) {
			return trigger, true
		}
	}
	return "", false
}
