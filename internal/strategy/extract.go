package strategy

import (
	"regexp"
	"strings"
)

var (
	quotedRegex      = regexp.MustCompile(`"([^"]*)"`)
	sentenceEndRegex = regexp.MustCompile(`[.!?]\s+`)

	// Tokens that mark a sentence as negotiation-relevant.
	relevantTokens = []string{"price", "deal", "offer", "$"}
)

// ExtractReply reduces a full model reply to the single sentence the assistant
// should say. Precedence is contractual and must not be "improved":
//  1. the first double-quoted substring, if any quotes exist;
//  2. the shortest sentence containing price/deal/offer/$ (first one on ties);
//  3. the full reply unmodified.
func ExtractReply(fullReply string) string {
	if m := quotedRegex.FindStringSubmatch(fullReply); m != nil {
		return m[1]
	}

	var best string
	found := false
	for _, sentence := range splitSentences(fullReply) {
		if !isRelevant(sentence) {
			continue
		}
		if !found || len(sentence) < len(best) {
			best = sentence
			found = true
		}
	}

	if found {
		return best
	}
	return fullReply
}

func isRelevant(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, token := range relevantTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// splitSentences cuts after sentence-ending punctuation followed by
// whitespace, keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	var sentences []string

	start := 0
	for _, m := range sentenceEndRegex.FindAllStringIndex(text, -1) {
		if m[0] < start {
			continue
		}
		sentences = append(sentences, text[start:m[0]+1])
		start = m[1]
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}

	return sentences
}
