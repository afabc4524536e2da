package memory

import (
	"strings"
	"unicode"
)

// The heuristics below annotate entries at creation time. They are pure
// functions over the message text, driven by the keyword tables, so they
// can be unit-tested without any backend.

// salienceKeywords mark a message as worth remembering.
var salienceKeywords = []string{
	"remember",
	"important",
	"preference",
	"prefer",
	"always",
	"never",
	"favorite",
	"don't forget",
}

// topicVocabulary is scanned in order; the first word contained in the
// lowercased message wins.
var topicVocabulary = []string{
	"finance", "investment", "budget", "money", "stock", "market",
	"weather", "climate", "energy",
	"technology", "software", "programming", "data",
	"health", "fitness", "medical",
	"travel", "food", "music", "sports",
	"work", "project", "schedule",
	"family", "education",
}

// entityExclusions drops sentence-leading words that capitalize without
// naming anything.
var entityExclusions = map[string]struct{}{
	"This": {}, "That": {}, "These": {}, "Those": {},
	"What": {}, "When": {}, "Where": {}, "Which": {}, "While": {},
	"Show": {}, "Tell": {}, "Give": {}, "Make": {}, "Please": {},
	"Analyze": {}, "Compare": {}, "Create": {},
}

// keywordStopwords filter common glue words from keyword extraction.
var keywordStopwords = map[string]struct{}{
	"this": {}, "that": {}, "these": {}, "those": {}, "with": {},
	"from": {}, "have": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"about": {}, "your": {}, "them": {}, "they": {}, "their": {},
	"been": {}, "were": {}, "there": {}, "than": {}, "then": {},
	"some": {}, "more": {}, "most": {}, "other": {}, "into": {},
	"over": {}, "show": {}, "please": {},
}

const maxKeywords = 10

// ScoreImportance grades a message's future usefulness on [1,10].
// Base 5; +2 when the message carries a salience keyword; +1 when the
// paired response is long enough to suggest substance.
func ScoreImportance(message, response string) int {
	score := 5
	lower := strings.ToLower(message)
	for _, kw := range salienceKeywords {
		if strings.Contains(lower, kw) {
			score += 2
			break
		}
	}
	if len(response) > 500 {
		score++
	}
	if score > 10 {
		score = 10
	}
	return score
}

// ExtractTopic returns the first vocabulary topic found as a substring of
// the lowercased message, falling back to the message's first three
// whitespace tokens.
func ExtractTopic(message string) string {
	lower := strings.ToLower(message)
	for _, topic := range topicVocabulary {
		if strings.Contains(lower, topic) {
			return topic
		}
	}
	fields := strings.Fields(message)
	if len(fields) > 3 {
		fields = fields[:3]
	}
	return strings.Join(fields, " ")
}

// ExtractEntities returns deduplicated capitalized tokens longer than
// three characters, minus the exclusion list.
func ExtractEntities(message string) []string {
	seen := make(map[string]struct{})
	var entities []string
	for _, token := range strings.Fields(message) {
		token = strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(token) <= 3 {
			continue
		}
		runes := []rune(token)
		if !unicode.IsUpper(runes[0]) {
			continue
		}
		if _, excluded := entityExclusions[token]; excluded {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		entities = append(entities, token)
	}
	return entities
}

// ExtractKeywords returns up to maxKeywords deduplicated lowercase
// alphanumeric tokens longer than three characters, minus stopwords.
func ExtractKeywords(message string) []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, token := range strings.Fields(strings.ToLower(message)) {
		var b strings.Builder
		for _, r := range token {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
		word := b.String()
		if len(word) <= 3 {
			continue
		}
		if _, stop := keywordStopwords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}
