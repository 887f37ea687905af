// Package medparser turns the free-text answer of a vision model describing
// a photographed medication into a structured MedicationIdentification.
//
// The extraction is a best-effort cascade of ordered regex rules, not a
// grammar. The rule order is load-bearing: changing it changes the output
// for ambiguous inputs (text carrying both "brand name:" and "generic
// name:" labels, or mixed confidence wording), so every rule table below is
// applied strictly first-match-wins in declaration order.
package medparser

import (
	"regexp"
	"strconv"
	"strings"
)

// Parse maps one vision model answer to a MedicationIdentification. It is a
// pure function: no I/O, no randomness, and it never fails. Empty input
// yields the degenerate zero-confidence record.
func Parse(text string) MedicationIdentification {
	if text == "" {
		return MedicationIdentification{
			Confidence:   0.0,
			ImageQuality: QualityPoor,
			RawResponse:  text,
		}
	}

	lower := strings.ToLower(text)

	confidence := extractConfidence(lower)

	return MedicationIdentification{
		MedicationName:   extractMedicationName(text),
		Dosage:           extractDosage(text),
		Confidence:       confidence,
		AlternativeNames: extractAlternativeNames(text),
		ImageQuality:     deriveImageQuality(lower, confidence),
		RawResponse:      text,
	}
}

var (
	percentConfidencePattern = regexp.MustCompile(`(\d+)%\s*confiden(?:t|ce)`)
	phraseConfidencePattern  = regexp.MustCompile(`(high|medium|moderate|low)\s+confidence`)
)

// Keyword bags checked when no explicit percentage or qualitative phrase is
// present. Low is checked first: hedging language ("unclear", "blurry")
// must win over incidental high-confidence words in the same sentence.
var confidenceKeywordSets = []struct {
	score    float64
	keywords []string
}{
	{0.3, []string{"unclear", "difficult", "low confidence", "blurry", "uncertain", "cannot determine"}},
	{0.9, []string{"clearly visible", "confident", "high confidence", "certain", "definite", "obvious"}},
	{0.7, []string{"likely", "appears to be", "moderate confidence", "probably", "seems to be"}},
}

func extractConfidence(lower string) float64 {
	if m := percentConfidencePattern.FindStringSubmatch(lower); m != nil {
		// The capture is all digits, so the only Atoi failure mode is a
		// value too large for int, which saturates to full confidence.
		percentage, err := strconv.Atoi(m[1])
		if err != nil {
			return 1.0
		}
		confidence := float64(percentage) / 100.0
		if confidence > 1.0 {
			confidence = 1.0
		}
		return confidence
	}

	if m := phraseConfidencePattern.FindStringSubmatch(lower); m != nil {
		switch m[1] {
		case "high":
			return 0.9
		case "medium", "moderate":
			return 0.7
		case "low":
			return 0.3
		}
	}

	for _, set := range confidenceKeywordSets {
		for _, keyword := range set.keywords {
			if strings.Contains(lower, keyword) {
				return set.score
			}
		}
	}

	return 0.5
}

// Explicit quality phrases, poor checked before fair before good.
var qualityPhraseSets = []struct {
	quality ImageQuality
	phrases []string
}{
	{QualityPoor, []string{"poor quality", "difficult to read", "low resolution", "blurry", "unclear", "very blurry", "insufficient lighting"}},
	{QualityFair, []string{"fair quality", "somewhat clear", "adequate", "partially visible", "some text is readable"}},
	{QualityGood, []string{"good quality", "clear", "sharp", "well-lit", "clearly visible"}},
}

func deriveImageQuality(lower string, confidence float64) ImageQuality {
	for _, set := range qualityPhraseSets {
		for _, phrase := range set.phrases {
			if strings.Contains(lower, phrase) {
				return set.quality
			}
		}
	}

	switch {
	case confidence >= 0.8:
		return QualityGood
	case confidence >= 0.5:
		return QualityFair
	default:
		return QualityPoor
	}
}

// Labeled-field patterns for the primary name, in priority order. They run
// against the original-case text so proper-noun casing survives. The capture
// stops at the next newline, period or comma.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)medication name[:\s]+([A-Za-z0-9']+(?:\s+[A-Za-z0-9']+)*?)(?:\s*\n|\s*$|\s*\.|\s*,)`),
	regexp.MustCompile(`(?i)brand name[:\s]+([A-Za-z0-9']+(?:\s+[A-Za-z0-9']+)*?)(?:\s*\n|\s*$|\s*\.|\s*,)`),
	regexp.MustCompile(`(?i)drug name[:\s]+([A-Za-z0-9']+(?:\s+[A-Za-z0-9']+)*?)(?:\s*\n|\s*$|\s*\.|\s*,)`),
	regexp.MustCompile(`(?i)generic name[:\s]+([A-Za-z0-9']+(?:\s+[A-Za-z0-9']+)*?)(?:\s*\n|\s*$|\s*\.|\s*,)`),
	regexp.MustCompile(`(?i)identified as[:\s]+([A-Za-z0-9']+(?:\s+[A-Za-z0-9']+)*?)(?:\s*\n|\s*$|\s*\.|\s*,)`),
	regexp.MustCompile(`(?i)appears to be[:\s]+([A-Za-z0-9']+(?:\s+[A-Za-z0-9']+)*?)(?:\s*\n|\s*$|\s*\.|\s*,)`),
	regexp.MustCompile(`(?i)this is[:\s]+([A-Za-z0-9']+(?:\s+[A-Za-z0-9']+)*?)(?:\s*\n|\s*$|\s*\.|\s*,)`),
	regexp.MustCompile(`(?i)likely[:\s]+([A-Za-z0-9']+(?:\s+[A-Za-z0-9']+)*?)(?:\s*\n|\s*$|\s*\.|\s*,)`),
}

var (
	whitespacePattern = regexp.MustCompile(`\s+`)

	// Everything after one of these phrases is packaging chatter, not name.
	nameStopPhrases = []string{"with", "and other", "other ingredients", "coating"}

	// Descriptive words that mark the end of the name when they appear as a
	// standalone word.
	nameDescriptiveWords = map[string]bool{
		"based": true, "visible": true, "packaging": true, "colors": true,
		"partial": true, "text": true, "appears": true, "store": true, "brand": true,
	}

	nameStopWords = map[string]bool{
		"tablet": true, "capsule": true, "liquid": true, "with": true, "and": true,
		"the": true, "per": true, "dose": true, "form": true, "coating": true,
		"other": true, "ingredients": true,
	}

	invalidNames = map[string]bool{
		"unknown": true, "unclear": true, "not visible": true, "medication": true,
		"drug": true, "not clearly": true, "not": true, "clearly": true,
		"a medication": true,
	}

	dosageUnitTokens = []string{"mg", "mcg", "ml", "g"}
)

func extractMedicationName(text string) string {
	for _, pattern := range namePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		name := cleanMedicationName(match[1])
		if len(name) > 1 && !invalidNames[strings.ToLower(name)] {
			return name
		}
	}
	return ""
}

func cleanMedicationName(raw string) string {
	name := strings.TrimSpace(whitespacePattern.ReplaceAllString(raw, " "))

	// Truncate at the first stop-phrase occurrence.
	lowerName := strings.ToLower(name)
	for _, phrase := range nameStopPhrases {
		if idx := strings.Index(lowerName, phrase); idx >= 0 {
			name = strings.TrimSpace(name[:idx])
			break
		}
	}

	// Truncate at the first descriptive word.
	words := strings.Fields(name)
	var kept []string
	for _, word := range words {
		if nameDescriptiveWords[strings.ToLower(word)] {
			break
		}
		kept = append(kept, word)
	}
	if len(kept) > 0 {
		words = kept
	}

	// Truncate at the first dosage-looking token, then drop stop words. A
	// bare number directly followed by a unit word ("325 mg") counts as a
	// dosage token too, so a strength never leaks into the name.
	var nameWords []string
	for i, word := range words {
		if isDosageToken(word) {
			break
		}
		if isBareNumber(word) && i+1 < len(words) && isUnitWord(words[i+1]) {
			break
		}
		if !nameStopWords[strings.ToLower(word)] {
			nameWords = append(nameWords, word)
		}
	}

	return strings.Join(nameWords, " ")
}

func isBareNumber(word string) bool {
	if word == "" {
		return false
	}
	dots := 0
	for _, ch := range word {
		switch {
		case ch >= '0' && ch <= '9':
		case ch == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func isUnitWord(word string) bool {
	switch strings.ToLower(strings.TrimRight(word, ".,")) {
	case "mg", "g", "ml", "mcg", "unit", "units":
		return true
	}
	return false
}

func isDosageToken(word string) bool {
	lower := strings.ToLower(word)
	hasUnit := false
	for _, unit := range dosageUnitTokens {
		if strings.Contains(lower, unit) {
			hasUnit = true
			break
		}
	}
	if !hasUnit {
		return false
	}
	for _, ch := range word {
		if ch >= '0' && ch <= '9' {
			return true
		}
	}
	return false
}

// Dosage patterns, most specific first so compound strengths such as
// "10mg/5ml" win over the bare number fallback.
var dosagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([0-9]+(?:\.[0-9]+)?\s*(?:mg|g|mcg|units?)/[0-9]*(?:\.[0-9]+)?\s*(?:mg|g|ml|mcg|units?))`),
	regexp.MustCompile(`(?i)dosage[:\s]+([0-9]+(?:\.[0-9]+)?\s*(?:mg|g|mcg|units?)/[0-9]*(?:\.[0-9]+)?\s*(?:mg|g|ml|mcg|units?))`),
	regexp.MustCompile(`(?i)strength[:\s]+([0-9]+(?:\.[0-9]+)?\s*(?:mg|g|mcg|units?)/[0-9]*(?:\.[0-9]+)?\s*(?:mg|g|ml|mcg|units?))`),
	regexp.MustCompile(`(?i)dosage[:\s]+([0-9]+(?:\.[0-9]+)?\s*(?:mg|g|ml|mcg|units?))`),
	regexp.MustCompile(`(?i)strength[:\s]+([0-9]+(?:\.[0-9]+)?\s*(?:mg|g|ml|mcg|units?))`),
	regexp.MustCompile(`(?i)dose[:\s]+([0-9]+(?:\.[0-9]+)?\s*(?:mg|g|ml|mcg|units?))`),
	regexp.MustCompile(`(?i)([0-9]+(?:\.[0-9]+)?\s*(?:mg|g|ml|mcg|units?))`),
}

func extractDosage(text string) string {
	for _, pattern := range dosagePatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			if dosage := strings.TrimSpace(match[1]); dosage != "" {
				return dosage
			}
		}
	}
	return ""
}

var alternativeNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)also known as[:\s]+([A-Za-z0-9]+(?:\s+[A-Za-z0-9]+)*?)(?:\s|$|\n)`),
	regexp.MustCompile(`(?i)generic name[:\s]+([A-Za-z0-9]+(?:\s+[A-Za-z0-9]+)*?)(?:\s|$|\n)`),
	regexp.MustCompile(`(?i)brand name[:\s]+([A-Za-z0-9]+(?:\s+[A-Za-z0-9]+)*?)(?:\s|$|\n)`),
	regexp.MustCompile(`(?i)alternative[:\s]+([A-Za-z0-9]+(?:\s+[A-Za-z0-9]+)*?)(?:\s|$|\n)`),
}

var invalidAlternativeNames = map[string]bool{
	"unknown": true, "unclear": true, "not visible": true,
	"medication": true, "drug": true,
}

func extractAlternativeNames(text string) []string {
	var names []string
	seen := make(map[string]bool)

	for _, pattern := range alternativeNamePatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(whitespacePattern.ReplaceAllString(match[1], " "))

			var nameWords []string
			for _, word := range strings.Fields(name) {
				if !nameStopWords[strings.ToLower(word)] {
					nameWords = append(nameWords, word)
				}
			}
			name = strings.Join(nameWords, " ")

			if len(name) <= 1 || invalidAlternativeNames[strings.ToLower(name)] {
				continue
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	return names
}
