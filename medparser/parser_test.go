package medparser

import (
	"regexp"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestParseLabeledResponse(t *testing.T) {
	result := Parse("Medication name: Advil\nDosage: 200mg\nHigh confidence identification")

	if result.MedicationName != "Advil" {
		t.Errorf("expected medication name Advil, got %q", result.MedicationName)
	}
	if result.Dosage != "200mg" {
		t.Errorf("expected dosage 200mg, got %q", result.Dosage)
	}
	if result.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9, got %f", result.Confidence)
	}
	if result.ImageQuality != QualityGood {
		t.Errorf("expected good image quality, got %q", result.ImageQuality)
	}
}

func TestParsePercentageConfidence(t *testing.T) {
	result := Parse("I am 85% confident this is Aspirin 325mg.")

	if result.Confidence != 0.85 {
		t.Errorf("expected confidence 0.85, got %f", result.Confidence)
	}
	if result.Dosage != "325mg" {
		t.Errorf("expected dosage 325mg, got %q", result.Dosage)
	}
	if result.MedicationName != "Aspirin" {
		t.Errorf("expected medication name Aspirin, got %q", result.MedicationName)
	}
}

func TestParseBlurryImage(t *testing.T) {
	result := Parse("The image is blurry and unclear. I cannot determine the medication name with certainty.")

	if result.Confidence > 0.4 {
		t.Errorf("expected low confidence, got %f", result.Confidence)
	}
	if result.ImageQuality != QualityPoor {
		t.Errorf("expected poor image quality, got %q", result.ImageQuality)
	}
	if result.MedicationName != "" {
		t.Errorf("expected empty medication name, got %q", result.MedicationName)
	}
}

func TestParseEmptyInput(t *testing.T) {
	result := Parse("")

	if result.MedicationName != "" || result.Dosage != "" {
		t.Errorf("expected empty name and dosage, got %q / %q", result.MedicationName, result.Dosage)
	}
	if result.Confidence != 0.0 {
		t.Errorf("expected zero confidence, got %f", result.Confidence)
	}
	if result.ImageQuality != QualityPoor {
		t.Errorf("expected poor image quality, got %q", result.ImageQuality)
	}
	if result.RawResponse != "" {
		t.Errorf("expected raw response preserved, got %q", result.RawResponse)
	}
}

func TestParseAlternativeNames(t *testing.T) {
	result := Parse("Brand name: Advil\nGeneric name: Ibuprofen\nAlso known as Motrin")

	if result.MedicationName != "Advil" {
		t.Errorf("expected medication name Advil, got %q", result.MedicationName)
	}

	alternatives := make(map[string]bool)
	for _, name := range result.AlternativeNames {
		alternatives[name] = true
	}
	if !alternatives["Ibuprofen"] || !alternatives["Motrin"] {
		t.Errorf("expected alternatives to include Ibuprofen and Motrin, got %v", result.AlternativeNames)
	}
}

func TestParseConfidenceExtraction(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		expected float64
	}{
		{"percentage confident", "I am 72% confident in this identification", 0.72},
		{"percentage confidence", "72% confidence in the label reading", 0.72},
		{"percentage clamped", "I am 150% confident", 1.0},
		{"percentage at int limit", "I am 9223372036854775807% confident", 1.0},
		{"percentage past int limit", "I am 9223372036854775808% confident", 1.0},
		{"percentage absurdly long", "I am 12345678901234567890% confident", 1.0},
		{"phrase high", "High confidence in the result", 0.9},
		{"phrase medium", "Medium confidence overall", 0.7},
		{"phrase moderate", "Moderate confidence here", 0.7},
		{"phrase low", "Low confidence in this reading", 0.3},
		{"keyword high", "The label is clearly visible on the bottle", 0.9},
		{"keyword medium", "This appears to be ibuprofen", 0.7},
		{"keyword low", "The text is uncertain", 0.3},
		{"percentage beats keywords", "Blurry but I am 90% confident", 0.9},
		{"default when silent", "A white round pill.", 0.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Parse(tc.text)
			if result.Confidence != tc.expected {
				t.Errorf("Parse(%q).Confidence = %f, want %f", tc.text, result.Confidence, tc.expected)
			}
		})
	}
}

func TestParseImageQuality(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		expected ImageQuality
	}{
		{"explicit poor", "The image has poor quality lighting", QualityPoor},
		{"explicit fair", "The photo is somewhat clear", QualityFair},
		{"explicit good", "The image is sharp and readable", QualityGood},
		{"poor wins over good phrases", "Well-lit but blurry overall", QualityPoor},
		{"inferred good from confidence", "I am 90% confident this is Advil", QualityGood},
		{"inferred fair from confidence", "A white round pill sits on a table", QualityFair},
		{"inferred poor from confidence", "I am 20% confident about this", QualityPoor},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Parse(tc.text)
			if result.ImageQuality != tc.expected {
				t.Errorf("Parse(%q).ImageQuality = %q, want %q", tc.text, result.ImageQuality, tc.expected)
			}
		})
	}
}

func TestParseNameCleanup(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		expected string
	}{
		{"stops at stop phrase", "Medication name: Tylenol with codeine", "Tylenol"},
		{"stops at descriptive word", "Medication name: Advil packaging in red", "Advil"},
		{"stops at dosage token", "Medication name: Aspirin 325mg tablets", "Aspirin"},
		{"stops at spaced dosage", "Medication name: Aspirin 325 mg tablets", "Aspirin"},
		{"stops at spaced unit word", "Medication name: Insulin 100 units", "Insulin"},
		{"keeps glued unit word", "Medication name: Insulin 100units", "Insulin 100units"},
		{"drops form words", "Medication name: Ibuprofen tablet", "Ibuprofen"},
		{"keeps multi-word names", "Medication name: Tylenol PM\nDosage unknown", "Tylenol PM"},
		{"rejects placeholder", "Medication name: unknown\nBrand name: Advil", "Advil"},
		{"rejects not visible", "Medication name: not visible", ""},
		{"collapses whitespace", "Medication name: Advil   Extra   Strength\n", "Advil Extra Strength"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Parse(tc.text)
			if result.MedicationName != tc.expected {
				t.Errorf("Parse(%q).MedicationName = %q, want %q", tc.text, result.MedicationName, tc.expected)
			}
		})
	}
}

func TestParseDosagePriority(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		expected string
	}{
		{"ratio beats simple", "The syrup is 10mg/5ml, bottle says 100ml", "10mg/5ml"},
		{"labeled dosage", "Dosage: 500mg twice a day", "500mg"},
		{"labeled strength", "Strength: 250 mg", "250 mg"},
		{"labeled dose", "Dose: 5ml as needed", "5ml"},
		{"bare fallback", "A 200mg tablet", "200mg"},
		{"decimal dosage", "Dosage: 2.5mg nightly", "2.5mg"},
		{"units form", "Insulin 100units/ml solution", "100units/ml"},
		{"first match only", "Dosage: 200mg or 400mg", "200mg"},
		{"none found", "A round white pill", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Parse(tc.text)
			if result.Dosage != tc.expected {
				t.Errorf("Parse(%q).Dosage = %q, want %q", tc.text, result.Dosage, tc.expected)
			}
		})
	}
}

// Strength expressions the name cleanup strips: a number glued or spaced
// next to mg/mcg/ml/g, or a number followed by the standalone word "unit(s)".
// A glued "100units" is not in that set and stays part of the name.
var nameDosagePattern = regexp.MustCompile(`(?i)\b[0-9]+(?:\.[0-9]+)?\s*(?:mg|mcg|ml|g)\b|\b[0-9]+(?:\.[0-9]+)?\s+units?\b`)

func TestParseProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	freeText := gen.OneGenOf(
		gen.AnyString(),
		gen.AlphaString(),
		gen.OneConstOf(
			"Medication name: Advil\nDosage: 200mg",
			"Brand name: Tylenol Extra Strength with coating",
			"The image is blurry, likely Motrin 400 mg",
			"I am 95% confident this is Lipitor 20mg. Generic name: Atorvastatin",
			"unclear packaging, cannot determine",
			"THIS IS: Metformin 500mg/850mg tablets",
		),
	)

	properties.Property("parsing is deterministic", prop.ForAll(
		func(text string) bool {
			first := Parse(text)
			second := Parse(text)
			if first.MedicationName != second.MedicationName ||
				first.Dosage != second.Dosage ||
				first.Confidence != second.Confidence ||
				first.ImageQuality != second.ImageQuality ||
				first.RawResponse != second.RawResponse ||
				len(first.AlternativeNames) != len(second.AlternativeNames) {
				return false
			}
			for i := range first.AlternativeNames {
				if first.AlternativeNames[i] != second.AlternativeNames[i] {
					return false
				}
			}
			return true
		},
		freeText,
	))

	properties.Property("confidence stays within [0,1]", prop.ForAll(
		func(text string) bool {
			result := Parse(text)
			return result.Confidence >= 0.0 && result.Confidence <= 1.0
		},
		freeText,
	))

	properties.Property("confidence stays within [0,1] for arbitrary percent digit runs", prop.ForAll(
		func(digits []uint8) bool {
			var sb strings.Builder
			sb.WriteString("I am ")
			sb.WriteByte('1')
			for _, d := range digits {
				sb.WriteByte('0' + d%10)
			}
			sb.WriteString("% confident")
			result := Parse(sb.String())
			return result.Confidence >= 0.0 && result.Confidence <= 1.0
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("raw response is preserved verbatim", prop.ForAll(
		func(text string) bool {
			return Parse(text).RawResponse == text
		},
		freeText,
	))

	properties.Property("medication name never contains a dosage expression", prop.ForAll(
		func(text string) bool {
			result := Parse(text)
			return !nameDosagePattern.MatchString(result.MedicationName)
		},
		freeText,
	))

	properties.Property("image quality is always a known bucket", prop.ForAll(
		func(text string) bool {
			switch Parse(text).ImageQuality {
			case QualityGood, QualityFair, QualityPoor, QualityUnknown:
				return true
			}
			return false
		},
		freeText,
	))

	properties.Property("low-confidence wording wins over high-confidence wording", prop.ForAll(
		func(lowKeyword, highKeyword string) bool {
			text := highKeyword + " but the text is " + lowKeyword
			return Parse(text).Confidence == 0.3
		},
		gen.OneConstOf("unclear", "blurry", "uncertain", "cannot determine"),
		gen.OneConstOf("clearly visible", "certain", "definite", "obvious"),
	))

	properties.Property("alternative names are deduplicated", prop.ForAll(
		func(name string) bool {
			text := "Also known as " + name + "\nAlternative: " + name + "\n"
			result := Parse(text)
			seen := make(map[string]bool)
			for _, alt := range result.AlternativeNames {
				if seen[alt] {
					return false
				}
				seen[alt] = true
			}
			return true
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 1 && !strings.EqualFold(s, "unknown") }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
