package medparser

// ImageQuality is the coarse quality bucket derived from the vision model's
// own description of the photo.
type ImageQuality string

const (
	QualityGood    ImageQuality = "good"
	QualityFair    ImageQuality = "fair"
	QualityPoor    ImageQuality = "poor"
	QualityUnknown ImageQuality = "unknown"
)

// MedicationIdentification is the structured result of parsing one vision
// model answer. It is a plain value: constructed once, never mutated.
type MedicationIdentification struct {
	MedicationName   string       `json:"medication_name"`
	Dosage           string       `json:"dosage"`
	Confidence       float64      `json:"confidence"`
	AlternativeNames []string     `json:"alternative_names"`
	ImageQuality     ImageQuality `json:"image_quality"`
	RawResponse      string       `json:"raw_response"`
}

// HasValidIdentification reports whether a medication name was actually
// extracted, as opposed to the empty "nothing identified" outcome.
func (m MedicationIdentification) HasValidIdentification() bool {
	return m.MedicationName != ""
}

// IsHighConfidence reports whether the identification clears the given
// confidence threshold.
func (m MedicationIdentification) IsHighConfidence(threshold float64) bool {
	return m.Confidence >= threshold
}
