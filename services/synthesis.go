package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"medagent-tools/medparser"
	"medagent-tools/openfda"
	"medagent-tools/utils"
)

const (
	maxFieldLength    = 1000
	maxWarningsLength = 2000
	maxAltNames       = 3

	// Below this confidence the answer carries a retake-the-photo warning.
	warningConfidenceThreshold = 0.7
)

// IdentificationSummary is the user-facing view of a parsed identification.
type IdentificationSummary struct {
	IdentifiedMedication string   `json:"identified_medication"`
	Dosage               string   `json:"dosage"`
	ConfidenceScore      float64  `json:"confidence_score"`
	ConfidenceLevel      string   `json:"confidence_level"`
	ImageQuality         string   `json:"image_quality"`
	AlternativeNames     []string `json:"alternative_names,omitempty"`
}

// DrugInformation is the user-facing view of an openFDA lookup.
type DrugInformation struct {
	Available           bool   `json:"available"`
	BrandName           string `json:"brand_name,omitempty"`
	GenericName         string `json:"generic_name,omitempty"`
	Purpose             string `json:"purpose,omitempty"`
	Warnings            string `json:"warnings,omitempty"`
	IndicationsAndUsage string `json:"indications_and_usage,omitempty"`
	Error               string `json:"error,omitempty"`
}

// ProcessingMetadata records pipeline facts alongside the answer.
type ProcessingMetadata struct {
	VisionConfidence  float64 `json:"vision_confidence"`
	DrugInfoAvailable bool    `json:"drug_info_available"`
	ImageQuality      string  `json:"image_quality"`
	MeasuredQuality   string  `json:"measured_quality,omitempty"`
}

// CombinedResponse is the full image-analysis answer returned to the agent.
type CombinedResponse struct {
	Success            bool                  `json:"success"`
	Timestamp          string                `json:"timestamp"`
	Identification     IdentificationSummary `json:"identification"`
	DrugInformation    DrugInformation       `json:"drug_information"`
	UserResponse       string                `json:"user_response"`
	ProcessingMetadata ProcessingMetadata    `json:"processing_metadata"`
	Warnings           []string              `json:"warnings,omitempty"`
	RequestID          string                `json:"request_id,omitempty"`
	ProcessingTime     float64               `json:"processing_time"`
}

// FormatConfidenceLevel maps a confidence score onto user-friendly wording.
func FormatConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 0.9:
		return "Very High"
	case confidence >= 0.8:
		return "High"
	case confidence >= 0.7:
		return "Good"
	case confidence >= 0.6:
		return "Moderate"
	case confidence >= 0.5:
		return "Low"
	default:
		return "Very Low"
	}
}

// sanitizeText strips markdown, trims and truncates a field for display.
// Truncation backs up to a rune boundary so a multi-byte character is never
// cut in half.
func sanitizeText(text string, maxLength int) string {
	sanitized := strings.TrimSpace(utils.CleanMarkdown(text))
	if len(sanitized) > maxLength {
		cut := maxLength - 3
		for cut > 0 && !utf8.RuneStart(sanitized[cut]) {
			cut--
		}
		sanitized = sanitized[:cut] + "..."
	}
	if sanitized == "" {
		return "Not available"
	}
	return sanitized
}

func summarizeIdentification(ident medparser.MedicationIdentification) IdentificationSummary {
	summary := IdentificationSummary{
		IdentifiedMedication: "Unknown",
		Dosage:               "Not specified",
		ConfidenceScore:      ident.Confidence,
		ConfidenceLevel:      FormatConfidenceLevel(ident.Confidence),
		ImageQuality:         string(ident.ImageQuality),
	}

	if ident.MedicationName != "" {
		summary.IdentifiedMedication = sanitizeText(ident.MedicationName, maxFieldLength)
	}
	if ident.Dosage != "" {
		summary.Dosage = sanitizeText(ident.Dosage, maxFieldLength)
	}

	for _, name := range ident.AlternativeNames {
		if len(summary.AlternativeNames) == maxAltNames {
			break
		}
		summary.AlternativeNames = append(summary.AlternativeNames, sanitizeText(name, 100))
	}

	return summary
}

func formatDrugInformation(summary *openfda.DrugSummary, lookupErr error, skipReason string) DrugInformation {
	if summary == nil {
		info := DrugInformation{Available: false}
		switch {
		case lookupErr != nil:
			info.Error = lookupErr.Error()
		case skipReason != "":
			info.Error = skipReason
		default:
			info.Error = "Drug information not available"
		}
		return info
	}

	return DrugInformation{
		Available:           true,
		BrandName:           sanitizeText(summary.BrandName, maxFieldLength),
		GenericName:         sanitizeText(summary.GenericName, maxFieldLength),
		Purpose:             sanitizeText(summary.Purpose, maxFieldLength),
		Warnings:            sanitizeText(summary.Warnings, maxWarningsLength),
		IndicationsAndUsage: sanitizeText(summary.IndicationsAndUsage, maxWarningsLength),
	}
}

func buildUserResponse(ident IdentificationSummary, drugInfo DrugInformation) string {
	var parts []string

	medication := ident.IdentifiedMedication
	confidence := ident.ConfidenceLevel

	if confidence == "Very Low" || confidence == "Low" {
		parts = append(parts, fmt.Sprintf(
			"I detected what appears to be %s, but I'm not very confident in this identification (confidence: %s).",
			medication, confidence))
		parts = append(parts,
			"You may want to retake the photo with better lighting or a clearer view of the medication.")
	} else {
		dosageText := ""
		if ident.Dosage != "" && ident.Dosage != "Not specified" {
			dosageText = fmt.Sprintf(" (%s)", ident.Dosage)
		}
		parts = append(parts, fmt.Sprintf("I identified this medication as %s%s with %s confidence.",
			medication, dosageText, strings.ToLower(confidence)))
	}

	if drugInfo.Available {
		brand := drugInfo.BrandName
		generic := drugInfo.GenericName

		switch {
		case brand != "N/A" && generic != "N/A" && brand != generic:
			parts = append(parts, fmt.Sprintf("This is %s (generic name: %s).", brand, generic))
		case brand != "N/A":
			parts = append(parts, fmt.Sprintf("This medication is known as %s.", brand))
		case generic != "N/A":
			parts = append(parts, fmt.Sprintf("This medication is %s.", generic))
		}

		if drugInfo.Purpose != "" && drugInfo.Purpose != "Not available." && drugInfo.Purpose != "Not available" {
			parts = append(parts, fmt.Sprintf("Purpose: %s", drugInfo.Purpose))
		}

		if drugInfo.Warnings != "" && drugInfo.Warnings != "Not available." && drugInfo.Warnings != "Not available" {
			parts = append(parts, fmt.Sprintf("Important Warnings: %s", drugInfo.Warnings))
		}
	} else {
		parts = append(parts, fmt.Sprintf("However, I couldn't retrieve detailed drug information: %s", drugInfo.Error))
	}

	return strings.Join(parts, " ")
}

// combineResults assembles the final answer from the pipeline outputs.
func combineResults(ident medparser.MedicationIdentification, measuredQuality medparser.ImageQuality,
	drugSummary *openfda.DrugSummary, lookupErr error, skipReason string,
	requestID string, elapsed time.Duration) *CombinedResponse {

	identSummary := summarizeIdentification(ident)
	drugInfo := formatDrugInformation(drugSummary, lookupErr, skipReason)

	response := &CombinedResponse{
		Success:         true,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		Identification:  identSummary,
		DrugInformation: drugInfo,
		UserResponse:    buildUserResponse(identSummary, drugInfo),
		ProcessingMetadata: ProcessingMetadata{
			VisionConfidence:  ident.Confidence,
			DrugInfoAvailable: drugInfo.Available,
			ImageQuality:      string(ident.ImageQuality),
		},
		RequestID:      requestID,
		ProcessingTime: elapsed.Seconds(),
	}

	if measuredQuality != medparser.QualityUnknown {
		response.ProcessingMetadata.MeasuredQuality = string(measuredQuality)
	}

	if !ident.IsHighConfidence(warningConfidenceThreshold) {
		response.Warnings = append(response.Warnings,
			"Low confidence identification - consider retaking the photo")
	}
	if !drugInfo.Available {
		response.Warnings = append(response.Warnings,
			"Drug information not available - manual verification recommended")
	}

	return response
}
