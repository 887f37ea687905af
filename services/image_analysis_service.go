package services

import (
	"context"
	"time"

	"medagent-tools/aws"
	"medagent-tools/imaging"
	"medagent-tools/logger"
	"medagent-tools/medparser"
	"medagent-tools/metrics"
	"medagent-tools/openfda"
	"medagent-tools/utils"
)

// ImagePreparer abstracts image preprocessing for testing.
type ImagePreparer interface {
	Prepare(data string) (imaging.PreparedImage, error)
}

// DrugInfoProvider abstracts the drug-info service for testing.
type DrugInfoProvider interface {
	GetDrugInfo(ctx context.Context, drugName string) (*openfda.DrugSummary, error)
}

const imageAnalysisTool = "image-analysis"

// ImageAnalysisService runs the full identification pipeline: preprocess
// the photo, ask the vision model what it sees, parse the free-text answer
// into a structured identification, enrich with drug information and
// synthesize the user-facing response.
type ImageAnalysisService struct {
	preparer      ImagePreparer
	vision        aws.VisionClient
	drugInfo      DrugInfoProvider
	prompt        string
	lowThreshold  float64
	highThreshold float64
	retry         utils.RetryConfig
	log           logger.Logger
}

func NewImageAnalysisService(preparer ImagePreparer, vision aws.VisionClient, drugInfo DrugInfoProvider,
	prompt string, lowThreshold, highThreshold float64, retry utils.RetryConfig) *ImageAnalysisService {
	return &ImageAnalysisService{
		preparer:      preparer,
		vision:        vision,
		drugInfo:      drugInfo,
		prompt:        prompt,
		lowThreshold:  lowThreshold,
		highThreshold: highThreshold,
		retry:         retry,
		log:           logger.GetLogger(),
	}
}

// Analyze identifies the medication in a base64 photo. Drug information is
// looked up only when a name was extracted and the confidence clears the
// low threshold; lookup failures degrade the answer instead of failing it.
func (s *ImageAnalysisService) Analyze(ctx context.Context, imageData, prompt string) (*CombinedResponse, error) {
	start := time.Now()

	requestID := logger.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = logger.NewRequestID()
		ctx = logger.WithRequestID(ctx, requestID)
	}

	prepared, err := s.stagePreprocess(imageData)
	if err != nil {
		return nil, err
	}

	if prompt == "" {
		prompt = s.prompt
	}

	rawResponse, err := s.stageVision(ctx, prompt, prepared)
	if err != nil {
		return nil, err
	}

	ident := medparser.Parse(rawResponse)
	metrics.VisionConfidence.Observe(ident.Confidence)

	s.log.WithContext(ctx).Info("Parsed medication identification", map[string]interface{}{
		"medication_name": ident.MedicationName,
		"confidence":      ident.Confidence,
		"high_confidence": ident.IsHighConfidence(s.highThreshold),
		"image_quality":   string(ident.ImageQuality),
	})

	drugSummary, skipReason, lookupErr := s.stageDrugInfo(ctx, ident)

	return combineResults(ident, prepared.Quality, drugSummary, lookupErr, skipReason,
		requestID, time.Since(start)), nil
}

func (s *ImageAnalysisService) stagePreprocess(imageData string) (imaging.PreparedImage, error) {
	defer observeStage(imageAnalysisTool, "preprocess")()

	prepared, err := s.preparer.Prepare(imageData)
	if err != nil {
		return imaging.PreparedImage{}, err
	}

	metrics.ImagePayloadBytes.Observe(float64(imaging.EstimatedByteSize(prepared.Base64)))
	return prepared, nil
}

func (s *ImageAnalysisService) stageVision(ctx context.Context, prompt string, prepared imaging.PreparedImage) (string, error) {
	defer observeStage(imageAnalysisTool, "vision")()

	var rawResponse string
	err := utils.RetryWithBackoff(ctx, s.retry, func() error {
		text, visionErr := s.vision.AnalyzeImage(ctx, prompt, prepared.Base64, prepared.MediaType)
		if visionErr != nil {
			return visionErr
		}
		rawResponse = text
		return nil
	})
	return rawResponse, err
}

func (s *ImageAnalysisService) stageDrugInfo(ctx context.Context, ident medparser.MedicationIdentification) (*openfda.DrugSummary, string, error) {
	if !ident.HasValidIdentification() {
		return nil, "No medication name could be identified from the image", nil
	}
	if ident.Confidence <= s.lowThreshold {
		return nil, "Drug information lookup skipped due to low identification confidence", nil
	}

	defer observeStage(imageAnalysisTool, "drug_info")()

	summary, err := s.drugInfo.GetDrugInfo(ctx, ident.MedicationName)
	if err != nil {
		s.log.WithContext(ctx).Warn("Drug info lookup failed", map[string]interface{}{
			"medication_name": ident.MedicationName,
			"error":           err.Error(),
		})
		return nil, "", err
	}
	return summary, "", nil
}

func observeStage(tool, stage string) func() {
	start := time.Now()
	return func() {
		metrics.ToolStageDuration.WithLabelValues(tool, stage).Observe(time.Since(start).Seconds())
	}
}
