package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

//go:embed analysis_prompt.txt
var defaultAnalysisPrompt string

type Config struct {
	AWSRegion string

	// Vision model settings
	VisionModelId string
	MaxTokens     int
	VisionTimeout time.Duration

	// Image processing bounds
	MaxImageSize int
	MinImageSize int

	// Confidence thresholds for the identification pipeline
	HighConfidenceThreshold float64
	LowConfidenceThreshold  float64

	// openFDA drug label lookup
	OpenFDAEndpoint  string
	DrugInfoTimeout  time.Duration
	DrugInfoCacheTTL time.Duration

	// Recovery plan document location
	PlanBucket string
	PlanKey    string

	RetryAttempts  int
	AnalysisPrompt string
	LogLevel       string
}

func LoadConfig() (*Config, error) {
	region := getEnv("BEDROCK_REGION", "")
	if region == "" {
		region = getEnv("AWS_REGION", "us-east-1")
	}

	config := &Config{
		AWSRegion:               region,
		VisionModelId:           getEnv("BEDROCK_MODEL_ID", "meta.llama3-2-11b-instruct-v1:0"),
		MaxTokens:               getEnvAsInt("MAX_TOKENS", 1000),
		VisionTimeout:           getEnvAsDuration("VISION_TIMEOUT", 30*time.Second),
		MaxImageSize:            getEnvAsInt("MAX_IMAGE_SIZE", 10*1024*1024),
		MinImageSize:            getEnvAsInt("MIN_IMAGE_SIZE", 100),
		HighConfidenceThreshold: getEnvAsFloat("HIGH_CONFIDENCE_THRESHOLD", 0.8),
		LowConfidenceThreshold:  getEnvAsFloat("LOW_CONFIDENCE_THRESHOLD", 0.3),
		OpenFDAEndpoint:         getEnv("OPENFDA_ENDPOINT", "https://api.fda.gov/drug/label.json"),
		DrugInfoTimeout:         getEnvAsDuration("DRUG_INFO_TIMEOUT", 10*time.Second),
		DrugInfoCacheTTL:        getEnvAsDuration("DRUG_INFO_CACHE_TTL", 15*time.Minute),
		PlanBucket:              getEnv("S3_BUCKET_NAME", ""),
		PlanKey:                 getEnv("RECOVERY_PLAN_KEY", "knee_arthroscopy_protocol.json"),
		RetryAttempts:           getEnvAsInt("RETRY_ATTEMPTS", 3),
		AnalysisPrompt:          strings.TrimSpace(defaultAnalysisPrompt),
		LogLevel:                getEnv("LOG_LEVEL", "INFO"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.AWSRegion == "" {
		return fmt.Errorf("AWS_REGION is required")
	}
	if c.VisionModelId == "" {
		return fmt.Errorf("BEDROCK_MODEL_ID is required")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("MAX_TOKENS must be positive")
	}
	if c.MaxImageSize <= 0 {
		return fmt.Errorf("MAX_IMAGE_SIZE must be positive")
	}
	if c.MinImageSize < 0 || c.MinImageSize >= c.MaxImageSize {
		return fmt.Errorf("MIN_IMAGE_SIZE must be non-negative and below MAX_IMAGE_SIZE")
	}
	if c.HighConfidenceThreshold < 0 || c.HighConfidenceThreshold > 1 {
		return fmt.Errorf("HIGH_CONFIDENCE_THRESHOLD must be within [0,1]")
	}
	if c.LowConfidenceThreshold < 0 || c.LowConfidenceThreshold > c.HighConfidenceThreshold {
		return fmt.Errorf("LOW_CONFIDENCE_THRESHOLD must be within [0,HIGH_CONFIDENCE_THRESHOLD]")
	}
	if c.OpenFDAEndpoint == "" {
		return fmt.Errorf("OPENFDA_ENDPOINT is required")
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("RETRY_ATTEMPTS must be non-negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration reads whole seconds, matching how the deployment
// templates set the timeout variables.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	seconds, err := strconv.Atoi(valueStr)
	if err != nil || seconds < 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
