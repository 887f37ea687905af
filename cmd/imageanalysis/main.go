// Lambda entry point for the image-analysis tool.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"

	"medagent-tools/aws"
	"medagent-tools/config"
	"medagent-tools/handlers"
	"medagent-tools/imaging"
	"medagent-tools/logger"
	"medagent-tools/openfda"
	"medagent-tools/services"
	"medagent-tools/utils"
)

var handler *handlers.ImageAnalysisHandler

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		log.Fatalf("Failed to load AWS configuration: %v", err)
	}

	logger.Initialize(&logger.StandardLogger{})
	logger.SetLogLevel(logger.ParseLevel(cfg.LogLevel))

	retry := utils.RetryConfigWithAttempts(cfg.RetryAttempts)

	preprocessor := imaging.NewPreprocessor(cfg.MaxImageSize, cfg.MinImageSize)
	vision := aws.NewBedrockVisionClient(awsCfg, cfg.VisionModelId, cfg.MaxTokens, cfg.VisionTimeout)
	drugInfo := services.NewDrugInfoService(
		openfda.NewClient(cfg.OpenFDAEndpoint, cfg.DrugInfoTimeout),
		cfg.DrugInfoCacheTTL, retry)

	service := services.NewImageAnalysisService(preprocessor, vision, drugInfo,
		cfg.AnalysisPrompt, cfg.LowConfidenceThreshold, cfg.HighConfidenceThreshold, retry)

	handler = handlers.NewImageAnalysisHandler(service)
}

func main() {
	lambda.Start(handler.Handle)
}
