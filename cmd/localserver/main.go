// Local development server exposing the three agent tools over HTTP.
// Reads a .env file when present; requires AWS credentials for the
// recovery-plan and image-analysis tools.
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"

	"medagent-tools/aws"
	"medagent-tools/config"
	"medagent-tools/handlers"
	"medagent-tools/imaging"
	"medagent-tools/logger"
	"medagent-tools/openfda"
	"medagent-tools/routing"
	"medagent-tools/services"
	"medagent-tools/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

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

	if logGroup := os.Getenv("CLOUDWATCH_LOG_GROUP"); logGroup != "" {
		cwLogger, err := logger.NewCloudWatchLogger(awsCfg, logGroup, "localserver")
		if err != nil {
			log.Fatalf("Failed to initialize CloudWatch logger: %v", err)
		}
		logger.Initialize(cwLogger)
	} else {
		logger.Initialize(&logger.StandardLogger{})
	}
	logger.SetLogLevel(logger.ParseLevel(cfg.LogLevel))

	retry := utils.RetryConfigWithAttempts(cfg.RetryAttempts)

	drugInfoService := services.NewDrugInfoService(
		openfda.NewClient(cfg.OpenFDAEndpoint, cfg.DrugInfoTimeout),
		cfg.DrugInfoCacheTTL, retry)

	planService := services.NewRecoveryPlanService(
		aws.NewS3PlanStore(awsCfg, cfg.PlanBucket, cfg.PlanKey), retry)

	analysisService := services.NewImageAnalysisService(
		imaging.NewPreprocessor(cfg.MaxImageSize, cfg.MinImageSize),
		aws.NewBedrockVisionClient(awsCfg, cfg.VisionModelId, cfg.MaxTokens, cfg.VisionTimeout),
		drugInfoService,
		cfg.AnalysisPrompt, cfg.LowConfidenceThreshold, cfg.HighConfidenceThreshold, retry)

	router := routing.SetupRoutes(
		handlers.NewDrugInfoHandler(drugInfoService),
		handlers.NewRecoveryPlanHandler(planService),
		handlers.NewImageAnalysisHandler(analysisService),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal(err)
	}
}
