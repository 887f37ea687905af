// Lambda entry point for the recovery-plan tool.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"

	"medagent-tools/aws"
	"medagent-tools/config"
	"medagent-tools/handlers"
	"medagent-tools/logger"
	"medagent-tools/services"
	"medagent-tools/utils"
)

var handler *handlers.RecoveryPlanHandler

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.PlanBucket == "" {
		log.Fatalf("S3_BUCKET_NAME environment variable is not set")
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		log.Fatalf("Failed to load AWS configuration: %v", err)
	}

	logger.Initialize(&logger.StandardLogger{})
	logger.SetLogLevel(logger.ParseLevel(cfg.LogLevel))

	store := aws.NewS3PlanStore(awsCfg, cfg.PlanBucket, cfg.PlanKey)
	service := services.NewRecoveryPlanService(store,
		utils.RetryConfigWithAttempts(cfg.RetryAttempts))

	handler = handlers.NewRecoveryPlanHandler(service)
}

func main() {
	lambda.Start(handler.Handle)
}
