// Lambda entry point for the drug-info tool.
package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"medagent-tools/config"
	"medagent-tools/handlers"
	"medagent-tools/logger"
	"medagent-tools/openfda"
	"medagent-tools/services"
	"medagent-tools/utils"
)

var handler *handlers.DrugInfoHandler

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The Lambda runtime forwards stdout to CloudWatch.
	logger.Initialize(&logger.StandardLogger{})
	logger.SetLogLevel(logger.ParseLevel(cfg.LogLevel))

	client := openfda.NewClient(cfg.OpenFDAEndpoint, cfg.DrugInfoTimeout)
	service := services.NewDrugInfoService(client, cfg.DrugInfoCacheTTL,
		utils.RetryConfigWithAttempts(cfg.RetryAttempts))

	handler = handlers.NewDrugInfoHandler(service)
}

func main() {
	lambda.Start(handler.Handle)
}
