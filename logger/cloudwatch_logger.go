package logger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

// CloudWatchLogger ships log lines to a CloudWatch Logs stream. Inside
// Lambda it only mirrors to stdout, since the runtime owns the stream.
type CloudWatchLogger struct {
	client        *cloudwatchlogs.Client
	logGroupName  string
	logStreamName string
	sequenceToken *string
	ctx           context.Context
	isLambda      bool
}

func NewCloudWatchLogger(cfg aws.Config, logGroupName, logStreamName string) (*CloudWatchLogger, error) {
	client := cloudwatchlogs.NewFromConfig(cfg)

	isLambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""

	l := &CloudWatchLogger{
		client:        client,
		logGroupName:  logGroupName,
		logStreamName: logStreamName,
		ctx:           context.Background(),
		isLambda:      isLambda,
	}

	if !isLambda {
		if err := l.ensureLogStream(); err != nil {
			return nil, fmt.Errorf("failed to ensure log stream: %w", err)
		}
	}

	return l, nil
}

func (l *CloudWatchLogger) ensureLogStream() error {
	var alreadyExists *types.ResourceAlreadyExistsException

	_, err := l.client.CreateLogGroup(l.ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: aws.String(l.logGroupName),
	})
	if err != nil && !errors.As(err, &alreadyExists) {
		return err
	}

	_, err = l.client.CreateLogStream(l.ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(l.logGroupName),
		LogStreamName: aws.String(l.logStreamName),
	})
	if err != nil && !errors.As(err, &alreadyExists) {
		return err
	}

	return nil
}

func (l *CloudWatchLogger) WithContext(ctx context.Context) Logger {
	return &CloudWatchLogger{
		client:        l.client,
		logGroupName:  l.logGroupName,
		logStreamName: l.logStreamName,
		sequenceToken: l.sequenceToken,
		ctx:           ctx,
		isLambda:      l.isLambda,
	}
}

func (l *CloudWatchLogger) Debug(message string, fields ...map[string]interface{}) {
	l.log(DEBUG, message, fields...)
}

func (l *CloudWatchLogger) Info(message string, fields ...map[string]interface{}) {
	l.log(INFO, message, fields...)
}

func (l *CloudWatchLogger) Warn(message string, fields ...map[string]interface{}) {
	l.log(WARN, message, fields...)
}

func (l *CloudWatchLogger) Error(message string, fields ...map[string]interface{}) {
	l.log(ERROR, message, fields...)
}

func (l *CloudWatchLogger) log(level LogLevel, message string, fields ...map[string]interface{}) {
	if !shouldLog(level) {
		return
	}

	timestamp := time.Now().UnixMilli()
	logMessage := l.formatMessage(message, fields...)

	log.Printf("[%s] %s", level, logMessage)

	if l.isLambda {
		return
	}

	input := &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(l.logGroupName),
		LogStreamName: aws.String(l.logStreamName),
		LogEvents: []types.InputLogEvent{
			{
				Message:   aws.String(fmt.Sprintf("[%s] %s", level, logMessage)),
				Timestamp: aws.Int64(timestamp),
			},
		},
	}

	if l.sequenceToken != nil {
		input.SequenceToken = l.sequenceToken
	}

	output, err := l.client.PutLogEvents(l.ctx, input)
	if err != nil {
		log.Printf("Failed to send log to CloudWatch: %v", err)
		return
	}

	l.sequenceToken = output.NextSequenceToken
}

func (l *CloudWatchLogger) formatMessage(message string, fields ...map[string]interface{}) string {
	formatted := message
	if requestID := RequestIDFromContext(l.ctx); requestID != "" {
		formatted += fmt.Sprintf(" | request_id=%s", requestID)
	}
	for _, fieldMap := range fields {
		for key, value := range fieldMap {
			formatted += fmt.Sprintf(" | %s=%v", key, value)
		}
	}
	return formatted
}
