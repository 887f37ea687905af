package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"medagent-tools/errors"
	"medagent-tools/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type PlanStore interface {
	FetchProtocol(ctx context.Context) (*RecoveryProtocol, error)
}

// RecoveryProtocol is the surgery recovery document stored in S3.
type RecoveryProtocol struct {
	SurgeryType string        `json:"surgery_type,omitempty"`
	Timeline    []ProtocolDay `json:"timeline"`
}

// ProtocolDay holds the tasks for a single post-operative day.
type ProtocolDay struct {
	Day   int      `json:"day"`
	Tasks TaskList `json:"tasks"`
}

// TaskList accepts either a single task string or an array of tasks, both
// of which appear in protocol documents.
type TaskList []string

func (t *TaskList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = TaskList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*t = TaskList(many)
	return nil
}

func (t TaskList) String() string {
	return strings.Join(t, " ")
}

// S3PlanStore fetches recovery protocol documents from an S3 bucket.
type S3PlanStore struct {
	client *s3.Client
	bucket string
	key    string
	log    logger.Logger
}

func NewS3PlanStore(cfg aws.Config, bucket, key string) *S3PlanStore {
	return &S3PlanStore{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		key:    key,
		log:    logger.GetLogger(),
	}
}

func (s *S3PlanStore) FetchProtocol(ctx context.Context) (*RecoveryProtocol, error) {
	s.log.Debug("Fetching recovery protocol", map[string]interface{}{
		"bucket": s.bucket,
		"key":    s.key,
	})

	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, s.handleAWSError(err)
	}
	defer output.Body.Close()

	content, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, errors.NewPlanStoreError("failed to read protocol document", err)
	}

	var protocol RecoveryProtocol
	if err := json.Unmarshal(content, &protocol); err != nil {
		return nil, errors.NewPlanStoreError("failed to parse protocol document", err)
	}

	return &protocol, nil
}

func (s *S3PlanStore) handleAWSError(err error) error {
	errMsg := err.Error()

	if strings.Contains(errMsg, "NoSuchKey") || strings.Contains(errMsg, "NoSuchBucket") {
		return errors.NewPlanStoreError(
			fmt.Sprintf("protocol document s3://%s/%s not found", s.bucket, s.key), err)
	}

	if strings.Contains(errMsg, "AccessDenied") {
		return errors.NewAWSServiceError("access denied reading protocol document", err)
	}

	if strings.Contains(errMsg, "SlowDown") || strings.Contains(errMsg, "ThrottlingException") {
		return errors.NewThrottlingError("S3 request throttled", err)
	}

	return errors.NewPlanStoreError("failed to fetch protocol document", err)
}
