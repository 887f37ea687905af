// Package services holds the tool business logic between the Lambda
// handlers and the downstream clients.
package services

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"medagent-tools/errors"
	"medagent-tools/logger"
	"medagent-tools/openfda"
	"medagent-tools/utils"
)

// DrugLookup abstracts the openFDA client so services can be tested
// against mocks.
type DrugLookup interface {
	Lookup(ctx context.Context, drugName string) (*openfda.DrugSummary, error)
}

// DrugInfoService validates drug name requests, caches label lookups and
// retries transient failures.
type DrugInfoService struct {
	client DrugLookup
	cache  *gocache.Cache
	retry  utils.RetryConfig
	log    logger.Logger
}

func NewDrugInfoService(client DrugLookup, cacheTTL time.Duration, retry utils.RetryConfig) *DrugInfoService {
	return &DrugInfoService{
		client: client,
		cache:  gocache.New(cacheTTL, 2*cacheTTL),
		retry:  retry,
		log:    logger.GetLogger(),
	}
}

// GetDrugInfo returns the label summary for a drug name, serving repeat
// lookups from the in-memory cache.
func (s *DrugInfoService) GetDrugInfo(ctx context.Context, drugName string) (*openfda.DrugSummary, error) {
	name := strings.TrimSpace(drugName)
	if len(name) < 2 {
		return nil, errors.NewValidationError("drug_name must be at least 2 characters")
	}

	cacheKey := strings.ToLower(name)
	if cached, found := s.cache.Get(cacheKey); found {
		s.log.Debug("Drug info cache hit", map[string]interface{}{
			"drug_name": name,
		})
		return cached.(*openfda.DrugSummary), nil
	}

	var summary *openfda.DrugSummary
	err := utils.RetryWithBackoff(ctx, s.retry, func() error {
		result, lookupErr := s.client.Lookup(ctx, name)
		if lookupErr != nil {
			return lookupErr
		}
		summary = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(cacheKey, summary, gocache.DefaultExpiration)
	return summary, nil
}
