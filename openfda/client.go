// Package openfda queries the openFDA drug label API for consumer-facing
// medication information.
package openfda

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"medagent-tools/errors"
	"medagent-tools/logger"
)

// ErrNotFound indicates the API has no label on record for the drug.
var ErrNotFound = stderrors.New("no drug label found")

// maxWarningsLength bounds the warnings text so the agent response stays
// readable.
const maxWarningsLength = 500

// DrugSummary is the subset of an openFDA drug label shown to patients.
type DrugSummary struct {
	BrandName           string `json:"brand_name"`
	GenericName         string `json:"generic_name"`
	Purpose             string `json:"purpose"`
	Warnings            string `json:"warnings"`
	IndicationsAndUsage string `json:"indications_and_usage"`
}

type labelResponse struct {
	Results []labelResult `json:"results"`
}

type labelResult struct {
	Purpose             []string `json:"purpose"`
	Warnings            []string `json:"warnings"`
	IndicationsAndUsage []string `json:"indications_and_usage"`
	OpenFDA             struct {
		BrandName   []string `json:"brand_name"`
		GenericName []string `json:"generic_name"`
	} `json:"openfda"`
}

// Client talks to the openFDA drug label endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        logger.Logger
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: logger.GetLogger(),
	}
}

// Lookup fetches the label for a drug by brand or generic name. It returns
// a DrugInfoError wrapping ErrNotFound when the API has no match.
func (c *Client) Lookup(ctx context.Context, drugName string) (*DrugSummary, error) {
	query := url.Values{}
	query.Set("search", fmt.Sprintf(`(openfda.brand_name:%q OR openfda.generic_name:%q)`, drugName, drugName))
	query.Set("limit", "1")

	requestURL := c.endpoint + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errors.NewDrugInfoError("failed to build openFDA request", err)
	}

	c.log.Debug("Querying openFDA", map[string]interface{}{
		"drug_name": drugName,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAWSServiceError("openFDA request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NewDrugInfoError(
			fmt.Sprintf("no drug information found for %q", drugName), ErrNotFound)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.NewThrottlingError("openFDA rate limit exceeded", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAWSServiceError(
			fmt.Sprintf("openFDA returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewDrugInfoError("failed to read openFDA response", err)
	}

	var parsed labelResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.NewDrugInfoError("failed to parse openFDA response", err)
	}

	if len(parsed.Results) == 0 {
		return nil, errors.NewDrugInfoError(
			fmt.Sprintf("no drug information found for %q", drugName), ErrNotFound)
	}

	return summarize(drugName, parsed.Results[0]), nil
}

func summarize(drugName string, result labelResult) *DrugSummary {
	summary := &DrugSummary{
		BrandName:           firstOr(result.OpenFDA.BrandName, drugName),
		GenericName:         firstOr(result.OpenFDA.GenericName, "N/A"),
		Purpose:             firstOr(result.Purpose, "Not available."),
		Warnings:            firstOr(result.Warnings, "Not available."),
		IndicationsAndUsage: firstOr(result.IndicationsAndUsage, "Not available."),
	}

	if len(summary.Warnings) > maxWarningsLength {
		summary.Warnings = summary.Warnings[:maxWarningsLength] + "..."
	}

	return summary
}

func firstOr(values []string, fallback string) string {
	if len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return fallback
}
