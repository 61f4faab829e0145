// Package athena runs the forecast query on Amazon Athena.
package athena

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/google/uuid"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
)

// API is the subset of the Athena client used here.
type API interface {
	StartQueryExecution(ctx context.Context, in *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, in *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, in *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

// headerCell is the first cell of the column header row Athena returns at
// the top of the first result page.
const headerCell = "description"

// Client implements ports.QueryEngine.
type Client struct {
	api API
}

// New wraps an Athena API client.
func New(api API) *Client {
	return &Client{api: api}
}

// NewFromConfig builds a Client from an AWS configuration.
func NewFromConfig(cfg aws.Config) *Client {
	return New(athena.NewFromConfig(cfg))
}

// Submit starts a query execution and returns its id. A non-empty
// requestToken is sent as the client request token, so Athena answers a
// retried submission with the execution it already started.
func (c *Client) Submit(ctx context.Context, query, database, outputLocation, requestToken string) (string, error) {
	in := &athena.StartQueryExecutionInput{
		QueryString:           aws.String(query),
		QueryExecutionContext: &types.QueryExecutionContext{Database: aws.String(database)},
		ResultConfiguration:   &types.ResultConfiguration{OutputLocation: aws.String(outputLocation)},
	}
	if requestToken != "" {
		in.ClientRequestToken = aws.String(ClientRequestToken(requestToken))
	}
	out, err := c.api.StartQueryExecution(ctx, in)
	if err != nil {
		return "", fmt.Errorf("athena start query: %w", err)
	}
	id := aws.ToString(out.QueryExecutionId)
	if id == "" {
		return "", fmt.Errorf("athena start query: empty execution id")
	}
	return id, nil
}

// Status returns the execution state. CANCELLED is reported as FAILED; any
// other state Athena adds later is passed through verbatim.
func (c *Client) Status(ctx context.Context, jobID string) (domain.JobStatus, error) {
	out, err := c.api.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
		QueryExecutionId: aws.String(jobID),
	})
	if err != nil {
		return "", fmt.Errorf("athena get query %s: %w", jobID, err)
	}
	if out.QueryExecution == nil || out.QueryExecution.Status == nil {
		return "", fmt.Errorf("athena get query %s: missing status", jobID)
	}
	return mapState(out.QueryExecution.Status.State), nil
}

// ClientRequestToken derives Athena's 32-128 character idempotency token
// from an arbitrary caller token.
func ClientRequestToken(token string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(token)).String()
}

func mapState(s types.QueryExecutionState) domain.JobStatus {
	switch s {
	case types.QueryExecutionStateQueued:
		return domain.JobStatusQueued
	case types.QueryExecutionStateRunning:
		return domain.JobStatusRunning
	case types.QueryExecutionStateSucceeded:
		return domain.JobStatusSucceeded
	case types.QueryExecutionStateFailed, types.QueryExecutionStateCancelled:
		return domain.JobStatusFailed
	default:
		return domain.JobStatus(s)
	}
}

// Results fetches one page of rows.
func (c *Client) Results(ctx context.Context, jobID, token string) (domain.ResultPage, error) {
	in := &athena.GetQueryResultsInput{QueryExecutionId: aws.String(jobID)}
	if token != "" {
		in.NextToken = aws.String(token)
	}
	out, err := c.api.GetQueryResults(ctx, in)
	if err != nil {
		return domain.ResultPage{}, fmt.Errorf("athena get results %s: %w", jobID, err)
	}

	page := domain.ResultPage{NextToken: aws.ToString(out.NextToken)}
	if out.ResultSet == nil {
		return page, nil
	}
	for i, r := range out.ResultSet.Rows {
		row, skip, err := parseRow(r)
		if err != nil {
			return domain.ResultPage{}, fmt.Errorf("job %s row %d: %w", jobID, i, err)
		}
		if !skip {
			page.Rows = append(page.Rows, row)
		}
	}
	return page, nil
}

// parseRow decodes the five columns description, forecast_time, latitudes,
// longitudes and vals. skip is true for the header row.
func parseRow(r types.Row) (domain.ResultRow, bool, error) {
	if len(r.Data) > 0 && aws.ToString(r.Data[0].VarCharValue) == headerCell {
		return domain.ResultRow{}, true, nil
	}
	if len(r.Data) != 5 {
		return domain.ResultRow{}, false, fmt.Errorf("%w: expected 5 columns, got %d", domain.ErrMalformedRow, len(r.Data))
	}

	row := domain.ResultRow{
		Description: aws.ToString(r.Data[0].VarCharValue),
		Timestep:    aws.ToString(r.Data[1].VarCharValue),
	}
	cols := []*[]float64{&row.Latitudes, &row.Longitudes, &row.Values}
	for i, dst := range cols {
		if err := decodeArray(r.Data[i+2], dst); err != nil {
			return domain.ResultRow{}, false, err
		}
	}
	return row, false, nil
}

// decodeArray parses an array cell such as "[42.1, 42.2]".
func decodeArray(d types.Datum, dst *[]float64) error {
	raw := aws.ToString(d.VarCharValue)
	if raw == "" {
		*dst = nil
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w: array cell %q: %v", domain.ErrMalformedRow, truncate(raw, 40), err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
