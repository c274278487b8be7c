package bigquery

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// ErrRunNotFound reports a lookup for an unknown run id.
var ErrRunNotFound = errors.New("pipeline run not found")

// ListRuns returns the most recent pipeline runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*PipelineRunRow, error) {
	if limit < 1 {
		limit = 20
	}
	q := s.client.Query(fmt.Sprintf(`
		SELECT *
		FROM %s
		ORDER BY started_ts DESC
		LIMIT @limit
	`, s.qualified(runsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: int64(limit)},
	}

	return readRows[PipelineRunRow](ctx, q, "ListRuns")
}

// GetRun fetches a single run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (*PipelineRunRow, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT *
		FROM %s
		WHERE run_id = @run_id
		LIMIT 1
	`, s.qualified(runsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
	}

	rows, err := readRows[PipelineRunRow](ctx, q, "GetRun")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("GetRun: %s: %w", runID, ErrRunNotFound)
	}
	return rows[0], nil
}
