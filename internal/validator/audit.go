package validator

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"txguard/internal/model"
)

func recordResult(i int, err error) model.RecordResult {
	return model.RecordResult{Index: i, Valid: err == nil, Rejection: Rejection(err)}
}

// AuditTransactions validates every record independently and returns one
// result per record in input order. A bad record never stops the batch.
func AuditTransactions(records []json.RawMessage) []model.RecordResult {
	out := make([]model.RecordResult, len(records))
	for i, rec := range records {
		out[i] = recordResult(i, ValidateTransactionRecord(rec))
	}
	return out
}

// AuditTransactionsConcurrent is AuditTransactions spread over up to workers
// goroutines. Results are identical to the sequential form. The only error is
// the context's, when it is cancelled before the batch finishes.
func AuditTransactionsConcurrent(ctx context.Context, records []json.RawMessage, workers int) ([]model.RecordResult, error) {
	if workers <= 1 || len(records) < 2 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return AuditTransactions(records), nil
	}

	out := make([]model.RecordResult, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rec := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = recordResult(i, ValidateTransactionRecord(rec))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
