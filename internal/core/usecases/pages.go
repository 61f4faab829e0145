package usecases

import (
	"context"
	"iter"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/core/ports"
)

// Pages lazily walks every result page of a finished job. Each range over
// the sequence starts again from the first page. Iteration stops after the
// first error, which is yielded with an empty page.
func Pages(ctx context.Context, engine ports.QueryEngine, jobID string) iter.Seq2[domain.ResultPage, error] {
	return func(yield func(domain.ResultPage, error) bool) {
		token := ""
		for {
			if err := ctx.Err(); err != nil {
				yield(domain.ResultPage{}, err)
				return
			}
			page, err := engine.Results(ctx, jobID, token)
			if err != nil {
				yield(domain.ResultPage{}, err)
				return
			}
			if !yield(page, nil) {
				return
			}
			if page.NextToken == "" {
				return
			}
			token = page.NextToken
		}
	}
}

// SlicePages adapts in-memory pages to the sequence Aggregate consumes.
func SlicePages(pages ...domain.ResultPage) iter.Seq2[domain.ResultPage, error] {
	return func(yield func(domain.ResultPage, error) bool) {
		for _, p := range pages {
			if !yield(p, nil) {
				return
			}
		}
	}
}
