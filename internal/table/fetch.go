package table

import (
	"context"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// Request is a remote refetch issued by SetDateRange.
type Request struct {
	Seq   uint64
	From  string // YYYY-MM-DD
	To    string // YYYY-MM-DD
	Mode  string
	Range DateRange

	ctx   context.Context
	fetch Fetcher
}

// FetchResult carries a fetch outcome back to ApplyFetchResult.
type FetchResult struct {
	Seq     uint64
	Records []models.Record
	Err     error
}

// Run performs the request. It only touches the request itself, so it can
// run on any goroutine while the table keeps serving the UI.
func (r *Request) Run() FetchResult {
	records, err := r.fetch(r.ctx, r.From, r.To, r.Mode)
	if err == nil {
		err = r.ctx.Err()
	}
	return FetchResult{Seq: r.Seq, Records: records, Err: err}
}
