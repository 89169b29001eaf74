package batch

import (
	"context"
)

// Result is one buffered submission outcome, matched back to its item by ID
// during the merge.
type Result struct {
	ItemID string
	Err    error
}

// Transport submits one item to the upload endpoint and classifies the
// outcome: nil for success, otherwise an error whose message is shown to the
// admin verbatim beneath the failed item.
type Transport interface {
	Submit(ctx context.Context, item Item) error
}

// Run drives one batch from Pending to a terminal summary.
//
// The sequence is: reject an empty batch, validate every item (all-or-nothing
// gate, no submissions on any failure), mark the whole batch Submitting,
// submit items strictly one at a time in insertion order while buffering
// outcomes, then merge the buffer back in a single transition.
//
// One item's failure never aborts the rest: the loop always runs to
// completion, so a transient failure on item 3 cannot deny items 4..N their
// attempt. The batch is Completed only when every item succeeded.
func Run(ctx context.Context, s *Session, t Transport) (Summary, error) {
	items, err := s.beginRun()
	if err != nil {
		return Summary{}, err
	}

	results := make([]Result, 0, len(items))
	for i := range items {
		results = append(results, Result{
			ItemID: items[i].ID,
			Err:    t.Submit(ctx, items[i]),
		})
	}

	return s.mergeResults(results), nil
}
