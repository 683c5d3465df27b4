package sampler

import (
	"context"
	"encoding/json"

	"twsampler/pkg/period"
	"twsampler/pkg/twitter"
)

// SearchClient is the remote search collaborator. Implementations must
// be safe to call repeatedly with the same window: the call is a read
// and the loop retries it until it succeeds.
type SearchClient interface {
	Search(ctx context.Context, params twitter.SearchParams, w period.Window) (*twitter.SearchResult, error)
}

// ResponseStore persists one response per window and knows which windows
// prior runs already collected.
type ResponseStore interface {
	Has(w period.Window) bool
	Persist(w period.Window, raw json.RawMessage) error
}
