package twitter

import "encoding/json"

// SearchParams are the fixed-per-run parameters of a search request.
// The window bounds are supplied per call.
type SearchParams struct {
	Query       string
	Expansions  string
	TweetFields string
	PlaceFields string
	UserFields  string
	MediaFields string
	MaxResults  int
}

// DefaultSearchParams returns search parameters with the standard field
// selections for the given query.
func DefaultSearchParams(query string, maxResults int) SearchParams {
	return SearchParams{
		Query:       query,
		Expansions:  DefaultExpansions,
		TweetFields: DefaultTweetFields,
		PlaceFields: DefaultPlaceFields,
		UserFields:  DefaultUserFields,
		MediaFields: DefaultMediaFields,
		MaxResults:  maxResults,
	}
}

// Meta is the summary block of a search response.
type Meta struct {
	ResultCount int    `json:"result_count"`
	NewestID    string `json:"newest_id,omitempty"`
	OldestID    string `json:"oldest_id,omitempty"`
	NextToken   string `json:"next_token,omitempty"`
}

// SearchResult holds one search response. Raw is the unmodified body,
// persisted opaquely; Meta is parsed out of it for logging only.
type SearchResult struct {
	Raw  json.RawMessage
	Meta Meta
}
