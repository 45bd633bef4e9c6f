package boardapi

import "fmt"

// SourceUnavailableError is returned when a board fetch exhausted its retry
// budget. Fetched holds the items from pages that completed before the
// failure, so callers whose policy allows partial data can still use them.
type SourceUnavailableError struct {
	BoardID string
	Page    int
	Fetched []RawItem
	Err     error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("boardapi: board %s unavailable (page %d, %d items fetched): %v",
		e.BoardID, e.Page, len(e.Fetched), e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// APIError represents a non-2xx HTTP response from the board endpoint.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("boardapi: HTTP %d: %s", e.StatusCode, e.Body)
}

// GraphQLError represents an error reported inside a 200 response body.
// These are not retried: the query itself is wrong or the board is gone.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("boardapi: graphql: %v", e.Messages)
}
