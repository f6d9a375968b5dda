package interfaces

import "context"

// QueryResult is the structured answer to a natural-language query
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Summary string   `json:"summary,omitempty"`
}

// SearchResult is one ranked hit from the query service's search API
type SearchResult struct {
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// QueryClient is the analytical query service consumed by the data_query
// handler
type QueryClient interface {
	Query(ctx context.Context, request string) (*QueryResult, error)
	Search(ctx context.Context, query, searchContext string) ([]SearchResult, error)
}
