package handler

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

// queryServiceModel labels data_query results, which never consume
// completion tokens
const queryServiceModel = "query-service"

func (r *Registry) dataQuery(ctx context.Context, ticket *model.Ticket) (*Result, error) {
	queryRequest, err := requireString(ticket.TaskData, "query_request", types.TaskKindDataQuery)
	if err != nil {
		return nil, err
	}

	if r.caps.Query == nil {
		return nil, goerr.Wrap(types.ErrCapability, "query service not configured")
	}

	queryResult, err := r.caps.Query.Query(ctx, queryRequest)
	if err != nil {
		return nil, goerr.Wrap(err, "query execution failed", goerr.V("query_request", queryRequest))
	}

	data := map[string]any{
		"query_request": queryRequest,
		"query_result":  queryResult,
		"tokens_used":   0,
		"model_used":    queryServiceModel,
	}

	// Optional companion search over the same service
	if searchQuery := stringField(ticket.TaskData, "search_query"); searchQuery != "" {
		searchResults, err := r.caps.Query.Search(ctx, searchQuery, stringField(ticket.TaskData, "search_context"))
		if err != nil {
			return nil, goerr.Wrap(err, "search failed", goerr.V("search_query", searchQuery))
		}
		data["search_query"] = searchQuery
		data["search_results"] = searchResults
	}

	return &Result{
		Data:      data,
		ModelUsed: queryServiceModel,
	}, nil
}
