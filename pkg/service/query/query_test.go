package query_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"github.com/opsforge-io/ticketd/pkg/service/query"
)

func TestQueryDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/v1/query")
		gt.Value(t, r.Method).Equal(http.MethodPost)

		var payload map[string]any
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		gt.Value(t, payload["request"]).Equal("daily active users last week")

		w.Header().Set("Content-Type", "application/json")
		gt.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"columns": []string{"day", "count"},
			"rows":    [][]any{{"2026-08-17", 120}, {"2026-08-18", 131}},
			"summary": "activity grew day over day",
		}))
	}))
	defer srv.Close()

	client := query.New(srv.URL)
	result := gt.R1(client.Query(context.Background(), "daily active users last week")).NoError(t)
	gt.Array(t, result.Columns).Length(2)
	gt.Array(t, result.Rows).Length(2)
	gt.String(t, result.Summary).Contains("grew")
}

func TestSearchDecodesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/v1/search")

		w.Header().Set("Content-Type", "application/json")
		gt.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "usage dashboard", "snippet": "weekly actives", "score": 0.92},
			},
		}))
	}))
	defer srv.Close()

	client := query.New(srv.URL)
	results := gt.R1(client.Search(context.Background(), "active users", "analytics")).NoError(t)
	gt.Array(t, results).Length(1)
	gt.Value(t, results[0].Title).Equal("usage dashboard")
}

func TestQueryServerErrorIsCapability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := query.New(srv.URL)
	_, err := client.Query(context.Background(), "anything")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrCapability)).True()
}
