package intent

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/zyzzzz-123/TECHIN510-project/app/core/ai"
	"github.com/zyzzzz-123/TECHIN510-project/app/core/store"
	"github.com/zyzzzz-123/TECHIN510-project/app/pkg/logger"
)

const querySystemPrompt = `Parse the following query and return a JSON object with the query parameters.
The JSON must contain these fields:
- status: todo/done/all
- type: todo/goal/all
- date_filter: today/this_week/this_month/all
- sort_by: due_date/created_at
- sort_order: asc/desc`

type QueryParams struct {
	Status     string `json:"status"`
	Type       string `json:"type"`
	DateFilter string `json:"date_filter"`
	SortBy     string `json:"sort_by"`
	SortOrder  string `json:"sort_order"`
}

func DefaultQueryParams() QueryParams {
	return QueryParams{
		Status:     "all",
		Type:       "all",
		DateFilter: "all",
		SortBy:     "due_date",
		SortOrder:  "asc",
	}
}

// Resolver maps free-text queries to filter parameters and runs them against
// the task store.
type Resolver struct {
	chat  ai.ChatFunc
	tasks *store.TaskStore
	now   func() time.Time
}

func NewResolver(chat ai.ChatFunc, tasks *store.TaskStore) *Resolver {
	return &Resolver{chat: chat, tasks: tasks, now: time.Now}
}

// ResolveFilters asks the gateway to extract filter parameters from the query
// text. Any failure yields the fixed defaults.
func (r *Resolver) ResolveFilters(ctx context.Context, queryText string, provider string) QueryParams {
	reply, err := r.chat(ctx, []ai.Message{{Role: "user", Content: "Query: " + queryText}}, provider, querySystemPrompt)
	if err != nil {
		logger.Warn("Query filter resolution failed, using defaults: %v", err)
		return DefaultQueryParams()
	}

	reply = strings.TrimSpace(reply)
	if !gjson.Valid(reply) || !gjson.Parse(reply).IsObject() {
		logger.Warn("Failed to parse query parameters from reply: %s", reply)
		return DefaultQueryParams()
	}

	params := DefaultQueryParams()
	if err := json.Unmarshal([]byte(reply), &params); err != nil {
		return DefaultQueryParams()
	}
	fillDefaults(&params)
	return params
}

// Run executes the query scoped to the owner. Errors degrade to an empty
// result list rather than propagating.
func (r *Resolver) Run(ctx context.Context, ownerID int64, params QueryParams) []store.Task {
	fillDefaults(&params)
	filter := store.QueryFilter{
		Status:    params.Status,
		Type:      params.Type,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
	}
	filter.DueFrom, filter.DueTo = dateRange(params.DateFilter, r.now())

	tasks, err := r.tasks.Query(ctx, ownerID, filter)
	if err != nil {
		logger.Error("Task query failed: %v", err)
		return []store.Task{}
	}
	return tasks
}

func fillDefaults(params *QueryParams) {
	defaults := DefaultQueryParams()
	if strings.TrimSpace(params.Status) == "" {
		params.Status = defaults.Status
	}
	if strings.TrimSpace(params.Type) == "" {
		params.Type = defaults.Type
	}
	if strings.TrimSpace(params.DateFilter) == "" {
		params.DateFilter = defaults.DateFilter
	}
	params.SortBy = strings.ToLower(strings.TrimSpace(params.SortBy))
	if params.SortBy != "created_at" {
		params.SortBy = defaults.SortBy
	}
	params.SortOrder = strings.ToLower(strings.TrimSpace(params.SortOrder))
	if params.SortOrder != "desc" {
		params.SortOrder = defaults.SortOrder
	}
}

// dateRange returns the half-open [from, to) due-date window for a filter, or
// zeros when no window applies. Weeks start on Monday; this_month rolls over
// December into January of the next year.
func dateRange(filter string, now time.Time) (int64, int64) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch filter {
	case "today":
		return midnight.Unix(), midnight.AddDate(0, 0, 1).Unix()
	case "this_week":
		offset := (int(midnight.Weekday()) + 6) % 7
		monday := midnight.AddDate(0, 0, -offset)
		return monday.Unix(), monday.AddDate(0, 0, 7).Unix()
	case "this_month":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		var next time.Time
		if now.Month() == time.December {
			next = time.Date(now.Year()+1, time.January, 1, 0, 0, 0, 0, now.Location())
		} else {
			next = time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
		}
		return first.Unix(), next.Unix()
	default:
		return 0, 0
	}
}
