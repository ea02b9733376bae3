package intent

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zyzzzz-123/TECHIN510-project/app/core/ai"
	"github.com/zyzzzz-123/TECHIN510-project/app/core/store"
)

func TestResolveFiltersDefaultsOnFailure(t *testing.T) {
	cases := []struct {
		name string
		chat ai.ChatFunc
	}{
		{"gateway error", func(ctx context.Context, m []ai.Message, p string, s string) (string, error) {
			return "", errors.New("down")
		}},
		{"plain text reply", func(ctx context.Context, m []ai.Message, p string, s string) (string, error) {
			return "sorry, I cannot do that", nil
		}},
		{"json array reply", func(ctx context.Context, m []ai.Message, p string, s string) (string, error) {
			return `["todo"]`, nil
		}},
	}
	for _, tc := range cases {
		r := NewResolver(tc.chat, nil)
		params := r.ResolveFilters(context.Background(), "show my tasks", "")
		if params != DefaultQueryParams() {
			t.Fatalf("%s: expected defaults, got %+v", tc.name, params)
		}
	}
}

func TestResolveFiltersPrefixesQuery(t *testing.T) {
	fake := ai.ChatFunc(func(ctx context.Context, messages []ai.Message, provider string, systemPrompt string) (string, error) {
		if !strings.HasPrefix(messages[0].Content, "Query: ") {
			t.Fatalf("expected Query: prefix, got %q", messages[0].Content)
		}
		return `{"status": "done", "sort_by": "created_at", "sort_order": "DESC"}`, nil
	})
	r := NewResolver(fake, nil)

	params := r.ResolveFilters(context.Background(), "what did I finish", "")
	if params.Status != "done" {
		t.Fatalf("expected done status, got %q", params.Status)
	}
	if params.Type != "all" || params.DateFilter != "all" {
		t.Fatalf("missing fields not defaulted: %+v", params)
	}
	if params.SortBy != "created_at" || params.SortOrder != "desc" {
		t.Fatalf("sort not normalized: %+v", params)
	}
}

func TestFillDefaultsRejectsUnknownSort(t *testing.T) {
	params := QueryParams{Status: "todo", Type: "goal", DateFilter: "today", SortBy: "priority", SortOrder: "sideways"}
	fillDefaults(&params)
	if params.SortBy != "due_date" || params.SortOrder != "asc" {
		t.Fatalf("unknown sort values not replaced: %+v", params)
	}
	if params.Status != "todo" || params.Type != "goal" || params.DateFilter != "today" {
		t.Fatalf("valid fields were overwritten: %+v", params)
	}
}

func TestFillDefaultsNormalizesSortCasing(t *testing.T) {
	params := QueryParams{SortBy: " Created_At ", SortOrder: " DESC "}
	fillDefaults(&params)
	if params.SortBy != "created_at" {
		t.Fatalf("sort_by not normalized: %q", params.SortBy)
	}
	if params.SortOrder != "desc" {
		t.Fatalf("sort_order not normalized: %q", params.SortOrder)
	}
}

func TestDateRange(t *testing.T) {
	// A Wednesday.
	now := time.Date(2026, 3, 11, 15, 30, 0, 0, time.UTC)

	from, to := dateRange("today", now)
	if from != time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC).Unix() {
		t.Fatalf("today from mismatch: %d", from)
	}
	if to-from != 86400 {
		t.Fatalf("today window should be one day, got %d", to-from)
	}

	from, to = dateRange("this_week", now)
	if from != time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC).Unix() {
		t.Fatalf("week should start Monday: %d", from)
	}
	if to != time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC).Unix() {
		t.Fatalf("week end mismatch: %d", to)
	}

	// Sunday belongs to the week that started the previous Monday.
	sunday := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	from, _ = dateRange("this_week", sunday)
	if from != time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC).Unix() {
		t.Fatalf("sunday week start mismatch: %d", from)
	}

	from, to = dateRange("this_month", now)
	if from != time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Unix() {
		t.Fatalf("month start mismatch: %d", from)
	}
	if to != time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC).Unix() {
		t.Fatalf("month end mismatch: %d", to)
	}

	// December rolls over into January of the next year.
	december := time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC)
	from, to = dateRange("this_month", december)
	if from != time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC).Unix() {
		t.Fatalf("december start mismatch: %d", from)
	}
	if to != time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC).Unix() {
		t.Fatalf("december should roll into january: %d", to)
	}

	from, to = dateRange("all", now)
	if from != 0 || to != 0 {
		t.Fatalf("all should leave the window open: %d %d", from, to)
	}
}

func TestResolverRun(t *testing.T) {
	database, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("init sqlite failed: %v", err)
	}
	defer database.Close()
	ctx := context.Background()

	user, err := store.NewUserStore(database).Create(ctx, "a@example.com", "h")
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	tasks := store.NewTaskStore(database)

	now := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	seed := []store.Task{
		{UserID: user.ID, Text: "due today", Type: "ddl", DueDate: now.Unix()},
		{UserID: user.ID, Text: "due next month", Type: "ddl", DueDate: now.AddDate(0, 1, 0).Unix()},
		{UserID: user.ID, Text: "undated"},
	}
	for _, s := range seed {
		if _, err := tasks.Create(ctx, s); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	r := NewResolver(nil, tasks)
	r.now = func() time.Time { return now }

	got := r.Run(ctx, user.ID, QueryParams{DateFilter: "today"})
	if len(got) != 1 || got[0].Text != "due today" {
		t.Fatalf("today filter mismatch: %+v", got)
	}

	got = r.Run(ctx, user.ID, QueryParams{})
	if len(got) != 3 {
		t.Fatalf("expected all tasks with open filter, got %d", len(got))
	}
}
