package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"tempo/internal/core"
	"tempo/internal/store"
	"tempo/internal/store/memory"
)

func TestSummarizeAcrossCollections(t *testing.T) {
	mem := memory.New()
	entities := NewEntities(mem, nil, testLogger())
	entities.newID = seqIDs("id")
	svc := NewSummary(mem, testLogger())
	ctx := context.Background()

	client, _ := entities.CreateClient(ctx, "alice@example.com", "Acme")
	project, _ := entities.CreateProject(ctx, "alice@example.com", "Site", 60)
	task, _ := entities.CreateTask(ctx, "alice@example.com", "Build", project.ID, client.ID)

	for _, d := range []struct {
		day      int
		duration int64
	}{
		{10, 1800},
		{11, 3600},
	} {
		start := time.Date(2024, 3, d.day, 9, 0, 0, 0, time.UTC)
		end := start.Add(time.Duration(d.duration) * time.Second)
		if _, err := entities.CreateEntry(ctx, "alice@example.com", NewEntry{
			TaskID: task.ID, StartTime: start, EndTime: &end, Duration: d.duration,
		}); err != nil {
			t.Fatalf("create entry: %v", err)
		}
	}

	summary, err := svc.Summarize(ctx, "alice@example.com", core.Filter{})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	if summary.TotalTime != 5400 {
		t.Errorf("totalTime = %d, want 5400", summary.TotalTime)
	}
	if summary.TotalEarnings != 90 {
		t.Errorf("totalEarnings = %v, want 90", summary.TotalEarnings)
	}
	if summary.TaskCount != 1 {
		t.Errorf("taskCount = %d, want 1", summary.TaskCount)
	}
	if len(summary.Projects) != 1 || summary.Projects[0].Earnings != 90 {
		t.Errorf("projects = %+v", summary.Projects)
	}
	if len(summary.Clients) != 1 || summary.Clients[0].TotalTime != 5400 {
		t.Errorf("clients = %+v", summary.Clients)
	}
	if len(summary.Series) != 2 || summary.Series[0].Date != "2024-03-10" {
		t.Errorf("series = %+v", summary.Series)
	}
}

func TestSummarizeEmptyOwner(t *testing.T) {
	svc := NewSummary(memory.New(), testLogger())

	summary, err := svc.Summarize(context.Background(), "nobody@example.com", core.Filter{})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.TotalTime != 0 || summary.TotalEarnings != 0 || summary.TaskCount != 0 {
		t.Errorf("non-zero summary for empty owner: %+v", summary)
	}
	if len(summary.Projects) != 0 || len(summary.Clients) != 0 || len(summary.Series) != 0 {
		t.Errorf("non-empty rows for empty owner: %+v", summary)
	}
}

func TestSummarizeDateFilter(t *testing.T) {
	mem := memory.New()
	entities := NewEntities(mem, nil, testLogger())
	entities.newID = seqIDs("id")
	svc := NewSummary(mem, testLogger())
	ctx := context.Background()

	project, _ := entities.CreateProject(ctx, "alice@example.com", "Site", 100)
	task, _ := entities.CreateTask(ctx, "alice@example.com", "Build", project.ID, "")

	for _, day := range []int{10, 11, 12} {
		start := time.Date(2024, 3, day, 9, 0, 0, 0, time.UTC)
		end := start.Add(time.Hour)
		if _, err := entities.CreateEntry(ctx, "alice@example.com", NewEntry{
			TaskID: task.ID, StartTime: start, EndTime: &end, Duration: 3600,
		}); err != nil {
			t.Fatalf("create entry: %v", err)
		}
	}

	summary, err := svc.Summarize(ctx, "alice@example.com", core.Filter{
		StartDate: "2024-03-11",
		EndDate:   "2024-03-11",
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.TotalTime != 3600 {
		t.Errorf("totalTime = %d, want 3600", summary.TotalTime)
	}
	if summary.TotalEarnings != 100 {
		t.Errorf("totalEarnings = %v, want 100", summary.TotalEarnings)
	}
}

func TestSummarizeStoreError(t *testing.T) {
	svc := NewSummary(failingStore{}, testLogger())

	if _, err := svc.Summarize(context.Background(), "alice@example.com", core.Filter{}); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
