package core

import (
	"math"
	"testing"
	"time"
)

func closedEntry(id, taskID, date string, duration int64) TimeEntry {
	start, _ := time.Parse("2006-01-02", date)
	end := start.Add(time.Duration(duration) * time.Second)
	return TimeEntry{
		ID:        id,
		TaskID:    taskID,
		StartTime: start,
		EndTime:   &end,
		Duration:  duration,
		Date:      date,
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil, nil, nil, Filter{})
	if s.TotalTime != 0 || s.TotalEarnings != 0 {
		t.Fatalf("empty summary: time=%d earnings=%f", s.TotalTime, s.TotalEarnings)
	}
	if len(s.Projects) != 0 || len(s.Clients) != 0 || len(s.Series) != 0 {
		t.Fatalf("empty summary should have empty breakdowns")
	}
}

func TestSummarizeEarnings(t *testing.T) {
	// Project at 60/h with a 1800s and a 3600s entry: 30 + 60 = 90.
	projects := []Project{{ID: "p1", Name: "Site", HourlyRate: 60}}
	tasks := []Task{{ID: "t1", Name: "Build", ProjectID: "p1"}}
	entries := []TimeEntry{
		closedEntry("e1", "t1", "2025-03-10", 1800),
		closedEntry("e2", "t1", "2025-03-11", 3600),
	}

	s := Summarize(entries, tasks, projects, nil, Filter{})
	if s.TotalTime != 5400 {
		t.Fatalf("totalTime=%d, want 5400", s.TotalTime)
	}
	if math.Abs(s.TotalEarnings-90) > 1e-9 {
		t.Fatalf("totalEarnings=%f, want 90", s.TotalEarnings)
	}
	if len(s.Projects) != 1 || s.Projects[0].TotalTime != 5400 {
		t.Fatalf("project breakdown wrong: %+v", s.Projects)
	}
}

func TestSummarizeDateRangeInclusive(t *testing.T) {
	tasks := []Task{{ID: "t1", Name: "Build"}}
	entries := []TimeEntry{
		closedEntry("e1", "t1", "2025-03-09", 100),
		closedEntry("e2", "t1", "2025-03-10", 200),
		closedEntry("e3", "t1", "2025-03-12", 400),
		closedEntry("e4", "t1", "2025-03-13", 800),
	}

	s := Summarize(entries, tasks, nil, nil, Filter{StartDate: "2025-03-10", EndDate: "2025-03-12"})
	if s.TotalTime != 600 {
		t.Fatalf("totalTime=%d, want 600 (boundary dates included, outside excluded)", s.TotalTime)
	}
}

func TestSummarizeDanglingClient(t *testing.T) {
	// The client was deleted: its tasks keep the dangling clientId and simply
	// drop out of client-keyed rows, while project totals are unaffected.
	projects := []Project{{ID: "p1", Name: "Site", HourlyRate: 100}}
	tasks := []Task{{ID: "t1", Name: "Build", ProjectID: "p1", ClientID: "ghost"}}
	entries := []TimeEntry{closedEntry("e1", "t1", "2025-03-10", 3600)}

	s := Summarize(entries, tasks, projects, []Client{{ID: "c1", Name: "Acme"}}, Filter{})
	if s.Projects[0].TotalTime != 3600 {
		t.Fatalf("project time=%d, want 3600", s.Projects[0].TotalTime)
	}
	if len(s.Clients) != 1 || s.Clients[0].TotalTime != 0 {
		t.Fatalf("dangling client reference must not contribute to other clients: %+v", s.Clients)
	}
}

func TestSummarizeClientEarningsViaProject(t *testing.T) {
	projects := []Project{{ID: "p1", Name: "Site", HourlyRate: 40}}
	clients := []Client{{ID: "c1", Name: "Acme"}}
	tasks := []Task{
		{ID: "t1", Name: "Billable", ProjectID: "p1", ClientID: "c1"},
		{ID: "t2", Name: "No project", ClientID: "c1"},
	}
	entries := []TimeEntry{
		closedEntry("e1", "t1", "2025-03-10", 5400),
		closedEntry("e2", "t2", "2025-03-10", 1800),
	}

	s := Summarize(entries, tasks, projects, clients, Filter{})
	c := s.Clients[0]
	if c.TotalTime != 7200 {
		t.Fatalf("client time=%d, want 7200", c.TotalTime)
	}
	// Only the entry with a resolvable project earns: 1.5h * 40 = 60.
	if math.Abs(c.Earnings-60) > 1e-9 {
		t.Fatalf("client earnings=%f, want 60", c.Earnings)
	}
}

func TestSummarizeEntryWithMissingTaskSkipped(t *testing.T) {
	entries := []TimeEntry{closedEntry("e1", "gone", "2025-03-10", 3600)}
	s := Summarize(entries, nil, nil, nil, Filter{})
	if s.TotalTime != 0 {
		t.Fatalf("entries with unresolvable tasks must be skipped, got time=%d", s.TotalTime)
	}
}

func TestSummarizeFilterByClientAndProject(t *testing.T) {
	projects := []Project{
		{ID: "p1", Name: "Site", HourlyRate: 10},
		{ID: "p2", Name: "App", HourlyRate: 10},
	}
	tasks := []Task{
		{ID: "t1", Name: "A", ProjectID: "p1", ClientID: "c1"},
		{ID: "t2", Name: "B", ProjectID: "p2", ClientID: "c2"},
	}
	entries := []TimeEntry{
		closedEntry("e1", "t1", "2025-03-10", 100),
		closedEntry("e2", "t2", "2025-03-10", 200),
	}

	if s := Summarize(entries, tasks, projects, nil, Filter{ClientID: "c1"}); s.TotalTime != 100 {
		t.Fatalf("client filter: totalTime=%d, want 100", s.TotalTime)
	}
	if s := Summarize(entries, tasks, projects, nil, Filter{ProjectID: "p2"}); s.TotalTime != 200 {
		t.Fatalf("project filter: totalTime=%d, want 200", s.TotalTime)
	}
}

func TestSummarizeSeries(t *testing.T) {
	projects := []Project{
		{ID: "p1", Name: "Site", HourlyRate: 0},
		{ID: "p2", Name: "App", HourlyRate: 0},
	}
	tasks := []Task{
		{ID: "t1", Name: "A", ProjectID: "p1"},
		{ID: "t2", Name: "B", ProjectID: "p2"},
		{ID: "t3", Name: "C"},
	}
	entries := []TimeEntry{
		closedEntry("e1", "t1", "2025-03-11", 100),
		closedEntry("e2", "t1", "2025-03-10", 200),
		closedEntry("e3", "t2", "2025-03-10", 300),
		closedEntry("e4", "t1", "2025-03-10", 50),
		closedEntry("e5", "t3", "2025-03-10", 10),
	}

	s := Summarize(entries, tasks, projects, nil, Filter{})
	if len(s.Series) != 2 {
		t.Fatalf("series buckets=%d, want 2", len(s.Series))
	}
	if s.Series[0].Date != "2025-03-10" || s.Series[1].Date != "2025-03-11" {
		t.Fatalf("series not ordered by date: %+v", s.Series)
	}
	first := s.Series[0].Projects
	if first["Site"] != 250 || first["App"] != 300 || first["Unknown"] != 10 {
		t.Fatalf("series bucket wrong: %+v", first)
	}
}
