package core

import "sort"

// Filter narrows the entry set before aggregation. Zero values mean "no
// constraint". Date bounds are inclusive and compared as YYYY-MM-DD strings,
// which orders the same as the calendar.
type Filter struct {
	StartDate string
	EndDate   string
	ClientID  string
	ProjectID string
}

type (
	ProjectSummary struct {
		Project   Project `json:"project"`
		TotalTime int64   `json:"totalTime"`
		Earnings  float64 `json:"earnings"`
	}

	ClientSummary struct {
		Client    Client  `json:"client"`
		TotalTime int64   `json:"totalTime"`
		Earnings  float64 `json:"earnings"`
	}

	// SeriesBucket holds per-project seconds for one calendar day, shaped for
	// a stacked time-series chart.
	SeriesBucket struct {
		Date     string           `json:"date"`
		Projects map[string]int64 `json:"projects"`
	}

	Summary struct {
		TotalTime     int64            `json:"totalTime"`
		TotalEarnings float64          `json:"totalEarnings"`
		TaskCount     int              `json:"taskCount"`
		Projects      []ProjectSummary `json:"projects"`
		Clients       []ClientSummary  `json:"clients"`
		Series        []SeriesBucket   `json:"series"`
	}
)

// Summarize recomputes the full summary from scratch. Entries whose task no
// longer exists are skipped entirely; entries whose task has no resolvable
// project contribute time but zero earnings.
func Summarize(entries []TimeEntry, tasks []Task, projects []Project, clients []Client, f Filter) Summary {
	taskByID := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		taskByID[t.ID] = t
	}
	projectByID := make(map[string]Project, len(projects))
	for _, p := range projects {
		projectByID[p.ID] = p
	}

	var filtered []TimeEntry
	for _, e := range entries {
		task, ok := taskByID[e.TaskID]
		if !ok {
			continue
		}
		if f.StartDate != "" && e.Date < f.StartDate {
			continue
		}
		if f.EndDate != "" && e.Date > f.EndDate {
			continue
		}
		if f.ClientID != "" && task.ClientID != f.ClientID {
			continue
		}
		if f.ProjectID != "" && task.ProjectID != f.ProjectID {
			continue
		}
		filtered = append(filtered, e)
	}

	s := Summary{
		TaskCount: len(tasks),
		Projects:  make([]ProjectSummary, 0, len(projects)),
		Clients:   make([]ClientSummary, 0, len(clients)),
	}
	for _, e := range filtered {
		s.TotalTime += e.Duration
	}

	for _, p := range projects {
		row := ProjectSummary{Project: p}
		for _, e := range filtered {
			if taskByID[e.TaskID].ProjectID != p.ID {
				continue
			}
			row.TotalTime += e.Duration
		}
		row.Earnings = float64(row.TotalTime) / 3600 * p.HourlyRate
		s.TotalEarnings += row.Earnings
		s.Projects = append(s.Projects, row)
	}

	for _, c := range clients {
		row := ClientSummary{Client: c}
		for _, e := range filtered {
			if taskByID[e.TaskID].ClientID != c.ID {
				continue
			}
			row.TotalTime += e.Duration
			if p, ok := projectByID[taskByID[e.TaskID].ProjectID]; ok {
				row.Earnings += float64(e.Duration) / 3600 * p.HourlyRate
			}
		}
		s.Clients = append(s.Clients, row)
	}

	s.Series = buildSeries(filtered, taskByID, projectByID)
	return s
}

func buildSeries(entries []TimeEntry, taskByID map[string]Task, projectByID map[string]Project) []SeriesBucket {
	byDate := make(map[string]map[string]int64)
	for _, e := range entries {
		name := "Unknown"
		if p, ok := projectByID[taskByID[e.TaskID].ProjectID]; ok {
			name = p.Name
		}
		if byDate[e.Date] == nil {
			byDate[e.Date] = make(map[string]int64)
		}
		byDate[e.Date][name] += e.Duration
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	buckets := make([]SeriesBucket, 0, len(dates))
	for _, d := range dates {
		buckets = append(buckets, SeriesBucket{Date: d, Projects: byDate[d]})
	}
	return buckets
}
