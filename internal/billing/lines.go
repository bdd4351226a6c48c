package billing

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"invoicehub/internal/models"

	"github.com/google/uuid"
)

// Line grouping strategies. The zero value groups by activity.
const (
	GroupByActivity        = 0
	GroupByIssue           = 1
	GroupByUser            = 2
	GroupSingleLine        = 3
	GroupByTimeEntry       = 5
	GroupEstimateByIssue   = 6
	GroupEstimateByProject = 7
	GroupEstimateByTracker = 8
)

// HoursUnits is the units label attached to generated lines.
const HoursUnits = "hours"

// RateProvider resolves the billing rate for a user, optionally scoped to a
// project. Implementations return 0.0 when no rate is configured.
type RateProvider interface {
	BillRate(ctx context.Context, userID uuid.UUID, projectID *int64) float64
}

// BuildLines aggregates time entries into unsaved invoice lines under the
// chosen grouping strategy. Quantities are rounded to two decimals the same
// way the entry form would render them; prices come from the rate provider
// for the user-based and per-entry groupings and default to zero elsewhere.
func BuildLines(ctx context.Context, entries []*models.TimeEntry, grouping int, rates RateProvider, projectID *int64) []*models.InvoiceLine {
	switch grouping {
	case GroupByIssue:
		return linesByIssue(entries)
	case GroupByUser:
		return linesByUser(ctx, entries, rates, projectID)
	case GroupSingleLine:
		return linesSingle(entries)
	case GroupByTimeEntry:
		return linesByTimeEntry(ctx, entries, rates, projectID)
	case GroupEstimateByIssue:
		return linesEstimateByIssue(entries)
	case GroupEstimateByProject:
		return linesEstimateByProject(entries)
	case GroupEstimateByTracker:
		return linesEstimateByTracker(entries)
	default:
		return linesByActivity(entries)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func issueLabel(e *models.TimeEntry) string {
	subject := ""
	if e.IssueSubject != nil {
		subject = *e.IssueSubject
	}
	if e.TrackerName != nil && e.IssueID != nil {
		return fmt.Sprintf("%s #%d: %s", *e.TrackerName, *e.IssueID, subject)
	}
	if e.IssueID != nil {
		return fmt.Sprintf("#%d: %s", *e.IssueID, subject)
	}
	return subject
}

func hoursLine(e *models.TimeEntry, hours float64) string {
	if e.IssueID == nil {
		comments := ""
		if e.Comments != nil {
			comments = *e.Comments
		}
		return fmt.Sprintf(" - %s (%.2f %s)", comments, hours, HoursUnits)
	}
	subject := ""
	if e.IssueSubject != nil {
		subject = *e.IssueSubject
	}
	return fmt.Sprintf(" - #%d %s (%.2f %s)", *e.IssueID, subject, hours, HoursUnits)
}

func newHoursLine(description string, hours float64) *models.InvoiceLine {
	units := HoursUnits
	return &models.InvoiceLine{
		Description: description,
		Quantity:    round2(hours),
		Units:       &units,
	}
}

func linesByActivity(entries []*models.TimeEntry) []*models.InvoiceLine {
	type group struct {
		name    string
		hours   float64
		byIssue map[string]float64
		order   []string
	}
	groups := map[int64]*group{}
	var ids []int64
	for _, e := range entries {
		g, ok := groups[e.ActivityID]
		if !ok {
			g = &group{name: e.ActivityName, byIssue: map[string]float64{}}
			groups[e.ActivityID] = g
			ids = append(ids, e.ActivityID)
		}
		g.hours += e.Hours
		key := hoursKey(e)
		if _, seen := g.byIssue[key]; !seen {
			g.order = append(g.order, key)
		}
		g.byIssue[key] += e.Hours
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var lines []*models.InvoiceLine
	for _, id := range ids {
		g := groups[id]
		detail := make([]string, 0, len(g.order))
		for _, key := range g.order {
			detail = append(detail, fmt.Sprintf("%s (%.2f %s)", key, g.byIssue[key], HoursUnits))
		}
		lines = append(lines, newHoursLine(g.name+"\n"+strings.Join(detail, "\n"), g.hours))
	}
	return lines
}

func hoursKey(e *models.TimeEntry) string {
	if e.IssueID != nil {
		subject := ""
		if e.IssueSubject != nil {
			subject = *e.IssueSubject
		}
		return fmt.Sprintf(" - #%d %s", *e.IssueID, subject)
	}
	comments := ""
	if e.Comments != nil {
		comments = *e.Comments
	}
	return " - " + comments
}

func linesByIssue(entries []*models.TimeEntry) []*models.InvoiceLine {
	hours := map[int64]float64{}
	labels := map[int64]string{}
	var ids []int64
	var withoutIssue []*models.TimeEntry
	for _, e := range entries {
		if e.IssueID == nil {
			withoutIssue = append(withoutIssue, e)
			continue
		}
		if _, ok := hours[*e.IssueID]; !ok {
			ids = append(ids, *e.IssueID)
			labels[*e.IssueID] = issueLabel(e)
		}
		hours[*e.IssueID] += e.Hours
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var lines []*models.InvoiceLine
	for _, id := range ids {
		lines = append(lines, newHoursLine(labels[id], hours[id]))
	}
	for _, e := range withoutIssue {
		comments := ""
		if e.Comments != nil {
			comments = *e.Comments
		}
		lines = append(lines, newHoursLine(comments, e.Hours))
	}
	return lines
}

func linesByUser(ctx context.Context, entries []*models.TimeEntry, rates RateProvider, projectID *int64) []*models.InvoiceLine {
	type group struct {
		name   string
		hours  float64
		detail []string
		seen   map[string]bool
	}
	groups := map[uuid.UUID]*group{}
	var ids []uuid.UUID
	for _, e := range entries {
		g, ok := groups[e.UserID]
		if !ok {
			g = &group{name: e.UserName, seen: map[string]bool{}}
			groups[e.UserID] = g
			ids = append(ids, e.UserID)
		}
		g.hours += e.Hours
		line := hoursLine(e, e.Hours)
		if !g.seen[line] {
			g.seen[line] = true
			g.detail = append(g.detail, line)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return groups[ids[i]].name < groups[ids[j]].name })

	var lines []*models.InvoiceLine
	for _, id := range ids {
		g := groups[id]
		line := newHoursLine(g.name+"\n"+strings.Join(g.detail, "\n"), g.hours)
		line.Price = billRate(ctx, rates, id, projectID)
		lines = append(lines, line)
	}
	return lines
}

func linesSingle(entries []*models.TimeEntry) []*models.InvoiceLine {
	total := 0.0
	var detail []string
	seen := map[string]bool{}
	for _, e := range entries {
		total += e.Hours
		if e.Hours <= 0 {
			continue
		}
		line := hoursLine(e, e.Hours)
		if !seen[line] {
			seen[line] = true
			detail = append(detail, line)
		}
	}
	return []*models.InvoiceLine{newHoursLine(strings.Join(detail, "\n"), total)}
}

func linesByTimeEntry(ctx context.Context, entries []*models.TimeEntry, rates RateProvider, projectID *int64) []*models.InvoiceLine {
	var lines []*models.InvoiceLine
	for _, e := range entries {
		description := e.ActivityName
		if e.IssueID != nil {
			description += " - " + issueLabel(e)
		}
		if e.Comments != nil && *e.Comments != "" {
			description += " - " + *e.Comments
		}
		line := newHoursLine(description, e.Hours)
		line.Price = billRate(ctx, rates, e.UserID, projectID)
		lines = append(lines, line)
	}
	return lines
}

func linesEstimateByIssue(entries []*models.TimeEntry) []*models.InvoiceLine {
	estimates := map[int64]float64{}
	labels := map[int64]string{}
	var ids []int64
	for _, e := range entries {
		if e.IssueID == nil || e.EstimatedHours == nil {
			continue
		}
		if _, ok := estimates[*e.IssueID]; !ok {
			ids = append(ids, *e.IssueID)
			labels[*e.IssueID] = issueLabel(e)
			estimates[*e.IssueID] = *e.EstimatedHours
		}
	}
	sort.Slice(ids, func(i, j int) bool { return labels[ids[i]] < labels[ids[j]] })

	var lines []*models.InvoiceLine
	for _, id := range ids {
		lines = append(lines, newHoursLine(labels[id], estimates[id]))
	}
	return lines
}

func linesEstimateByProject(entries []*models.TimeEntry) []*models.InvoiceLine {
	type group struct {
		name   string
		hours  float64
		detail []string
		seen   map[string]bool
	}
	groups := map[int64]*group{}
	var ids []int64
	for _, e := range entries {
		g, ok := groups[e.ProjectID]
		if !ok {
			g = &group{name: e.ProjectName, seen: map[string]bool{}}
			groups[e.ProjectID] = g
			ids = append(ids, e.ProjectID)
		}
		g.hours += e.Hours
		line := hoursLine(e, e.Hours)
		if !g.seen[line] {
			g.seen[line] = true
			g.detail = append(g.detail, line)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var lines []*models.InvoiceLine
	for _, id := range ids {
		g := groups[id]
		lines = append(lines, newHoursLine(g.name+"\n"+strings.Join(g.detail, "\n"), g.hours))
	}
	return lines
}

func linesEstimateByTracker(entries []*models.TimeEntry) []*models.InvoiceLine {
	type group struct {
		name   string
		hours  float64
		detail []string
		seen   map[string]bool
	}
	groups := map[int64]*group{}
	var ids []int64
	for _, e := range entries {
		if e.TrackerID == nil {
			continue
		}
		g, ok := groups[*e.TrackerID]
		if !ok {
			name := ""
			if e.TrackerName != nil {
				name = *e.TrackerName
			}
			g = &group{name: name, seen: map[string]bool{}}
			groups[*e.TrackerID] = g
			ids = append(ids, *e.TrackerID)
		}
		g.hours += e.Hours
		line := hoursLine(e, e.Hours)
		if !g.seen[line] {
			g.seen[line] = true
			g.detail = append(g.detail, line)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var lines []*models.InvoiceLine
	for _, id := range ids {
		g := groups[id]
		lines = append(lines, newHoursLine(g.name+"\n"+strings.Join(g.detail, "\n"), g.hours))
	}
	return lines
}

func billRate(ctx context.Context, rates RateProvider, userID uuid.UUID, projectID *int64) float64 {
	if rates == nil {
		return 0.0
	}
	return rates.BillRate(ctx, userID, projectID)
}
