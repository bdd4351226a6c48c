package repositories

import (
	"context"

	"invoicehub/internal/models"

	"github.com/google/uuid"
)

const timeEntryColumns = `id, issue_id, issue_subject, project_id, project_name, tracker_id, tracker_name, activity_id, activity_name, user_id, user_name, hours, estimated_hours, comments, spent_on, created_at`

type TimeEntryRepository interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.TimeEntry, error)
	ListByIssueIDs(ctx context.Context, issueIDs []int64) ([]*models.TimeEntry, error)
}

type timeEntryRepo struct {
	db DB
}

func NewTimeEntryRepo(db DB) TimeEntryRepository {
	return &timeEntryRepo{db: db}
}

func (r *timeEntryRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE id = ANY($1) ORDER BY spent_on ASC, created_at ASC`
	return r.list(ctx, query, ids)
}

func (r *timeEntryRepo) ListByIssueIDs(ctx context.Context, issueIDs []int64) ([]*models.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE issue_id = ANY($1) ORDER BY spent_on ASC, created_at ASC`
	return r.list(ctx, query, issueIDs)
}

func (r *timeEntryRepo) list(ctx context.Context, query string, arg any) ([]*models.TimeEntry, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.TimeEntry
	for rows.Next() {
		entry := &models.TimeEntry{}
		if err := rows.Scan(&entry.ID, &entry.IssueID, &entry.IssueSubject, &entry.ProjectID,
			&entry.ProjectName, &entry.TrackerID, &entry.TrackerName, &entry.ActivityID,
			&entry.ActivityName, &entry.UserID, &entry.UserName, &entry.Hours, &entry.EstimatedHours,
			&entry.Comments, &entry.SpentOn, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
