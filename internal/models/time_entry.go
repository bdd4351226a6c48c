package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeEntry is a flattened read model of logged (or estimated) work, carrying
// the denormalized issue, tracker, activity and user names the invoice line
// generator needs for its descriptions.
type TimeEntry struct {
	ID             uuid.UUID `json:"id" db:"id"`
	IssueID        *int64    `json:"issue_id" db:"issue_id"`
	IssueSubject   *string   `json:"issue_subject" db:"issue_subject"`
	ProjectID      int64     `json:"project_id" db:"project_id"`
	ProjectName    string    `json:"project_name" db:"project_name"`
	TrackerID      *int64    `json:"tracker_id" db:"tracker_id"`
	TrackerName    *string   `json:"tracker_name" db:"tracker_name"`
	ActivityID     int64     `json:"activity_id" db:"activity_id"`
	ActivityName   string    `json:"activity_name" db:"activity_name"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	UserName       string    `json:"user_name" db:"user_name"`
	Hours          float64   `json:"hours" db:"hours"`
	EstimatedHours *float64  `json:"estimated_hours" db:"estimated_hours"`
	Comments       *string   `json:"comments" db:"comments"`
	SpentOn        time.Time `json:"spent_on" db:"spent_on"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
