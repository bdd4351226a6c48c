package billing

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// NumberingContext supplies the sequence and per-period counters the macro
// expander reads. Counters reflect invoices persisted at the moment of
// expansion; only the final number's uniqueness constraint guards against
// concurrent creations landing on the same sequence value.
type NumberingContext interface {
	NextSequenceID(ctx context.Context) (int64, error)
	CountDaily(ctx context.Context, projectID *int64, day time.Time) (int, error)
	CountMonthly(ctx context.Context, projectID *int64, month time.Time) (int, error)
	CountYearly(ctx context.Context, projectID *int64, year time.Time) (int, error)
}

// ProjectRef is the minimal project context the project-scoped macros need.
type ProjectRef struct {
	ID         int64
	Identifier string
}

// Both the legacy %%NAME%% and the {{name}} syntax are accepted.
var (
	reID               = regexp.MustCompile(`%%ID%%|{{id}}`)
	reYear             = regexp.MustCompile(`%%YEAR%%|{{year}}`)
	reMonth            = regexp.MustCompile(`%%MONTH%%|{{month}}`)
	reMonthName        = regexp.MustCompile(`{{month_name}}`)
	reMonthShortName   = regexp.MustCompile(`{{month_short_name}}`)
	reDay              = regexp.MustCompile(`%%DAY%%|{{day}}`)
	reDailyID          = regexp.MustCompile(`%%DAILY_ID%%|{{daily_id}}`)
	reMonthlyID        = regexp.MustCompile(`%%MONTHLY_ID%%|{{monthly_id}}`)
	reYearlyID         = regexp.MustCompile(`%%YEARLY_ID%%|{{yearly_id}}`)
	reMonthlyProjectID = regexp.MustCompile(`%%MONTHLY_PROJECT_ID%%|{{monthly_project_id}}`)
	reYearlyProjectID  = regexp.MustCompile(`%%YEARLY_PROJECT_ID%%|{{yearly_project_id}}`)
	reProjectID        = regexp.MustCompile(`%%PROJECT_ID%%|{{project_id}}`)
	reProjectIdent     = regexp.MustCompile(`%%PROJECT_IDENTIFIER%%|{{project_identifier}}`)
)

// ExpandMacros substitutes the number-format macros in input against the
// current date and current invoice counts. Substitution is textual and
// token-by-token; project-scoped tokens pass through unchanged when no
// project is supplied. Counts are evaluated at call time, not against the
// invoice date.
func ExpandMacros(ctx context.Context, input string, project *ProjectRef, nums NumberingContext, now time.Time) (string, error) {
	result := input

	if reID.MatchString(result) {
		seq, err := nums.NextSequenceID(ctx)
		if err != nil {
			return "", fmt.Errorf("next sequence id: %w", err)
		}
		result = reID.ReplaceAllString(result, fmt.Sprintf("%02d", seq))
	}

	result = reYear.ReplaceAllString(result, fmt.Sprintf("%d", now.Year()))
	result = reMonth.ReplaceAllString(result, fmt.Sprintf("%02d", int(now.Month())))
	result = reMonthName.ReplaceAllString(result, now.Month().String())
	result = reMonthShortName.ReplaceAllString(result, now.Format("Jan"))
	result = reDay.ReplaceAllString(result, fmt.Sprintf("%02d", now.Day()))

	if reDailyID.MatchString(result) {
		n, err := nums.CountDaily(ctx, nil, now)
		if err != nil {
			return "", fmt.Errorf("daily count: %w", err)
		}
		result = reDailyID.ReplaceAllString(result, fmt.Sprintf("%02d", n+1))
	}
	if reMonthlyID.MatchString(result) {
		n, err := nums.CountMonthly(ctx, nil, now)
		if err != nil {
			return "", fmt.Errorf("monthly count: %w", err)
		}
		result = reMonthlyID.ReplaceAllString(result, fmt.Sprintf("%03d", n+1))
	}
	if reYearlyID.MatchString(result) {
		n, err := nums.CountYearly(ctx, nil, now)
		if err != nil {
			return "", fmt.Errorf("yearly count: %w", err)
		}
		result = reYearlyID.ReplaceAllString(result, fmt.Sprintf("%04d", n+1))
	}

	if project != nil {
		if reMonthlyProjectID.MatchString(result) {
			n, err := nums.CountMonthly(ctx, &project.ID, now)
			if err != nil {
				return "", fmt.Errorf("monthly project count: %w", err)
			}
			result = reMonthlyProjectID.ReplaceAllString(result, fmt.Sprintf("%03d/%d", n+1, project.ID))
		}
		if reYearlyProjectID.MatchString(result) {
			n, err := nums.CountYearly(ctx, &project.ID, now)
			if err != nil {
				return "", fmt.Errorf("yearly project count: %w", err)
			}
			result = reYearlyProjectID.ReplaceAllString(result, fmt.Sprintf("%04d/%d", n+1, project.ID))
		}
		result = reProjectID.ReplaceAllString(result, fmt.Sprintf("%d", project.ID))
		result = reProjectIdent.ReplaceAllString(result, project.Identifier)
	}

	return result, nil
}
