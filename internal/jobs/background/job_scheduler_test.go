package background

import (
	"testing"
	"time"

	"invoicehub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRegistersAndReportsJobs(t *testing.T) {
	cfg := &config.BillingConfig{}
	js := NewJobScheduler(nil, nil, nil, cfg)
	defer js.Stop()

	status := js.GetJobStatus()
	assert.Equal(t, 2, status["total_jobs"])
	assert.Contains(t, status["jobs"], "overdue-check")
	assert.Contains(t, status["jobs"], "statistics-refresh")
	assert.NotContains(t, status["jobs"], "recurring-invoices")
}

func TestSchedulerRegistersRecurringJobWhenEnabled(t *testing.T) {
	cfg := &config.BillingConfig{}
	cfg.Recurring.Enabled = true
	cfg.Recurring.RunIntervalMinutes = 60
	js := NewJobScheduler(nil, nil, nil, cfg)
	defer js.Stop()

	status := js.GetJobStatus()
	assert.Equal(t, 3, status["total_jobs"])
	assert.Contains(t, status["jobs"], "recurring-invoices")
}

func TestSchedulerAddJob(t *testing.T) {
	cfg := &config.BillingConfig{}
	js := NewJobScheduler(nil, nil, nil, cfg)
	defer js.Stop()

	require.NoError(t, js.AddJob("cache-warm", time.Hour, func() {}))

	status := js.GetJobStatus()
	assert.Equal(t, 3, status["total_jobs"])
	assert.Contains(t, status["jobs"], "cache-warm")
}
