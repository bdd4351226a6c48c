package background

import (
	"context"
	"log"
	"sync"
	"time"

	"invoicehub/internal/config"
	"invoicehub/internal/jobs"
	"invoicehub/internal/services"
	"invoicehub/internal/statistics"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages the recurring background jobs
type JobScheduler struct {
	scheduler        gocron.Scheduler
	recurringService services.RecurringService
	overdueService   *jobs.OverdueAlertService
	statisticsSvc    *statistics.StatisticsService
	cfg              *config.BillingConfig
	jobJobs          map[string]gocron.Job
	mu               sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(recurringService services.RecurringService, overdueService *jobs.OverdueAlertService, statisticsSvc *statistics.StatisticsService, cfg *config.BillingConfig) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:        scheduler,
		recurringService: recurringService,
		overdueService:   overdueService,
		statisticsSvc:    statisticsSvc,
		cfg:              cfg,
		jobJobs:          make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	if js.cfg.Recurring.Enabled {
		interval := time.Duration(js.cfg.Recurring.RunIntervalMinutes) * time.Minute
		recurringJob, err := js.scheduler.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(js.processRecurringInvoices, context.Background()),
			gocron.WithName("recurring-invoices"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			log.Printf("Failed to create recurring invoices job: %v", err)
		} else {
			js.jobJobs["recurring-invoices"] = recurringJob
		}
	}

	// Overdue check - daily
	overdueJob, err := js.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(js.checkOverdueInvoices),
		gocron.WithName("overdue-check"),
	)
	if err != nil {
		log.Printf("Failed to create overdue check job: %v", err)
	} else {
		js.jobJobs["overdue-check"] = overdueJob
	}

	// Statistics refresh - every 10 minutes
	statsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(js.refreshStatistics),
		gocron.WithName("statistics-refresh"),
	)
	if err != nil {
		log.Printf("Failed to create statistics refresh job: %v", err)
	} else {
		js.jobJobs["statistics-refresh"] = statsJob
	}

	log.Printf("Registered %d background jobs", len(js.jobJobs))
}

// processRecurringInvoices generates due instances of recurring profiles
func (js *JobScheduler) processRecurringInvoices(ctx context.Context) error {
	log.Printf("Starting recurring invoice generation")

	created, err := js.recurringService.ProcessProfiles(ctx, time.Now())
	if err != nil {
		log.Printf("Recurring invoice generation failed: %v", err)
		return err
	}

	log.Printf("Recurring invoice generation completed, %d invoices created", created)
	return nil
}

// checkOverdueInvoices logs alerts for sent invoices past their due date
func (js *JobScheduler) checkOverdueInvoices() error {
	log.Printf("Starting overdue invoice check")

	alerts, err := js.overdueService.CheckOverdue(context.Background(), time.Now())
	if err != nil {
		return err
	}

	for _, alert := range alerts {
		log.Printf("ALERT: invoice %s (%s) is %d days overdue, %.2f %s outstanding",
			alert.Number, alert.ContactName, alert.DaysOverdue, alert.Remaining, alert.Currency)
	}

	log.Printf("Completed overdue invoice check, %d overdue", len(alerts))
	return nil
}

// refreshStatistics recomputes the cached statistics summary
func (js *JobScheduler) refreshStatistics() error {
	log.Printf("Refreshing invoice statistics")

	if err := js.statisticsSvc.Refresh(context.Background()); err != nil {
		log.Printf("Statistics refresh failed: %v", err)
		return err
	}

	log.Printf("Statistics refresh completed")
	return nil
}

// AddJob adds a custom job to the scheduler
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	js.jobJobs[name] = job
	log.Printf("Added custom job: %s", name)
	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make(map[string]interface{})
	status["total_jobs"] = len(js.jobJobs)
	names := make([]string, 0, len(js.jobJobs))
	for name := range js.jobJobs {
		names = append(names, name)
	}
	status["jobs"] = names

	return status
}
