package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrgProvider provides the organizations to schedule billing jobs for
type OrgProvider interface {
	GetAllActiveOrgIDs(ctx context.Context) ([]uuid.UUID, error)
}

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// DailySweepHour/Minute is the time of day (24h) for the overdue and
	// charge-expiry sweep.
	DailySweepHour   int
	DailySweepMinute int

	// InvoiceGenDay is the day of month for recurring invoice generation,
	// run at InvoiceGenHour.
	InvoiceGenDay  int
	InvoiceGenHour int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		DailySweepHour:   1, // 1am
		DailySweepMinute: 0,
		InvoiceGenDay:    1, // first of the month
		InvoiceGenHour:   2, // 2am
		CheckInterval:    time.Minute,
	}
}

// CronTrigger drives the billing scheduler on a wall-clock schedule
type CronTrigger struct {
	config      CronTriggerConfig
	scheduler   *Scheduler
	orgProvider OrgProvider
	logger      *zap.Logger

	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.Mutex
	isRunning    bool
	lastSweepDay string // date the daily sweep last ran for
	lastGenMonth string // month invoice generation last ran for
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(
	config CronTriggerConfig,
	scheduler *Scheduler,
	orgProvider OrgProvider,
	logger *zap.Logger,
) *CronTrigger {
	return &CronTrigger{
		config:      config,
		scheduler:   scheduler,
		orgProvider: orgProvider,
		logger:      logger,
	}
}

// Start starts the cron trigger
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Cron trigger started",
		zap.Int("sweep_hour", c.config.DailySweepHour),
		zap.Int("sweep_minute", c.config.DailySweepMinute),
		zap.Int("invoice_gen_day", c.config.InvoiceGenDay),
		zap.Int("invoice_gen_hour", c.config.InvoiceGenHour),
		zap.Duration("check_interval", c.config.CheckInterval),
	)

	return nil
}

// Stop stops the cron trigger
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop checks periodically if it's time to run scheduled jobs
func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger fires the daily sweep and monthly generation when due
func (c *CronTrigger) checkAndTrigger(ctx context.Context) {
	now := time.Now()
	currentDate := now.Format("2006-01-02")
	currentMonth := now.Format("2006-01")

	c.mu.Lock()
	sweepDue := c.lastSweepDay != currentDate &&
		now.Hour() == c.config.DailySweepHour && now.Minute() == c.config.DailySweepMinute
	genDue := c.lastGenMonth != currentMonth &&
		now.Day() == c.config.InvoiceGenDay && now.Hour() == c.config.InvoiceGenHour && now.Minute() == 0
	if sweepDue {
		c.lastSweepDay = currentDate
	}
	if genDue {
		c.lastGenMonth = currentMonth
	}
	c.mu.Unlock()

	if sweepDue {
		c.logger.Info("Triggering daily billing sweep")
		c.triggerDailySweep(ctx, now)
	}
	if genDue {
		c.logger.Info("Triggering monthly invoice generation")
		c.triggerInvoiceGeneration(ctx, now)
	}
}

// triggerDailySweep submits overdue and charge-expiry jobs for every org
func (c *CronTrigger) triggerDailySweep(ctx context.Context, asOf time.Time) {
	orgIDs, err := c.orgProvider.GetAllActiveOrgIDs(ctx)
	if err != nil {
		c.logger.Error("Failed to get org IDs for daily sweep", zap.Error(err))
		return
	}

	c.logger.Info("Scheduling daily sweep for orgs",
		zap.Int("org_count", len(orgIDs)),
	)

	for _, orgID := range orgIDs {
		if err := c.scheduler.ScheduleDailySweep(orgID, asOf); err != nil {
			c.logger.Error("Failed to schedule daily sweep for org",
				zap.String("org_id", orgID.String()),
				zap.Error(err),
			)
		}
	}
}

// triggerInvoiceGeneration submits generation jobs for the current calendar month
func (c *CronTrigger) triggerInvoiceGeneration(ctx context.Context, now time.Time) {
	orgIDs, err := c.orgProvider.GetAllActiveOrgIDs(ctx)
	if err != nil {
		c.logger.Error("Failed to get org IDs for invoice generation", zap.Error(err))
		return
	}

	periodStart, periodEnd := CurrentMonthPeriod(now)

	c.logger.Info("Scheduling invoice generation for orgs",
		zap.Int("org_count", len(orgIDs)),
		zap.Time("period_start", periodStart),
		zap.Time("period_end", periodEnd),
	)

	for _, orgID := range orgIDs {
		if err := c.scheduler.ScheduleInvoiceGeneration(orgID, periodStart, periodEnd); err != nil {
			c.logger.Error("Failed to schedule invoice generation for org",
				zap.String("org_id", orgID.String()),
				zap.Error(err),
			)
		}
	}
}

// TriggerManualSweep allows manual triggering of the daily sweep for one org
func (c *CronTrigger) TriggerManualSweep(orgID uuid.UUID, asOf time.Time) error {
	return c.scheduler.ScheduleDailySweep(orgID, asOf)
}

// TriggerManualGeneration allows manual triggering of invoice generation
func (c *CronTrigger) TriggerManualGeneration(orgID uuid.UUID, periodStart, periodEnd time.Time) error {
	return c.scheduler.ScheduleInvoiceGeneration(orgID, periodStart, periodEnd)
}

// CurrentMonthPeriod returns the first and last day of now's calendar month
func CurrentMonthPeriod(now time.Time) (time.Time, time.Time) {
	periodStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, -1)
	return periodStart, periodEnd
}
