package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 10 * time.Minute

// ScheduleConfig holds the cron expressions for the billing jobs.
type ScheduleConfig struct {
	InvoiceJob  string
	LateFeeJob  string
	ReminderJob string
}

// Scheduler runs monthly invoice generation, daily late fees and daily
// reminders.
type Scheduler struct {
	cron      *cron.Cron
	billing   *BillingService
	reminders *ReminderService
	logger    *zap.Logger
	config    ScheduleConfig
	now       func() time.Time
}

func NewScheduler(billing *BillingService, reminders *ReminderService, logger *zap.Logger, cfg ScheduleConfig) *Scheduler {
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{logger.Sugar()})))
	return &Scheduler{
		cron:      c,
		billing:   billing,
		reminders: reminders,
		logger:    logger,
		config:    cfg,
		now:       time.Now,
	}
}

// Start registers the jobs and starts the cron scheduler. A job with an
// invalid schedule is logged and left out.
func (s *Scheduler) Start() {
	s.register("invoice generation", s.config.InvoiceJob, s.GenerateMonthlyInvoices)
	s.register("late fee", s.config.LateFeeJob, s.ApplyLateFees)
	if s.reminders != nil {
		s.register("rent reminder", s.config.ReminderJob, s.SendReminders)
	}
	s.cron.Start()
}

// Stop returns a context that is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) register(name, schedule string, job func()) {
	if schedule == "" {
		s.logger.Info("job disabled", zap.String("job", name))
		return
	}
	if _, err := s.cron.AddFunc(schedule, job); err != nil {
		s.logger.Error("failed to schedule job", zap.String("job", name), zap.String("schedule", schedule), zap.Error(err))
		return
	}
	s.logger.Info("scheduled job", zap.String("job", name), zap.String("schedule", schedule))
}

// GenerateMonthlyInvoices bills every active lease for the current month.
func (s *Scheduler) GenerateMonthlyInvoices() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	now := s.now().UTC()
	if _, err := s.billing.AutoGenerateForAllActiveLeases(ctx, int(now.Month()), now.Year()); err != nil {
		s.logger.Error("invoice generation job failed", zap.Error(err))
	}
}

func (s *Scheduler) ApplyLateFees() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.billing.ApplyLateFeesBatch(ctx, s.now()); err != nil {
		s.logger.Error("late fee job failed", zap.Error(err))
	}
}

func (s *Scheduler) SendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.reminders.SendRentReminders(ctx, s.now()); err != nil {
		s.logger.Error("rent reminder job failed", zap.Error(err))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
