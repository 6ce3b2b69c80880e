// Package app wires configuration, storage and services for the API server
// and the m77ctl command.
package app

import (
	"time"

	"m77ag-backend/config"
	"m77ag-backend/logger"
	"m77ag-backend/services"
	"m77ag-backend/store"
	"m77ag-backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Settings  *config.Settings
	DB        *gorm.DB
	Store     *store.Store
	Billing   *services.BillingService
	Reminders *services.ReminderService
	Quotes    *services.SprayQuoteService
}

// New connects to the database, migrates it and builds the services.
func New(settings *config.Settings) (*App, error) {
	utils.ConfigureAuth(settings.JWTSecret, time.Duration(settings.JWTExpiryHours)*time.Hour)

	db, err := config.ConnectDB(settings.DBURL)
	if err != nil {
		return nil, err
	}
	if err := config.Migrate(db); err != nil {
		return nil, err
	}

	st := store.New(db)
	log := logger.Log

	var sender services.MessageSender
	if settings.TwilioEnabled() {
		sender = services.NewTwilioSender(settings.TwilioAccountSID, settings.TwilioAuthToken, settings.TwilioPhoneNumber)
	} else {
		log.Warn("twilio not configured, reminders will only be logged")
		sender = services.NewLogSender(log)
	}

	return &App{
		Settings:  settings,
		DB:        db,
		Store:     st,
		Billing:   services.NewBillingService(st, log.Named("billing")),
		Reminders: services.NewReminderService(st, sender, log.Named("reminders"), settings.ReminderDaysAhead),
		Quotes:    services.NewSprayQuoteService(st, log.Named("spray")),
	}, nil
}

// Scheduler builds the cron scheduler for the billing jobs.
func (a *App) Scheduler() *services.Scheduler {
	return services.NewScheduler(a.Billing, a.Reminders, logger.Log.Named("scheduler"), services.ScheduleConfig{
		InvoiceJob:  a.Settings.InvoiceJobSchedule,
		LateFeeJob:  a.Settings.LateFeeJobSchedule,
		ReminderJob: a.Settings.ReminderJobSchedule,
	})
}

func (a *App) Close() {
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}
}
