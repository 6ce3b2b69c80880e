package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"m77ag-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListInvoicesDueBy returns open invoices due on or before cutoff, with leases.
func (s *Store) ListInvoicesDueBy(ctx context.Context, cutoff time.Time) ([]models.RentInvoice, error) {
	var invoices []models.RentInvoice
	if err := s.db.WithContext(ctx).
		Preload("Lease").
		Where("status IN ? AND due_date <= ?",
			openStatuses, cutoff).
		Order("due_date").
		Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices due: %w", err)
	}
	return invoices, nil
}

// GetTemplate returns nil when no active template of that type exists.
func (s *Store) GetTemplate(ctx context.Context, reminderType string) (*models.ReminderTemplate, error) {
	var tmpl models.ReminderTemplate
	err := s.db.WithContext(ctx).
		Where("type = ? AND is_active = ?", reminderType, true).
		First(&tmpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder template: %w", err)
	}
	return &tmpl, nil
}

func (s *Store) LastReminderSent(ctx context.Context, invoiceID uuid.UUID, reminderType string) (*time.Time, error) {
	var log models.ReminderLog
	err := s.db.WithContext(ctx).
		Where("invoice_id = ? AND type = ? AND status = ?", invoiceID, reminderType, "sent").
		Order("sent_at DESC").
		First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder log: %w", err)
	}
	return &log.SentAt, nil
}

func (s *Store) CreateReminderLog(ctx context.Context, entry *models.ReminderLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to log reminder: %w", err)
	}
	return nil
}
