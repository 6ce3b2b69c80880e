// services/reminder_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"m77ag-backend/billing"
	"m77ag-backend/models"
	"m77ag-backend/utils"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

const (
	ReminderStatusSent   = "sent"
	ReminderStatusFailed = "failed"

	// overdue reminders repeat at most this often
	overdueReminderInterval = 7 * 24 * time.Hour
)

var defaultTemplates = map[string]string{
	models.ReminderUpcoming: "Hi [TenantName], rent of [Amount] for [Property] is due [DueDate].",
	models.ReminderOverdue:  "Hi [TenantName], rent of [Amount] for [Property] was due [DueDate] and is now overdue. Late fees may apply.",
}

// DefaultReminderMessage is used when no active template is stored.
func DefaultReminderMessage(reminderType string) string {
	return defaultTemplates[reminderType]
}

// MessageSender delivers a text message and returns the provider's message id.
type MessageSender interface {
	Send(ctx context.Context, to, body string) (string, error)
	Channel() string
}

type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSid, authToken, from string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from: from,
	}
}

func (s *TwilioSender) Send(ctx context.Context, to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

func (s *TwilioSender) Channel() string { return "sms" }

// LogSender writes messages to the log instead of sending them. Used when
// Twilio is not configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, to, body string) (string, error) {
	s.logger.Info("reminder not sent, sms disabled", zap.String("to", to), zap.String("body", body))
	return "", nil
}

func (s *LogSender) Channel() string { return "log" }

// ReminderRepository is the storage the reminder service needs.
type ReminderRepository interface {
	ListInvoicesDueBy(ctx context.Context, cutoff time.Time) ([]models.RentInvoice, error)
	GetTemplate(ctx context.Context, reminderType string) (*models.ReminderTemplate, error)
	LastReminderSent(ctx context.Context, invoiceID uuid.UUID, reminderType string) (*time.Time, error)
	CreateReminderLog(ctx context.Context, entry *models.ReminderLog) error
}

type ReminderResult struct {
	Sent    int               `json:"sent"`
	Skipped int               `json:"skipped"`
	Failed  map[string]string `json:"failed"`
}

type ReminderService struct {
	repo      ReminderRepository
	sender    MessageSender
	logger    *zap.Logger
	daysAhead int
}

func NewReminderService(repo ReminderRepository, sender MessageSender, logger *zap.Logger, daysAhead int) *ReminderService {
	return &ReminderService{repo: repo, sender: sender, logger: logger, daysAhead: daysAhead}
}

// SendRentReminders texts tenants whose open invoices fall due within the
// configured window or are already late. Upcoming reminders go out once per
// invoice; overdue reminders repeat weekly.
func (s *ReminderService) SendRentReminders(ctx context.Context, asOf time.Time) (*ReminderResult, error) {
	cutoff := utils.BeginningOfDay(asOf).AddDate(0, 0, s.daysAhead)
	invoices, err := s.repo.ListInvoicesDueBy(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	result := &ReminderResult{Failed: map[string]string{}}
	templates := map[string]string{}

	for i := range invoices {
		inv := &invoices[i]
		if ctx.Err() != nil {
			result.Failed[inv.ID.String()] = ctx.Err().Error()
			continue
		}

		reminderType := models.ReminderUpcoming
		if billing.EvaluateLateness(inv, asOf).IsLate {
			reminderType = models.ReminderOverdue
		}

		due, err := s.reminderDue(ctx, inv.ID, reminderType, asOf)
		if err != nil {
			result.Failed[inv.ID.String()] = err.Error()
			continue
		}
		if !due || inv.Lease == nil || !utils.ValidatePhone(inv.Lease.TenantPhone) {
			result.Skipped++
			continue
		}

		tmpl, ok := templates[reminderType]
		if !ok {
			tmpl, err = s.templateFor(ctx, reminderType)
			if err != nil {
				result.Failed[inv.ID.String()] = err.Error()
				continue
			}
			templates[reminderType] = tmpl
		}

		if err := s.send(ctx, inv, reminderType, RenderReminder(tmpl, inv), asOf); err != nil {
			result.Failed[inv.ID.String()] = err.Error()
			continue
		}
		result.Sent++
	}

	s.logger.Info("rent reminders processed",
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (s *ReminderService) reminderDue(ctx context.Context, invoiceID uuid.UUID, reminderType string, asOf time.Time) (bool, error) {
	last, err := s.repo.LastReminderSent(ctx, invoiceID, reminderType)
	if err != nil {
		return false, err
	}
	if last == nil {
		return true, nil
	}
	if reminderType == models.ReminderUpcoming {
		return false, nil
	}
	return !asOf.Before(last.Add(overdueReminderInterval)), nil
}

func (s *ReminderService) templateFor(ctx context.Context, reminderType string) (string, error) {
	tmpl, err := s.repo.GetTemplate(ctx, reminderType)
	if err != nil {
		return "", err
	}
	if tmpl == nil {
		return DefaultReminderMessage(reminderType), nil
	}
	return tmpl.Message, nil
}

func (s *ReminderService) send(ctx context.Context, inv *models.RentInvoice, reminderType, message string, asOf time.Time) error {
	to := utils.ToE164(inv.Lease.TenantPhone)
	sid, sendErr := s.sender.Send(ctx, to, message)

	entry := &models.ReminderLog{
		LeaseID:   inv.LeaseID,
		InvoiceID: inv.ID,
		Type:      reminderType,
		Message:   message,
		Status:    ReminderStatusSent,
		Channel:   s.sender.Channel(),
		SentAt:    asOf,
	}
	if sendErr != nil {
		entry.Status = ReminderStatusFailed
		entry.ErrorMessage = sendErr.Error()
		s.logger.Error("reminder send failed",
			zap.String("invoice_number", inv.InvoiceNumber), zap.String("to", to), zap.Error(sendErr))
	} else {
		s.logger.Info("reminder sent",
			zap.String("invoice_number", inv.InvoiceNumber), zap.String("type", reminderType), zap.String("sid", sid))
	}

	logErr := s.repo.CreateReminderLog(ctx, entry)
	if logErr != nil {
		s.logger.Error("failed to log reminder", zap.String("invoice_id", inv.ID.String()), zap.Error(logErr))
	}
	return errors.Join(sendErr, logErr)
}

// RenderReminder fills [TenantName], [Property], [Amount] and [DueDate].
func RenderReminder(tmpl string, inv *models.RentInvoice) string {
	tenant, property := "", ""
	if inv.Lease != nil {
		tenant = inv.Lease.TenantName
		property = inv.Lease.PropertyName
	}
	return strings.NewReplacer(
		"[TenantName]", tenant,
		"[Property]", property,
		"[Amount]", utils.FormatMoney(billing.Balance(inv)),
		"[DueDate]", inv.DueDate.Format("Jan 2, 2006"),
	).Replace(tmpl)
}
