// Package notification turns domain events into user-facing notifications.
// It subscribes to the event bus and inverts the dependency: domain modules
// never talk to email or push channels directly. Email delivery is
// two-phase: handlers render the message and write an outbox row; the
// scheduler worker delivers it later via the SMTP sender.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"caseflow_backend/internal/email"
	"caseflow_backend/internal/events"
	apphttp "caseflow_backend/internal/http"
	notifhandler "caseflow_backend/internal/notification/handler"
	"caseflow_backend/internal/notification/inapp"
	notificationoutbox "caseflow_backend/internal/notification/outbox"
	"caseflow_backend/internal/notification/sse"
	qdomain "caseflow_backend/internal/quotes/domain"
	wodomain "caseflow_backend/internal/workorders/domain"
	"caseflow_backend/platform/config"
	"caseflow_backend/platform/httpkit"
	"caseflow_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	invalidOutboxPayloadPrefix = "invalid payload: "
	maxOutboxRetryAttempts     = 5
	outboxRetryBaseDelay       = 30 * time.Second
	outboxRetryMaxDelay        = 15 * time.Minute
)

// Module handles all notification-related event subscriptions.
type Module struct {
	pool         *pgxpool.Pool
	sender       email.Sender
	cfg          config.NotificationConfig
	log          *logger.Logger
	sse          *sse.Service
	outbox       *notificationoutbox.Repository
	inAppService *inapp.Service
	inAppHandler *notifhandler.HTTPHandler
}

// New creates a new notification module.
func New(pool *pgxpool.Pool, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	inAppRepo := inapp.NewRepository(pool)
	inAppSvc := inapp.NewService(inAppRepo, log)

	return &Module{
		pool:         pool,
		sender:       sender,
		cfg:          cfg,
		log:          log,
		outbox:       notificationoutbox.New(pool),
		inAppService: inAppSvc,
		inAppHandler: notifhandler.NewHTTPHandler(inAppSvc),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// RegisterRoutes registers notification API routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	if m.inAppHandler == nil {
		return
	}

	notifications := ctx.Protected.Group("/notifications")
	m.inAppHandler.RegisterRoutes(notifications)

	if m.sse != nil {
		notifications.GET("/stream", m.sse.Handler(func(c *gin.Context) (uuid.UUID, bool) {
			identity := httpkit.GetIdentity(c)
			if identity == nil || !identity.IsAuthenticated() {
				return uuid.Nil, false
			}
			return identity.UserID(), true
		}))
	}
}

// SetSSE injects the SSE service so events can be pushed to connected users.
func (m *Module) SetSSE(s *sse.Service) {
	m.sse = s
	if m.inAppService != nil {
		m.inAppService.SetSSE(s)
	}
}

// InAppService exposes the in-app notification service for integration points.
func (m *Module) InAppService() *inapp.Service { return m.inAppService }

// Outbox exposes the outbox repository (used by the scheduler dispatcher).
func (m *Module) Outbox() *notificationoutbox.Repository { return m.outbox }

// RegisterHandlers subscribes the module to the domain events it acts on.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.CaseAccepted{}.EventName(), m)
	bus.Subscribe(events.CaseStatusChanged{}.EventName(), m)
	bus.Subscribe(events.JobConfirmed{}.EventName(), m)

	bus.Subscribe(events.QuoteSent{}.EventName(), m)
	bus.Subscribe(events.QuoteAccepted{}.EventName(), m)
	bus.Subscribe(events.QuoteDeclined{}.EventName(), m)
	bus.Subscribe(events.QuoteExpired{}.EventName(), m)

	bus.Subscribe(events.CounterProposed{}.EventName(), m)
	bus.Subscribe(events.CounterResolved{}.EventName(), m)

	bus.Subscribe(events.AppointmentReminderDue{}.EventName(), m)
	bus.Subscribe(events.NotificationOutboxDue{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.CaseAccepted:
		return m.handleCaseAccepted(ctx, e)
	case events.CaseStatusChanged:
		return m.handleCaseStatusChanged(ctx, e)
	case events.JobConfirmed:
		return m.handleJobConfirmed(ctx, e)
	case events.QuoteSent:
		return m.handleQuoteSent(ctx, e)
	case events.QuoteAccepted:
		return m.handleQuoteAccepted(ctx, e)
	case events.QuoteDeclined:
		return m.handleQuoteDeclined(ctx, e)
	case events.QuoteExpired:
		return m.handleQuoteExpired(ctx, e)
	case events.CounterProposed:
		return m.handleCounterProposed(ctx, e)
	case events.CounterResolved:
		return m.handleCounterResolved(ctx, e)
	case events.AppointmentReminderDue:
		return m.handleAppointmentReminderDue(ctx, e)
	case events.NotificationOutboxDue:
		return m.handleNotificationOutboxDue(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

// =============================================================================
// Recipient and context resolution
// =============================================================================

type recipient struct {
	ID    uuid.UUID
	Email string
	Name  string
}

func (m *Module) resolveRecipient(ctx context.Context, userID uuid.UUID) *recipient {
	if m.pool == nil || userID == uuid.Nil {
		return nil
	}
	var r recipient
	r.ID = userID
	err := m.pool.QueryRow(ctx,
		`SELECT email, display_name FROM users WHERE id = $1`,
		userID,
	).Scan(&r.Email, &r.Name)
	if err != nil {
		m.log.Warn("failed to resolve notification recipient", "userId", userID, "error", err)
		return nil
	}
	if strings.TrimSpace(r.Name) == "" {
		r.Name = "there"
	}
	return &r
}

func (m *Module) resolveCaseTitle(ctx context.Context, caseID uuid.UUID) string {
	if m.pool == nil || caseID == uuid.Nil {
		return ""
	}
	var title string
	if err := m.pool.QueryRow(ctx, `SELECT title FROM work_orders WHERE id = $1`, caseID).Scan(&title); err != nil {
		return ""
	}
	return strings.TrimSpace(title)
}

type quoteParties struct {
	CaseID       uuid.UUID
	CustomerID   uuid.UUID
	ContractorID uuid.UUID
}

func (m *Module) resolveQuoteParties(ctx context.Context, quoteID uuid.UUID) *quoteParties {
	if m.pool == nil || quoteID == uuid.Nil {
		return nil
	}
	var p quoteParties
	err := m.pool.QueryRow(ctx,
		`SELECT case_id, customer_id, contractor_id FROM quotes WHERE id = $1`,
		quoteID,
	).Scan(&p.CaseID, &p.CustomerID, &p.ContractorID)
	if err != nil {
		m.log.Warn("failed to resolve quote parties", "quoteId", quoteID, "error", err)
		return nil
	}
	return &p
}

func (m *Module) resolveAppointmentTitle(ctx context.Context, appointmentID uuid.UUID) string {
	if m.pool == nil || appointmentID == uuid.Nil {
		return ""
	}
	var title string
	if err := m.pool.QueryRow(ctx, `SELECT title FROM appointments WHERE id = $1`, appointmentID).Scan(&title); err != nil {
		return ""
	}
	return strings.TrimSpace(title)
}

// =============================================================================
// Delivery helpers
// =============================================================================

type emailSendOutboxPayload struct {
	ToEmail  string `json:"toEmail"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"bodyHtml"`
}

// enqueueEmail writes a rendered message to the outbox. Failures are logged,
// never propagated: notification loss must not fail the triggering event.
func (m *Module) enqueueEmail(ctx context.Context, to *recipient, msg email.Message, renderErr error) {
	if to == nil || strings.TrimSpace(to.Email) == "" {
		return
	}
	if renderErr != nil {
		m.log.Error("failed to render notification email", "recipient", to.ID, "error", renderErr)
		return
	}
	if m.outbox == nil {
		return
	}

	_, err := m.outbox.Insert(ctx, notificationoutbox.InsertParams{
		RecipientID: to.ID,
		Kind:        "email",
		Template:    "email_send",
		Payload: emailSendOutboxPayload{
			ToEmail:  to.Email,
			Subject:  msg.Subject,
			BodyHTML: msg.HTML,
		},
		RunAt: time.Now().UTC(),
	})
	if err != nil {
		m.log.Error("failed to enqueue notification email", "recipient", to.ID, "error", err)
	}
}

type inAppParams struct {
	UserID       uuid.UUID
	Title        string
	Content      string
	ResourceID   uuid.UUID
	ResourceType string
	Category     string
}

func (m *Module) sendInApp(ctx context.Context, p inAppParams) {
	if m.inAppService == nil || p.UserID == uuid.Nil {
		return
	}

	var resourceID *uuid.UUID
	if p.ResourceID != uuid.Nil {
		resourceID = &p.ResourceID
	}

	if err := m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       p.UserID,
		Title:        p.Title,
		Content:      p.Content,
		ResourceID:   resourceID,
		ResourceType: p.ResourceType,
		Category:     p.Category,
	}); err != nil {
		m.log.Warn("failed to send in-app notification", "userId", p.UserID, "error", err)
	}
}

func (m *Module) pushSSE(userID uuid.UUID, eventType sse.EventType, data any) {
	if m.sse == nil || userID == uuid.Nil {
		return
	}
	m.sse.Publish(userID, sse.Event{Type: eventType, Data: data})
}

func caseLabel(title string) string {
	if title == "" {
		return "your case"
	}
	return title
}

// =============================================================================
// Work-order events
// =============================================================================

func (m *Module) handleCaseAccepted(ctx context.Context, e events.CaseAccepted) error {
	title := m.resolveCaseTitle(ctx, e.CaseID)
	landlord := m.resolveRecipient(ctx, e.LandlordID)
	if landlord == nil {
		return nil
	}

	m.sendInApp(ctx, inAppParams{
		UserID:       landlord.ID,
		Title:        "Contractor found",
		Content:      fmt.Sprintf("A contractor picked up %s and is reviewing the job.", caseLabel(title)),
		ResourceID:   e.CaseID,
		ResourceType: "case",
		Category:     "success",
	})
	m.pushSSE(landlord.ID, sse.EventCaseAccepted, gin.H{"caseId": e.CaseID})

	msg, err := email.NewCaseAcceptedMessage(landlord.Name, caseLabel(title))
	m.enqueueEmail(ctx, landlord, msg, err)
	return nil
}

func (m *Module) handleCaseStatusChanged(ctx context.Context, e events.CaseStatusChanged) error {
	// The landlord acted themselves; no point echoing it back.
	if e.ActorID != nil && *e.ActorID == e.LandlordID {
		return nil
	}

	title := m.resolveCaseTitle(ctx, e.CaseID)
	m.sendInApp(ctx, inAppParams{
		UserID: e.LandlordID,
		Title:  "Case updated",
		Content: fmt.Sprintf("%s moved to %s.", caseLabel(title),
			wodomain.Status(e.NewStatus).Display()),
		ResourceID:   e.CaseID,
		ResourceType: "case",
	})
	return nil
}

func (m *Module) handleJobConfirmed(ctx context.Context, e events.JobConfirmed) error {
	title := m.resolveCaseTitle(ctx, e.CaseID)
	landlord := m.resolveRecipient(ctx, e.LandlordID)
	if landlord == nil {
		return nil
	}

	m.sendInApp(ctx, inAppParams{
		UserID:       landlord.ID,
		Title:        "Work scheduled",
		Content:      fmt.Sprintf("Work for %s starts on %s.", caseLabel(title), e.StartAt.Format("2 January 2006")),
		ResourceID:   e.CaseID,
		ResourceType: "case",
		Category:     "success",
	})
	m.pushSSE(landlord.ID, sse.EventJobConfirmed, gin.H{"caseId": e.CaseID, "startAt": e.StartAt})

	msg, err := email.NewJobConfirmedMessage(landlord.Name, caseLabel(title), e.StartAt, e.EndAt)
	m.enqueueEmail(ctx, landlord, msg, err)
	return nil
}

// =============================================================================
// Quote events
// =============================================================================

func (m *Module) handleQuoteSent(ctx context.Context, e events.QuoteSent) error {
	title := m.resolveCaseTitle(ctx, e.CaseID)
	customer := m.resolveRecipient(ctx, e.CustomerID)
	if customer == nil {
		return nil
	}

	m.sendInApp(ctx, inAppParams{
		UserID:       customer.ID,
		Title:        "New quote received",
		Content:      fmt.Sprintf("You received a quote for %s.", caseLabel(title)),
		ResourceID:   e.QuoteID,
		ResourceType: "quote",
	})
	m.pushSSE(customer.ID, sse.EventQuoteSent, gin.H{"quoteId": e.QuoteID, "caseId": e.CaseID})

	msg, err := email.NewQuoteReceivedMessage(customer.Name, caseLabel(title), e.TotalCents, e.ApprovalLink)
	m.enqueueEmail(ctx, customer, msg, err)
	return nil
}

func (m *Module) handleQuoteAccepted(ctx context.Context, e events.QuoteAccepted) error {
	title := m.resolveCaseTitle(ctx, e.CaseID)
	contractor := m.resolveRecipient(ctx, e.ContractorID)
	if contractor == nil {
		return nil
	}

	m.sendInApp(ctx, inAppParams{
		UserID:       contractor.ID,
		Title:        "Quote accepted",
		Content:      fmt.Sprintf("Your quote for %s was accepted.", caseLabel(title)),
		ResourceID:   e.QuoteID,
		ResourceType: "quote",
		Category:     "success",
	})
	m.pushSSE(contractor.ID, sse.EventQuoteAccepted, gin.H{"quoteId": e.QuoteID, "caseId": e.CaseID})

	msg, err := email.NewQuoteAcceptedMessage(contractor.Name, caseLabel(title), e.TotalCents)
	m.enqueueEmail(ctx, contractor, msg, err)
	return nil
}

func (m *Module) handleQuoteDeclined(ctx context.Context, e events.QuoteDeclined) error {
	title := m.resolveCaseTitle(ctx, e.CaseID)
	contractor := m.resolveRecipient(ctx, e.ContractorID)
	if contractor == nil {
		return nil
	}

	m.sendInApp(ctx, inAppParams{
		UserID:       contractor.ID,
		Title:        "Quote declined",
		Content:      fmt.Sprintf("Your quote for %s was declined.", caseLabel(title)),
		ResourceID:   e.QuoteID,
		ResourceType: "quote",
		Category:     "warning",
	})
	m.pushSSE(contractor.ID, sse.EventQuoteDeclined, gin.H{"quoteId": e.QuoteID, "caseId": e.CaseID})

	msg, err := email.NewQuoteDeclinedMessage(contractor.Name, caseLabel(title), e.Reason)
	m.enqueueEmail(ctx, contractor, msg, err)
	return nil
}

func (m *Module) handleQuoteExpired(ctx context.Context, e events.QuoteExpired) error {
	title := m.resolveCaseTitle(ctx, e.CaseID)
	contractor := m.resolveRecipient(ctx, e.ContractorID)
	if contractor == nil {
		return nil
	}

	m.sendInApp(ctx, inAppParams{
		UserID:       contractor.ID,
		Title:        "Quote expired",
		Content:      fmt.Sprintf("Your quote for %s expired without a response.", caseLabel(title)),
		ResourceID:   e.QuoteID,
		ResourceType: "quote",
		Category:     "warning",
	})

	msg, err := email.NewQuoteExpiredMessage(contractor.Name, caseLabel(title))
	m.enqueueEmail(ctx, contractor, msg, err)
	return nil
}

// =============================================================================
// Counter-proposal events
// =============================================================================

func (m *Module) handleCounterProposed(ctx context.Context, e events.CounterProposed) error {
	parties := m.resolveQuoteParties(ctx, e.QuoteID)
	if parties == nil {
		return nil
	}

	// The counterparty of the proposer gets notified.
	recipientID := parties.CustomerID
	if e.ProposedRole == "landlord" {
		recipientID = parties.ContractorID
	}

	title := m.resolveCaseTitle(ctx, e.CaseID)
	to := m.resolveRecipient(ctx, recipientID)
	if to == nil {
		return nil
	}

	m.sendInApp(ctx, inAppParams{
		UserID:       to.ID,
		Title:        "New counter-proposal",
		Content:      fmt.Sprintf("A counter-proposal was made on the quote for %s.", caseLabel(title)),
		ResourceID:   e.QuoteID,
		ResourceType: "quote",
	})
	m.pushSSE(to.ID, sse.EventCounterProposed, gin.H{"quoteId": e.QuoteID, "proposalId": e.ProposalID, "round": e.Round})

	msg, err := email.NewCounterProposalMessage(to.Name, caseLabel(title), e.ProposedTotal, m.quoteURL(e.QuoteID))
	m.enqueueEmail(ctx, to, msg, err)
	return nil
}

func (m *Module) quoteURL(quoteID uuid.UUID) string {
	base := strings.TrimRight(m.cfg.GetAppBaseURL(), "/")
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/quotes/%s", base, quoteID)
}

func (m *Module) handleCounterResolved(ctx context.Context, e events.CounterResolved) error {
	// Re-counters reject the prior round implicitly and raise their own
	// CounterProposed event, so the auto-rejection stays silent.
	if e.Reason == qdomain.CounterRejectedReason {
		return nil
	}

	parties := m.resolveQuoteParties(ctx, e.QuoteID)
	if parties == nil {
		return nil
	}

	title := m.resolveCaseTitle(ctx, parties.CaseID)
	content := fmt.Sprintf("The counter-proposal on the quote for %s was %s.", caseLabel(title), e.Outcome)
	category := "info"
	if e.Outcome == "accepted" {
		category = "success"
	}

	for _, userID := range []uuid.UUID{parties.CustomerID, parties.ContractorID} {
		m.sendInApp(ctx, inAppParams{
			UserID:       userID,
			Title:        "Counter-proposal " + e.Outcome,
			Content:      content,
			ResourceID:   e.QuoteID,
			ResourceType: "quote",
			Category:     category,
		})
	}
	return nil
}

// =============================================================================
// Appointment events
// =============================================================================

func (m *Module) handleAppointmentReminderDue(ctx context.Context, e events.AppointmentReminderDue) error {
	contractor := m.resolveRecipient(ctx, e.ContractorID)
	if contractor == nil {
		return nil
	}

	title := m.resolveAppointmentTitle(ctx, e.AppointmentID)
	if title == "" {
		title = "your appointment"
	}

	m.sendInApp(ctx, inAppParams{
		UserID:       contractor.ID,
		Title:        "Upcoming appointment",
		Content:      fmt.Sprintf("%s starts at %s.", title, e.StartAt.Format("15:04 on 2 January")),
		ResourceID:   e.AppointmentID,
		ResourceType: "appointment",
	})
	m.pushSSE(contractor.ID, sse.EventAppointmentReminder, gin.H{"appointmentId": e.AppointmentID, "startAt": e.StartAt})

	msg, err := email.NewAppointmentReminderMessage(contractor.Name, title, e.StartAt)
	m.enqueueEmail(ctx, contractor, msg, err)
	return nil
}

// =============================================================================
// Outbox processing
// =============================================================================

func (m *Module) handleNotificationOutboxDue(ctx context.Context, e events.NotificationOutboxDue) error {
	if m.outbox == nil {
		m.log.Debug("notification outbox repository not configured; skipping outbox due event", "outboxId", e.OutboxID)
		return nil
	}

	rec, process, err := m.prepareOutboxRecord(ctx, e.OutboxID)
	if err != nil || !process {
		if err != nil {
			m.log.Error("failed to prepare outbox record", "outboxId", e.OutboxID, "error", err)
		}
		return err
	}

	if rec.Kind != "email" || rec.Template != "email_send" {
		m.markOutboxUnsupported(ctx, rec)
		return nil
	}

	if processErr := m.processEmailOutbox(ctx, rec); processErr != nil {
		m.handleOutboxDeliveryError(ctx, rec, processErr)
		return processErr
	}

	m.log.Info("outbox record processed", "outboxId", rec.ID.String(), "kind", rec.Kind)
	return nil
}

func (m *Module) prepareOutboxRecord(ctx context.Context, outboxID uuid.UUID) (notificationoutbox.Record, bool, error) {
	rec, err := m.outbox.GetByID(ctx, outboxID)
	if err != nil {
		return notificationoutbox.Record{}, false, err
	}
	if rec.Status == notificationoutbox.StatusSucceeded {
		m.log.Debug("outbox record already succeeded; skipping", "outboxId", rec.ID.String())
		return rec, false, nil
	}
	if err := m.outbox.MarkProcessing(ctx, rec.ID); err != nil {
		return notificationoutbox.Record{}, false, err
	}
	return rec, true, nil
}

func (m *Module) processEmailOutbox(ctx context.Context, rec notificationoutbox.Record) error {
	var payload emailSendOutboxPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		_ = m.outbox.MarkFailed(ctx, rec.ID, invalidOutboxPayloadPrefix+err.Error())
		return nil
	}

	if strings.TrimSpace(payload.ToEmail) == "" {
		m.log.Debug("outbox email payload has no recipient; marking succeeded", "outboxId", rec.ID.String())
		_ = m.outbox.MarkSucceeded(ctx, rec.ID)
		return nil
	}
	if strings.TrimSpace(payload.Subject) == "" || strings.TrimSpace(payload.BodyHTML) == "" {
		_ = m.outbox.MarkFailed(ctx, rec.ID, invalidOutboxPayloadPrefix+"subject and bodyHtml are required")
		return nil
	}

	if err := m.sender.SendCustomEmail(ctx, payload.ToEmail, payload.Subject, payload.BodyHTML); err != nil {
		return err
	}

	_ = m.outbox.MarkSucceeded(ctx, rec.ID)
	m.log.Info("email outbox delivered", "outboxId", rec.ID.String(), "toEmail", payload.ToEmail)
	return nil
}

func (m *Module) handleOutboxDeliveryError(ctx context.Context, rec notificationoutbox.Record, deliveryErr error) {
	attempt := rec.Attempts + 1
	if attempt >= maxOutboxRetryAttempts {
		_ = m.outbox.MarkFailed(ctx, rec.ID, deliveryErr.Error())
		m.log.Warn("notification outbox exhausted retries",
			"outboxId", rec.ID.String(),
			"attempt", attempt,
			"maxAttempts", maxOutboxRetryAttempts,
			"error", deliveryErr,
		)
		return
	}

	retryAt := time.Now().UTC().Add(computeOutboxRetryDelay(attempt))
	if err := m.outbox.ScheduleRetry(ctx, rec.ID, retryAt, deliveryErr.Error()); err != nil {
		_ = m.outbox.MarkFailed(ctx, rec.ID, deliveryErr.Error())
		m.log.Error("notification outbox retry scheduling failed; marked failed",
			"outboxId", rec.ID.String(),
			"attempt", attempt,
			"error", err,
		)
		return
	}

	m.log.Warn("notification outbox scheduled retry",
		"outboxId", rec.ID.String(),
		"attempt", attempt,
		"retryAt", retryAt,
		"error", deliveryErr,
	)
}

func computeOutboxRetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := outboxRetryBaseDelay << (attempt - 1)
	if delay > outboxRetryMaxDelay {
		return outboxRetryMaxDelay
	}
	return delay
}

func (m *Module) markOutboxUnsupported(ctx context.Context, rec notificationoutbox.Record) {
	msg := fmt.Sprintf("unsupported outbox kind/template: %s/%s", rec.Kind, rec.Template)
	_ = m.outbox.MarkFailed(ctx, rec.ID, msg)
	m.log.Warn("unsupported outbox record", "outboxId", rec.ID.String(), "kind", rec.Kind, "template", rec.Template)
}
