package intake

import (
	"agencysite/catalog"
	"agencysite/email"
	"agencysite/models"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	receivedAtLayout       = "Monday, January 2, 2006 at 3:04 PM MST"
	defaultFollowUpTimeout = 35 * time.Second
)

// Receipt identifies an accepted brief.
type Receipt struct {
	ID               string
	NotificationID   string
	ConfirmationSent bool
}

// Dispatcher delivers a validated, normalized brief.
type Dispatcher interface {
	Dispatch(ctx context.Context, brief models.ProjectBriefSubmission) (Receipt, error)
}

// LeadStore archives briefs after the team has been notified.
type LeadStore interface {
	InsertLead(ctx context.Context, lead models.Lead) error
}

// NotifyError means the internal notification could not be delivered. The
// brief is lost unless the client retries, so the request fails.
type NotifyError struct {
	Err error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("failed to send notification: %v", e.Err)
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}

// NotificationResult is the outcome of the essential notify step.
type NotificationResult struct {
	MessageID string
}

// ConfirmationResult is the outcome of the best-effort confirm step. Err is
// logged and never fails the request.
type ConfirmationResult struct {
	MessageID string
	Err       error
}

// Sent reports whether the confirmation reached the provider.
func (r ConfirmationResult) Sent() bool {
	return r.Err == nil
}

// DevDispatcher logs briefs instead of sending email. Used when no provider
// credential is configured.
type DevDispatcher struct {
	log   *zap.Logger
	newID func() string
}

func NewDevDispatcher(log *zap.Logger) *DevDispatcher {
	return &DevDispatcher{
		log:   log.Named("intake.dev"),
		newID: func() string { return uuid.NewString() },
	}
}

func (d *DevDispatcher) Dispatch(ctx context.Context, brief models.ProjectBriefSubmission) (Receipt, error) {
	id := "dev-" + d.newID()

	d.log.Info("project brief received (development mode, no email sent)",
		zap.String("id", id),
		zap.String("name", brief.Name),
		zap.String("email", brief.Email),
		zap.String("company", brief.Company),
		zap.String("phone", brief.Phone),
		zap.Strings("services", brief.Services),
		zap.String("project_goals", brief.ProjectGoals),
		zap.String("target_audience", brief.TargetAudience),
		zap.String("launch_date", brief.LaunchDate),
		zap.String("budget_range", brief.BudgetRange),
		zap.String("existing_website", brief.ExistingWebsite),
		zap.String("hosting_preference", brief.HostingPreference),
		zap.String("required_integrations", brief.RequiredIntegrations),
	)

	return Receipt{ID: id}, nil
}

// LiveOptions are the fixed values used when formatting emails.
type LiveOptions struct {
	NotifyTo      string
	SchedulingURL string
	Location      *time.Location
	Now           func() time.Time
	// FollowUpTimeout bounds the confirmation and archive steps, which run
	// detached from the request once the team has been notified.
	FollowUpTimeout time.Duration
}

// LiveDispatcher sends the internal notification and then the customer
// confirmation. The notification must succeed; the confirmation and the
// archive write are best-effort.
type LiveDispatcher struct {
	sender   email.Sender
	renderer *email.Renderer
	store    LeadStore
	opts     LiveOptions
	log      *zap.Logger
}

func NewLiveDispatcher(sender email.Sender, renderer *email.Renderer, opts LiveOptions, log *zap.Logger) *LiveDispatcher {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FollowUpTimeout <= 0 {
		opts.FollowUpTimeout = defaultFollowUpTimeout
	}
	return &LiveDispatcher{
		sender:   sender,
		renderer: renderer,
		opts:     opts,
		log:      log.Named("intake.live"),
	}
}

// WithArchive enables the lead archive. A nil store leaves it disabled.
func (d *LiveDispatcher) WithArchive(store LeadStore) *LiveDispatcher {
	d.store = store
	return d
}

func (d *LiveDispatcher) Dispatch(ctx context.Context, brief models.ProjectBriefSubmission) (Receipt, error) {
	receivedAt := d.opts.Now()
	labels := catalog.ServiceLabels(brief.Services)

	notified, err := d.notify(ctx, brief, labels, receivedAt)
	if err != nil {
		return Receipt{}, err
	}

	// Confirm and archive outlive a disconnected client once the team has the brief.
	followUp, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.FollowUpTimeout)
	defer cancel()

	confirmed := d.confirm(followUp, brief, labels)
	if confirmed.Err != nil {
		d.log.Warn("confirmation email failed, brief already delivered to team",
			zap.String("to", brief.Email),
			zap.String("notification_id", notified.MessageID),
			zap.Error(confirmed.Err))
	}

	id := uuid.New()
	d.archive(followUp, id, brief, receivedAt, notified, confirmed)

	d.log.Info("project brief dispatched",
		zap.String("id", id.String()),
		zap.String("company", brief.Company),
		zap.Bool("confirmation_sent", confirmed.Sent()))

	return Receipt{
		ID:               id.String(),
		NotificationID:   notified.MessageID,
		ConfirmationSent: confirmed.Sent(),
	}, nil
}

// notify is the essential step. Render failures are returned as plain
// errors, provider failures as *NotifyError.
func (d *LiveDispatcher) notify(ctx context.Context, brief models.ProjectBriefSubmission, labels []string, receivedAt time.Time) (NotificationResult, error) {
	rendered, err := d.renderer.RenderNotification(email.NotificationData{
		Name:                 brief.Name,
		Email:                brief.Email,
		Company:              brief.Company,
		Phone:                brief.Phone,
		ServiceLabels:        labels,
		ProjectGoals:         brief.ProjectGoals,
		TargetAudience:       brief.TargetAudience,
		LaunchDate:           brief.LaunchDate,
		BudgetLabel:          catalog.BudgetLabel(brief.BudgetRange),
		ExistingWebsite:      brief.ExistingWebsite,
		HostingLabel:         catalog.HostingLabel(brief.HostingPreference),
		RequiredIntegrations: brief.RequiredIntegrations,
		ReceivedAt:           receivedAt.In(d.opts.Location).Format(receivedAtLayout),
	})
	if err != nil {
		return NotificationResult{}, fmt.Errorf("failed to render notification: %w", err)
	}

	messageID, err := d.sender.Send(ctx, email.Message{
		To:      d.opts.NotifyTo,
		ReplyTo: brief.Email,
		Subject: NotificationSubject(brief.Company, labels),
		HTML:    rendered.HTML,
		Text:    rendered.Text,
	})
	if err != nil {
		d.log.Error("internal notification failed",
			zap.String("company", brief.Company),
			zap.Error(err))
		return NotificationResult{}, &NotifyError{Err: err}
	}

	return NotificationResult{MessageID: messageID}, nil
}

// confirm is the best-effort step; it never returns an error.
func (d *LiveDispatcher) confirm(ctx context.Context, brief models.ProjectBriefSubmission, labels []string) ConfirmationResult {
	rendered, err := d.renderer.RenderConfirmation(email.ConfirmationData{
		Name:          brief.Name,
		Company:       brief.Company,
		ServiceLabels: labels,
		BudgetLabel:   catalog.BudgetLabel(brief.BudgetRange),
		LaunchDate:    brief.LaunchDate,
		SchedulingURL: d.opts.SchedulingURL,
	})
	if err != nil {
		return ConfirmationResult{Err: fmt.Errorf("failed to render confirmation: %w", err)}
	}

	messageID, err := d.sender.Send(ctx, email.Message{
		To:      brief.Email,
		Subject: ConfirmationSubject(brief.Name),
		HTML:    rendered.HTML,
		Text:    rendered.Text,
	})
	if err != nil {
		return ConfirmationResult{Err: err}
	}

	return ConfirmationResult{MessageID: messageID}
}

func (d *LiveDispatcher) archive(ctx context.Context, id uuid.UUID, brief models.ProjectBriefSubmission, receivedAt time.Time, notified NotificationResult, confirmed ConfirmationResult) {
	if d.store == nil {
		return
	}

	lead := models.NewLead(id, brief, receivedAt)
	lead.NotificationMessageID = notified.MessageID
	lead.ConfirmationMessageID = confirmed.MessageID
	lead.ConfirmationSent = confirmed.Sent()

	if err := d.store.InsertLead(ctx, lead); err != nil {
		d.log.Error("failed to archive lead",
			zap.String("id", id.String()),
			zap.Error(err))
	}
}

// NotificationSubject is the subject of the internal notification.
func NotificationSubject(company string, labels []string) string {
	return fmt.Sprintf("New Project Brief: %s - %s", company, strings.Join(labels, ", "))
}

// ConfirmationSubject is the subject of the customer confirmation.
func ConfirmationSubject(name string) string {
	return fmt.Sprintf("We received your project brief, %s", name)
}
