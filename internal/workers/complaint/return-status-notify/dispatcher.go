package returnstatusnotify

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"return-notifier/internal/common/logger"
	"return-notifier/internal/common/metrics"
	"return-notifier/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DispatchRequest carries everything the sub-flows need. Context must have
// passed validation.
type DispatchRequest struct {
	Input   *Input
	Context *TemplateContext
	Client  *models.Contractor
}

// Dispatcher fans a notification out to staff email, client email and
// client SMS. A failure in one channel never prevents the others.
type Dispatcher struct {
	config   *Config
	roster   Roster
	senders  SenderDirectory
	renderer Renderer
	email    EmailTransport
	sms      SMSTransport
	logger   logger.Logger
}

func NewDispatcher(cfg *Config, deps ServiceDependencies) *Dispatcher {
	return &Dispatcher{
		config:   cfg,
		roster:   deps.Roster,
		senders:  deps.Senders,
		renderer: deps.Renderer,
		email:    deps.Email,
		sms:      deps.SMS,
		logger:   deps.Logger,
	}
}

type subFlow struct {
	channel Channel
	run     func(ctx context.Context) ChannelOutcome
}

// Dispatch runs the three sub-flows and aggregates their outcomes.
func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) Output {
	log := d.logger.WithFields(map[string]interface{}{
		"dispatchId": uuid.NewString(),
		"resellerId": req.Input.ResellerID,
		"clientId":   req.Input.ClientID,
	})

	sender := d.resolveSender(ctx, req.Input.ResellerID, log)
	vars := req.Context.Vars()

	// evaluated once for both client channels
	notifyClient := req.Input.NotifiesClient()

	flows := []subFlow{
		{ChannelStaffEmail, func(ctx context.Context) ChannelOutcome {
			return d.notifyStaff(ctx, req, sender, vars, log)
		}},
		{ChannelClientEmail, func(ctx context.Context) ChannelOutcome {
			if !notifyClient {
				return ChannelOutcome{Channel: ChannelClientEmail}
			}
			return d.emailClient(ctx, req, sender, vars)
		}},
		{ChannelClientSMS, func(ctx context.Context) ChannelOutcome {
			if !notifyClient {
				return ChannelOutcome{Channel: ChannelClientSMS}
			}
			return d.smsClient(ctx, req, vars)
		}},
	}

	outcomes := make([]ChannelOutcome, len(flows))
	if d.config.Parallel {
		var g errgroup.Group
		for i, f := range flows {
			g.Go(func() error {
				outcomes[i] = guard(ctx, f, log)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, f := range flows {
			outcomes[i] = guard(ctx, f, log)
		}
	}

	for _, o := range outcomes {
		record(o, log)
	}
	return Aggregate(outcomes...)
}

// guard runs one sub-flow and converts a panic into a failed outcome.
func guard(ctx context.Context, f subFlow, log logger.Logger) (out ChannelOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("dispatch sub-flow panicked", map[string]interface{}{
				"channel": string(f.channel),
				"panic":   fmt.Sprint(r),
				"stack":   string(debug.Stack()),
			})
			out = ChannelOutcome{Channel: f.channel, Attempted: true, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return f.run(ctx)
}

func record(o ChannelOutcome, log logger.Logger) {
	outcome := metrics.OutcomeSkipped
	switch {
	case o.Sent:
		outcome = metrics.OutcomeSent
	case o.Attempted || o.Err != nil:
		outcome = metrics.OutcomeFailed
	}
	metrics.NotificationChannelDispatch.WithLabelValues(string(o.Channel), outcome).Inc()

	if o.Err != nil {
		log.Warn("notification channel failed", map[string]interface{}{
			"channel": string(o.Channel),
			"error":   o.Err,
		})
	}
}

func (d *Dispatcher) resolveSender(ctx context.Context, resellerID int, log logger.Logger) string {
	sender, err := d.senders.DefaultSenderEmail(ctx, resellerID)
	if err != nil {
		log.Warn("sender lookup failed, email channels disabled", map[string]interface{}{"error": err})
		return ""
	}
	return sender
}

func (d *Dispatcher) notifyStaff(ctx context.Context, req DispatchRequest, sender string, vars map[string]string, log logger.Logger) ChannelOutcome {
	out := ChannelOutcome{Channel: ChannelStaffEmail}
	if !d.config.EmailEnabled || sender == "" {
		return out
	}

	resellerID := req.Input.ResellerID
	recipients, err := d.roster.EmailsPermittedFor(ctx, resellerID, models.PermitGoodsReturn)
	if err != nil {
		out.Err = fmt.Errorf("roster lookup: %w", err)
		return out
	}
	if len(recipients) == 0 {
		return out
	}
	out.Attempted = true

	meta := models.EmailMeta{ResellerID: resellerID, EventKind: models.EventChangeReturnStatus}

	var sent atomic.Bool
	var g errgroup.Group
	g.SetLimit(d.config.MaxParallelSends)
	for _, to := range recipients {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic: %v", r)
				}
				if err != nil {
					log.Warn("staff email not sent", map[string]interface{}{"emailTo": to, "error": err})
				}
			}()

			msg, err := d.renderEmail(sender, to, TemplateEmployeeEmailSubject, TemplateEmployeeEmailBody, vars, resellerID)
			if err != nil {
				return err
			}
			if err := d.email.SendEmail(ctx, msg, meta); err != nil {
				return err
			}
			sent.Store(true)
			return nil
		})
	}
	// per-recipient errors are logged above and never unset the flag
	_ = g.Wait()

	out.Sent = sent.Load()
	return out
}

func (d *Dispatcher) emailClient(ctx context.Context, req DispatchRequest, sender string, vars map[string]string) ChannelOutcome {
	out := ChannelOutcome{Channel: ChannelClientEmail}
	if !d.config.EmailEnabled || sender == "" || req.Client == nil || req.Client.Email == "" {
		return out
	}
	out.Attempted = true

	resellerID := req.Input.ResellerID
	msg, err := d.renderEmail(sender, req.Client.Email, TemplateClientEmailSubject, TemplateClientEmailBody, vars, resellerID)
	if err != nil {
		out.Err = err
		return out
	}

	meta := models.EmailMeta{
		ResellerID: resellerID,
		EventKind:  models.EventChangeReturnStatus,
		ClientID:   req.Client.ID,
		StatusCode: req.Input.Differences.To,
	}
	if err := d.email.SendEmail(ctx, msg, meta); err != nil {
		out.Err = err
		return out
	}
	out.Sent = true
	return out
}

func (d *Dispatcher) smsClient(ctx context.Context, req DispatchRequest, vars map[string]string) ChannelOutcome {
	out := ChannelOutcome{Channel: ChannelClientSMS}
	if !d.config.SMSEnabled || req.Client == nil || req.Client.Mobile == "" {
		return out
	}
	out.Attempted = true

	sent, err := d.sms.Send(ctx, models.SMSRequest{
		ResellerID: req.Input.ResellerID,
		ClientID:   req.Client.ID,
		Mobile:     req.Client.Mobile,
		EventKind:  models.EventChangeReturnStatus,
		StatusCode: req.Input.Differences.To,
		Context:    vars,
	})
	out.Sent = sent
	if err != nil {
		out.Err = err
		out.Message = err.Error()
	}
	return out
}

func (d *Dispatcher) renderEmail(from, to, subjectKey, bodyKey string, vars map[string]string, resellerID int) (models.EmailMessage, error) {
	subject, err := d.renderer.Render(subjectKey, vars, resellerID)
	if err != nil {
		return models.EmailMessage{}, fmt.Errorf("render %s: %w", subjectKey, err)
	}
	body, err := d.renderer.Render(bodyKey, vars, resellerID)
	if err != nil {
		return models.EmailMessage{}, fmt.Errorf("render %s: %w", bodyKey, err)
	}
	return models.EmailMessage{From: from, To: to, Subject: subject, Body: body}, nil
}
