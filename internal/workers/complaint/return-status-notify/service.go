package returnstatusnotify

import (
	"context"
	"time"

	"return-notifier/internal/common/errors"
	"return-notifier/internal/common/logger"
	"return-notifier/internal/common/metrics"
	"return-notifier/internal/common/observability"

	"go.opentelemetry.io/otel/attribute"
)

// StageError is returned when the pipeline aborts before dispatch. It wraps
// the StandardError describing the cause.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Service runs validate, resolve, build, validate context, dispatch.
type Service struct {
	config     *Config
	logger     logger.Logger
	obs        *observability.Observability
	resolver   *EntityResolver
	builder    *ContextBuilder
	dispatcher *Dispatcher
}

func NewService(deps ServiceDependencies, cfg *Config) *Service {
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	deps.Logger = deps.Logger.WithFields(map[string]interface{}{"taskType": TaskType})

	resolver := NewEntityResolver(deps.Entities)
	return &Service{
		config:     cfg,
		logger:     deps.Logger,
		obs:        deps.Observability,
		resolver:   resolver,
		builder:    NewContextBuilder(resolver, deps.Renderer, deps.Statuses),
		dispatcher: NewDispatcher(cfg, deps),
	}
}

// Execute processes one event. Errors are returned only for failures before
// dispatch; channel failures are reported in the Output.
func (s *Service) Execute(ctx context.Context, input *Input) (output *Output, err error) {
	start := time.Now()
	stage := StageStart

	ctx, endSpan := s.obs.StartSpan(ctx, "return-status-notify",
		attribute.Int("resellerId", input.ResellerID),
		attribute.Int("notificationType", int(input.NotificationType)),
	)
	defer func() {
		endSpan(err)
		s.obs.RecordPipeline(ctx, time.Since(start), string(stage))
	}()

	// fail records an abort at the current stage.
	fail := func(cause error) error {
		at := stage
		stage = StageFailed
		code := errors.CodeOf(cause)
		metrics.NotificationPipelineFailures.WithLabelValues(string(at), string(code)).Inc()
		s.logger.Warn("notification pipeline aborted", map[string]interface{}{
			"stage":      string(at),
			"errorCode":  string(code),
			"error":      cause,
			"resellerId": input.ResellerID,
		})
		return &StageError{Stage: at, Err: cause}
	}

	if err := input.Validate(); err != nil {
		return nil, fail(err)
	}
	stage = StageValidated

	if _, err := s.resolver.ResolveSeller(ctx, input.ResellerID); err != nil {
		return nil, fail(err)
	}
	tc, client, err := s.builder.Build(ctx, input)
	if err != nil {
		return nil, fail(err)
	}
	stage = StageContextBuilt

	if err := tc.Validate(); err != nil {
		return nil, fail(err)
	}

	stage = StageDispatching
	result := s.dispatcher.Dispatch(ctx, DispatchRequest{Input: input, Context: tc, Client: client})
	stage = StageDone

	s.logger.Info("notification dispatched", map[string]interface{}{
		"resellerId":       input.ResellerID,
		"complaintId":      input.ComplaintID,
		"notificationType": int(input.NotificationType),
		"employeeByEmail":  result.NotificationEmployeeByEmail,
		"clientByEmail":    result.NotificationClientByEmail,
		"clientBySms":      result.NotificationClientBySms.IsSent,
		"durationMs":       time.Since(start).Milliseconds(),
	})
	return &result, nil
}
