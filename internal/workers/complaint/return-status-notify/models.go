package returnstatusnotify

import (
	"return-notifier/internal/common/logger"
	"return-notifier/internal/common/observability"
)

// NotificationType distinguishes a newly registered return from a status
// transition of an existing one.
type NotificationType int

const (
	NotificationTypeNew    NotificationType = 1
	NotificationTypeChange NotificationType = 2
)

// Differences holds the status transition of a CHANGE event.
type Differences struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Input is the inbound event after coercion. Zero values mean "absent".
type Input struct {
	ResellerID        int              `json:"resellerId"`
	NotificationType  NotificationType `json:"notificationType"`
	ComplaintID       int              `json:"complaintId"`
	ComplaintNumber   string           `json:"complaintNumber"`
	CreatorID         int              `json:"creatorId"`
	ExpertID          int              `json:"expertId"`
	ClientID          int              `json:"clientId"`
	ConsumptionID     int              `json:"consumptionId"`
	ConsumptionNumber string           `json:"consumptionNumber"`
	AgreementNumber   string           `json:"agreementNumber"`
	Date              string           `json:"date"`
	Differences       *Differences     `json:"differences,omitempty"`
}

// HasTarget reports whether a destination status was supplied. Status code 0
// counts as absent.
func (in *Input) HasTarget() bool {
	return in.Differences != nil && in.Differences.To != 0
}

// NotifiesClient is the gate for both client channels.
func (in *Input) NotifiesClient() bool {
	return in.NotificationType == NotificationTypeChange && in.HasTarget()
}

// SMSResult is the client SMS part of the response.
type SMSResult struct {
	IsSent  bool   `json:"isSent"`
	Message string `json:"message"`
}

// Output is the per-channel result returned to the caller.
type Output struct {
	NotificationEmployeeByEmail bool      `json:"notificationEmployeeByEmail"`
	NotificationClientByEmail   bool      `json:"notificationClientByEmail"`
	NotificationClientBySms     SMSResult `json:"notificationClientBySms"`
}

// Channel names a delivery mechanism.
type Channel string

const (
	ChannelStaffEmail  Channel = "staff_email"
	ChannelClientEmail Channel = "client_email"
	ChannelClientSMS   Channel = "client_sms"
)

// ChannelOutcome is what one dispatch sub-flow reports back.
type ChannelOutcome struct {
	Channel   Channel
	Attempted bool
	Sent      bool
	// Message is surfaced to the caller; only the SMS channel sets it.
	Message string
	Err     error
}

// Stage is a pipeline state.
type Stage string

const (
	StageStart        Stage = "start"
	StageValidated    Stage = "validated"
	StageContextBuilt Stage = "context_built"
	StageDispatching  Stage = "dispatching"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

// Template keys and their variables.
const (
	TemplateNewPositionAdded         = "NewPositionAdded"
	TemplatePositionStatusHasChanged = "PositionStatusHasChanged"
	TemplateEmployeeEmailSubject     = "complaintEmployeeEmailSubject"
	TemplateEmployeeEmailBody        = "complaintEmployeeEmailBody"
	TemplateClientEmailSubject       = "complaintClientEmailSubject"
	TemplateClientEmailBody          = "complaintClientEmailBody"
)

// ServiceDependencies are the collaborators the pipeline is built from.
type ServiceDependencies struct {
	Entities      EntityStore
	Roster        Roster
	Senders       SenderDirectory
	Statuses      StatusNamer
	Renderer      Renderer
	Email         EmailTransport
	SMS           SMSTransport
	Logger        logger.Logger
	Observability *observability.Observability
}
