package returnstatusnotify

import (
	"context"

	"return-notifier/internal/models"
)

// EntityStore finds the records an event refers to. Absent records are
// reported as nil with a nil error.
type EntityStore interface {
	FindSellerByID(ctx context.Context, id int) (*models.Seller, error)
	FindContractorByID(ctx context.Context, id int) (*models.Contractor, error)
	FindEmployeeByID(ctx context.Context, id int) (*models.Employee, error)
}

// Roster lists staff addresses allowed to receive an event for a reseller.
type Roster interface {
	EmailsPermittedFor(ctx context.Context, resellerID int, permit string) ([]string, error)
}

// SenderDirectory resolves the from-address used for a reseller's mail.
type SenderDirectory interface {
	DefaultSenderEmail(ctx context.Context, resellerID int) (string, error)
}

// StatusNamer maps a return status code to its display name.
type StatusNamer interface {
	StatusName(ctx context.Context, code int) (string, error)
}

// Renderer turns a template key and variables into localized text.
type Renderer interface {
	Render(key string, vars map[string]string, resellerID int) (string, error)
}

// EmailTransport submits one email. Submission is best effort.
type EmailTransport interface {
	SendEmail(ctx context.Context, msg models.EmailMessage, meta models.EmailMeta) error
}

// SMSTransport sends the client SMS. A non-nil error carries the message to
// report, independent of the sent flag.
type SMSTransport interface {
	Send(ctx context.Context, req models.SMSRequest) (bool, error)
}
