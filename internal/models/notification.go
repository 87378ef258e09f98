// internal/models/notification.go
package models

// Event kinds and permission keys shared by the dispatcher and its transports.
const (
	EventChangeReturnStatus = "changeReturnStatus"
	PermitGoodsReturn       = "tsGoodsReturn"
)

// EmailMessage is one rendered email handed to the mail transport.
type EmailMessage struct {
	From    string `json:"emailFrom"`
	To      string `json:"emailTo"`
	Subject string `json:"subject"`
	Body    string `json:"message"`
}

// EmailMeta tags a submission. ClientID and StatusCode are zero for staff mail.
type EmailMeta struct {
	ResellerID int    `json:"resellerId"`
	EventKind  string `json:"eventKind"`
	ClientID   int    `json:"clientId,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// SMSRequest is the payload for the client SMS transport. Context carries the
// fully validated template variables.
type SMSRequest struct {
	ResellerID int               `json:"resellerId"`
	ClientID   int               `json:"clientId"`
	Mobile     string            `json:"mobile"`
	EventKind  string            `json:"eventKind"`
	StatusCode int               `json:"statusCode"`
	Context    map[string]string `json:"context"`
}
