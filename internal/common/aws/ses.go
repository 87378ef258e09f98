// internal/common/aws/ses.go
package aws

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"return-notifier/internal/common/logger"
	"return-notifier/internal/common/validation"
	"return-notifier/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESService is the subset of the SES client used here.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer submits rendered emails through SES.
type SESMailer struct {
	client           SESService
	configurationSet string
	logger           logger.Logger
}

func NewSESMailer(client SESService, configurationSet string, log logger.Logger) *SESMailer {
	return &SESMailer{
		client:           client,
		configurationSet: configurationSet,
		logger:           log.WithFields(map[string]interface{}{"transport": "ses"}),
	}
}

// SendEmail sends msg and tags it with the event kind, reseller and, for
// client mail, the client id and destination status.
func (m *SESMailer) SendEmail(ctx context.Context, msg models.EmailMessage, meta models.EmailMeta) error {
	if !validation.ValidateEmail(msg.To) {
		return fmt.Errorf("invalid recipient address %q", msg.To)
	}

	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
				Html: &types.Content{Data: aws.String(htmlBody(msg.Body)), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(msg.From),
		Tags:   messageTags(meta),
	}
	if m.configurationSet != "" {
		input.ConfigurationSetName = aws.String(m.configurationSet)
	}

	out, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", msg.To, err)
	}

	m.logger.Debug("email submitted", map[string]interface{}{
		"messageId":  aws.ToString(out.MessageId),
		"resellerId": meta.ResellerID,
		"eventKind":  meta.EventKind,
	})
	return nil
}

// htmlBody escapes the plain-text body and keeps its line breaks.
func htmlBody(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>\n")
}

func messageTags(meta models.EmailMeta) []types.MessageTag {
	tags := []types.MessageTag{
		{Name: aws.String("event"), Value: aws.String(meta.EventKind)},
		{Name: aws.String("reseller"), Value: aws.String(strconv.Itoa(meta.ResellerID))},
	}
	if meta.ClientID != 0 {
		tags = append(tags, types.MessageTag{Name: aws.String("client"), Value: aws.String(strconv.Itoa(meta.ClientID))})
	}
	if meta.StatusCode != 0 {
		tags = append(tags, types.MessageTag{Name: aws.String("status"), Value: aws.String(strconv.Itoa(meta.StatusCode))})
	}
	return tags
}
