// internal/common/aws/sns.go
package aws

import (
	"context"
	"fmt"
	"strconv"

	"return-notifier/internal/common/logger"
	"return-notifier/internal/common/validation"
	"return-notifier/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSService is the subset of the SNS client used here.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// BodyRenderer renders the SMS text for a reseller.
type BodyRenderer interface {
	Render(key string, vars map[string]string, resellerID int) (string, error)
}

// SNSNotifier sends client SMS notifications through SNS.
type SNSNotifier struct {
	client      SNSService
	renderer    BodyRenderer
	templateKey string
	senderID    string
	logger      logger.Logger
}

func NewSNSNotifier(client SNSService, renderer BodyRenderer, templateKey, senderID string, log logger.Logger) *SNSNotifier {
	return &SNSNotifier{
		client:      client,
		renderer:    renderer,
		templateKey: templateKey,
		senderID:    senderID,
		logger:      log.WithFields(map[string]interface{}{"transport": "sns"}),
	}
}

// Send renders the SMS body from req.Context and publishes it to req.Mobile.
// The returned error, if any, is meant to be shown to the caller verbatim.
func (n *SNSNotifier) Send(ctx context.Context, req models.SMSRequest) (bool, error) {
	if !validation.ValidatePhone(req.Mobile) {
		return false, fmt.Errorf("invalid mobile number for client %d", req.ClientID)
	}

	body, err := n.renderer.Render(n.templateKey, req.Context, req.ResellerID)
	if err != nil {
		return false, fmt.Errorf("render sms: %w", err)
	}
	if body == "" {
		return false, fmt.Errorf("sms template %s rendered empty", n.templateKey)
	}

	out, err := n.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(req.Mobile),
		Message:           aws.String(body),
		MessageAttributes: n.attributes(req),
	})
	if err != nil {
		return false, fmt.Errorf("sns publish: %w", err)
	}

	n.logger.Debug("sms published", map[string]interface{}{
		"messageId":  aws.ToString(out.MessageId),
		"resellerId": req.ResellerID,
		"clientId":   req.ClientID,
		"statusCode": req.StatusCode,
	})
	return true, nil
}

func (n *SNSNotifier) attributes(req models.SMSRequest) map[string]types.MessageAttributeValue {
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
		"eventKind":           {DataType: aws.String("String"), StringValue: aws.String(req.EventKind)},
		"statusCode":          {DataType: aws.String("Number"), StringValue: aws.String(strconv.Itoa(req.StatusCode))},
	}
	if n.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(n.senderID)}
	}
	return attrs
}
