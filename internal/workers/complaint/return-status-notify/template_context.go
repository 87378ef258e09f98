package returnstatusnotify

import (
	"context"
	"strconv"

	"return-notifier/internal/common/errors"
	"return-notifier/internal/models"
)

// TemplateContext holds the values available to every template. Field order
// is the order keys are validated and serialized in.
type TemplateContext struct {
	ComplaintID       int    `json:"COMPLAINT_ID"`
	ComplaintNumber   string `json:"COMPLAINT_NUMBER"`
	CreatorID         int    `json:"CREATOR_ID"`
	CreatorName       string `json:"CREATOR_NAME"`
	ExpertID          int    `json:"EXPERT_ID"`
	ExpertName        string `json:"EXPERT_NAME"`
	ClientID          int    `json:"CLIENT_ID"`
	ClientName        string `json:"CLIENT_NAME"`
	ConsumptionID     int    `json:"CONSUMPTION_ID"`
	ConsumptionNumber string `json:"CONSUMPTION_NUMBER"`
	AgreementNumber   string `json:"AGREEMENT_NUMBER"`
	Date              string `json:"DATE"`
	Differences       string `json:"DIFFERENCES"`
}

// ContextField is one key/value pair of the context.
type ContextField struct {
	Key   string
	Value interface{}
}

// Fields returns the context in declaration order.
func (c *TemplateContext) Fields() []ContextField {
	return []ContextField{
		{"COMPLAINT_ID", c.ComplaintID},
		{"COMPLAINT_NUMBER", c.ComplaintNumber},
		{"CREATOR_ID", c.CreatorID},
		{"CREATOR_NAME", c.CreatorName},
		{"EXPERT_ID", c.ExpertID},
		{"EXPERT_NAME", c.ExpertName},
		{"CLIENT_ID", c.ClientID},
		{"CLIENT_NAME", c.ClientName},
		{"CONSUMPTION_ID", c.ConsumptionID},
		{"CONSUMPTION_NUMBER", c.ConsumptionNumber},
		{"AGREEMENT_NUMBER", c.AgreementNumber},
		{"DATE", c.Date},
		{"DIFFERENCES", c.Differences},
	}
}

func (c *TemplateContext) Keys() []string {
	fields := c.Fields()
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the value stored under key and whether the key exists.
func (c *TemplateContext) Get(key string) (interface{}, bool) {
	for _, f := range c.Fields() {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Validate fails on the first empty field.
func (c *TemplateContext) Validate() error {
	for _, f := range c.Fields() {
		if isEmptyValue(f.Value) {
			return errors.NewIncompleteTemplateDataError(f.Key)
		}
	}
	return nil
}

// Vars renders every value as text for the renderer and the SMS transport.
func (c *TemplateContext) Vars() map[string]string {
	fields := c.Fields()
	vars := make(map[string]string, len(fields))
	for _, f := range fields {
		switch v := f.Value.(type) {
		case int:
			vars[f.Key] = strconv.Itoa(v)
		case string:
			vars[f.Key] = v
		}
	}
	return vars
}

func isEmptyValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case int:
		return val == 0
	case string:
		return val == ""
	default:
		return false
	}
}

// ContextBuilder assembles the template context from the event and the
// records it references.
type ContextBuilder struct {
	resolver *EntityResolver
	renderer Renderer
	statuses StatusNamer
}

func NewContextBuilder(resolver *EntityResolver, renderer Renderer, statuses StatusNamer) *ContextBuilder {
	return &ContextBuilder{resolver: resolver, renderer: renderer, statuses: statuses}
}

// Build resolves the client, creator and expert and renders the differences
// text. The client is returned so dispatch does not look it up again.
func (b *ContextBuilder) Build(ctx context.Context, input *Input) (*TemplateContext, *models.Contractor, error) {
	client, err := b.resolver.ResolveClient(ctx, input.ResellerID, input.ClientID)
	if err != nil {
		return nil, nil, err
	}

	creator, err := b.resolver.ResolveEmployee(ctx, input.CreatorID)
	if err != nil {
		return nil, nil, err
	}
	expert, err := b.resolver.ResolveEmployee(ctx, input.ExpertID)
	if err != nil {
		return nil, nil, err
	}

	differences, err := b.differences(ctx, input)
	if err != nil {
		return nil, nil, err
	}

	tc := &TemplateContext{
		ComplaintID:       input.ComplaintID,
		ComplaintNumber:   input.ComplaintNumber,
		CreatorID:         input.CreatorID,
		CreatorName:       employeeName(creator),
		ExpertID:          input.ExpertID,
		ExpertName:        employeeName(expert),
		ClientID:          input.ClientID,
		ClientName:        client.DisplayName(),
		ConsumptionID:     input.ConsumptionID,
		ConsumptionNumber: input.ConsumptionNumber,
		AgreementNumber:   input.AgreementNumber,
		Date:              input.Date,
		Differences:       differences,
	}
	return tc, client, nil
}

// differences renders the type-dependent description of the event. Any
// combination it does not know yields "", which fails validation.
func (b *ContextBuilder) differences(ctx context.Context, input *Input) (string, error) {
	switch {
	case input.NotificationType == NotificationTypeNew:
		return b.renderer.Render(TemplateNewPositionAdded, nil, input.ResellerID)

	case input.NotificationType == NotificationTypeChange && input.Differences != nil:
		from, err := b.statusName(ctx, input.Differences.From)
		if err != nil {
			return "", err
		}
		to, err := b.statusName(ctx, input.Differences.To)
		if err != nil {
			return "", err
		}
		return b.renderer.Render(TemplatePositionStatusHasChanged, map[string]string{
			"FROM": from,
			"TO":   to,
		}, input.ResellerID)

	default:
		return "", nil
	}
}

func (b *ContextBuilder) statusName(ctx context.Context, code int) (string, error) {
	name, err := b.statuses.StatusName(ctx, code)
	if err != nil {
		return "", errors.NewLookupFailedError("Status", err)
	}
	return name, nil
}

func employeeName(e *models.Employee) string {
	if e == nil {
		return ""
	}
	return e.FullName()
}
