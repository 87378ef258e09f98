package returnstatusnotify

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"return-notifier/internal/common/errors"
	"return-notifier/internal/common/validation"
)

// inputSchema checks value types only. Presence of the mandatory fields is
// checked separately so that it is reported as MISSING_FIELD, and other empty
// values surface later as incomplete template data.
const inputSchema = `{
  "type": "object",
  "definitions": {
    "id": {
      "type": ["integer", "string", "null"],
      "minimum": -2147483648,
      "maximum": 2147483647,
      "pattern": "^\\s*-?[0-9]{0,10}\\s*$"
    },
    "text": {"type": ["string", "number", "null"]}
  },
  "properties": {
    "resellerId":        {"$ref": "#/definitions/id"},
    "notificationType":  {"$ref": "#/definitions/id"},
    "complaintId":       {"$ref": "#/definitions/id"},
    "complaintNumber":   {"$ref": "#/definitions/text"},
    "creatorId":         {"$ref": "#/definitions/id"},
    "expertId":          {"$ref": "#/definitions/id"},
    "clientId":          {"$ref": "#/definitions/id"},
    "consumptionId":     {"$ref": "#/definitions/id"},
    "consumptionNumber": {"$ref": "#/definitions/text"},
    "agreementNumber":   {"$ref": "#/definitions/text"},
    "date":              {"$ref": "#/definitions/text"},
    "differences": {
      "properties": {
        "from": {"$ref": "#/definitions/id"},
        "to":   {"$ref": "#/definitions/id"}
      }
    }
  },
  "additionalProperties": true
}`

var schema = validation.MustCompile(inputSchema)

// mandatoryFields are checked, in order, before anything else happens.
var mandatoryFields = []string{"resellerId", "notificationType"}

// ParseInput validates raw event variables and coerces them into an Input.
func ParseInput(vars map[string]interface{}) (*Input, error) {
	for _, field := range mandatoryFields {
		if isFalsy(vars[field]) {
			return nil, errors.NewMissingFieldError(field)
		}
	}

	result, err := schema.Validate(vars)
	if err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}
	if !result.Valid {
		return nil, errors.NewInvalidFieldError(result.TopLevelField(), strings.Join(result.GetErrorMessages(), "; "))
	}

	input := &Input{
		ResellerID:        toInt(vars["resellerId"]),
		NotificationType:  NotificationType(toInt(vars["notificationType"])),
		ComplaintID:       toInt(vars["complaintId"]),
		ComplaintNumber:   toText(vars["complaintNumber"]),
		CreatorID:         toInt(vars["creatorId"]),
		ExpertID:          toInt(vars["expertId"]),
		ClientID:          toInt(vars["clientId"]),
		ConsumptionID:     toInt(vars["consumptionId"]),
		ConsumptionNumber: toText(vars["consumptionNumber"]),
		AgreementNumber:   toText(vars["agreementNumber"]),
		Date:              toText(vars["date"]),
		Differences:       toDifferences(vars["differences"]),
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}
	return input, nil
}

// Validate re-checks the mandatory fields on an already typed Input. A value
// that coerced to zero is as good as missing.
func (in *Input) Validate() error {
	if in.ResellerID == 0 {
		return errors.NewMissingFieldError("resellerId")
	}
	if in.NotificationType == 0 {
		return errors.NewMissingFieldError("notificationType")
	}
	return nil
}

// isFalsy treats nil, false, zero, "" and "0" as absent.
func isFalsy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case string:
		s := strings.TrimSpace(val)
		return s == "" || s == "0"
	case float64:
		return val == 0
	case json.Number:
		f, err := val.Float64()
		return err == nil && f == 0
	case int:
		return val == 0
	case int64:
		return val == 0
	case map[string]interface{}:
		return len(val) == 0
	case []interface{}:
		return len(val) == 0
	default:
		return false
	}
}

func toInt(v interface{}) int {
	switch val := v.(type) {
	case float64:
		return int(math.Trunc(val))
	case int:
		return val
	case int64:
		return int(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
		if f, err := val.Float64(); err == nil {
			return int(math.Trunc(f))
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return i
		}
	}
	return 0
}

func toText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}

// toDifferences returns nil unless a non-empty differences object was sent.
func toDifferences(v interface{}) *Differences {
	obj, ok := v.(map[string]interface{})
	if !ok || len(obj) == 0 {
		return nil
	}
	return &Differences{
		From: toInt(obj["from"]),
		To:   toInt(obj["to"]),
	}
}
