package rules

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/upskillhq/backend/internal/domain/enums"
	"github.com/upskillhq/backend/internal/domain/model"
)

// ValidateResponses checks free-form application responses against the
// job's declared field schema. Unknown keys are rejected so an applicant
// cannot smuggle arbitrary data past the employer's form.
func ValidateResponses(schema []model.JobField, responses map[string]any) error {
	byKey := make(map[string]model.JobField, len(schema))
	for _, field := range schema {
		byKey[field.Key] = field
	}

	for key := range responses {
		if _, ok := byKey[key]; !ok {
			return fmt.Errorf("unknown field %q", key)
		}
	}

	for _, field := range schema {
		value, present := responses[field.Key]
		if !present || isEmptyValue(value) {
			if field.Required {
				return fmt.Errorf("field %q is required", field.Key)
			}
			continue
		}
		if err := validateValue(field, value); err != nil {
			return err
		}
	}

	return nil
}

func validateValue(field model.JobField, value any) error {
	switch field.Kind {
	case enums.FieldKindText:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("field %q expects text", field.Key)
		}
	case enums.FieldKindNumber:
		switch value.(type) {
		case float64, int, int64:
		default:
			return fmt.Errorf("field %q expects a number", field.Key)
		}
	case enums.FieldKindURL:
		raw, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %q expects a url", field.Key)
		}
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("field %q expects an absolute url", field.Key)
		}
	case enums.FieldKindOption:
		raw, ok := value.(string)
		if !ok || !containsOption(field.Options, raw) {
			return fmt.Errorf("field %q expects one of its declared options", field.Key)
		}
	case enums.FieldKindMultiOption:
		selected, err := asStringSlice(value)
		if err != nil {
			return fmt.Errorf("field %q expects a list of options", field.Key)
		}
		for _, item := range selected {
			if !containsOption(field.Options, item) {
				return fmt.Errorf("field %q got undeclared option %q", field.Key, item)
			}
		}
	default:
		return fmt.Errorf("field %q has unsupported kind %q", field.Key, field.Kind)
	}

	return nil
}

func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}

func containsOption(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}

func asStringSlice(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("non-string option")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("not a list")
	}
}
