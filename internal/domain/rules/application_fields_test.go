package rules

import (
	"testing"

	"github.com/upskillhq/backend/internal/domain/enums"
	"github.com/upskillhq/backend/internal/domain/model"
)

func testSchema() []model.JobField {
	return []model.JobField{
		{Key: "portfolio", Label: "Portfolio", Kind: enums.FieldKindURL},
		{Key: "experience_years", Label: "Years of experience", Kind: enums.FieldKindNumber, Required: true},
		{Key: "notice_period", Label: "Notice period", Kind: enums.FieldKindOption, Required: true, Options: []string{"immediate", "30d", "60d"}},
		{Key: "stack", Label: "Stack", Kind: enums.FieldKindMultiOption, Options: []string{"go", "python", "sql"}},
		{Key: "about", Label: "About", Kind: enums.FieldKindText},
	}
}

func TestValidateResponsesAcceptsCompleteAnswers(t *testing.T) {
	responses := map[string]any{
		"portfolio":        "https://ravi.dev",
		"experience_years": float64(3),
		"notice_period":    "30d",
		"stack":            []any{"go", "sql"},
		"about":            "Backend engineer.",
	}

	if err := ValidateResponses(testSchema(), responses); err != nil {
		t.Fatalf("ValidateResponses: %v", err)
	}
}

func TestValidateResponsesOptionalFieldsMayBeOmitted(t *testing.T) {
	responses := map[string]any{
		"experience_years": 3,
		"notice_period":    "immediate",
	}

	if err := ValidateResponses(testSchema(), responses); err != nil {
		t.Fatalf("ValidateResponses: %v", err)
	}
}

func TestValidateResponsesRejections(t *testing.T) {
	cases := []struct {
		name      string
		responses map[string]any
	}{
		{
			name:      "unknown key",
			responses: map[string]any{"experience_years": 3, "notice_period": "30d", "salary": 100},
		},
		{
			name:      "missing required",
			responses: map[string]any{"experience_years": 3},
		},
		{
			name:      "empty required",
			responses: map[string]any{"experience_years": 3, "notice_period": "  "},
		},
		{
			name:      "number as text",
			responses: map[string]any{"experience_years": "three", "notice_period": "30d"},
		},
		{
			name:      "relative url",
			responses: map[string]any{"experience_years": 3, "notice_period": "30d", "portfolio": "ravi.dev/work"},
		},
		{
			name:      "undeclared option",
			responses: map[string]any{"experience_years": 3, "notice_period": "90d"},
		},
		{
			name:      "undeclared multi option",
			responses: map[string]any{"experience_years": 3, "notice_period": "30d", "stack": []any{"go", "cobol"}},
		},
		{
			name:      "multi option not a list",
			responses: map[string]any{"experience_years": 3, "notice_period": "30d", "stack": "go"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateResponses(testSchema(), tc.responses); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
