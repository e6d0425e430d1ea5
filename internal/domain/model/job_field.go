package model

import "github.com/upskillhq/backend/internal/domain/enums"

// JobField is one entry of the employer-defined application form schema
// attached to a job. Responses are validated against it at write time.
type JobField struct {
	Key      string          `json:"key"`
	Label    string          `json:"label"`
	Kind     enums.FieldKind `json:"kind"`
	Required bool            `json:"required"`
	Options  []string        `json:"options,omitempty"`
}
