package enums

// FieldKind is the closed set of value kinds an employer-defined
// application field may declare.
type FieldKind string

const (
	FieldKindText        FieldKind = "text"
	FieldKindNumber      FieldKind = "number"
	FieldKindURL         FieldKind = "url"
	FieldKindOption      FieldKind = "option"
	FieldKindMultiOption FieldKind = "multi_option"
)
