package model

import (
	"encoding/json"
	"regexp"
	"strings"
)

type FieldType string

const (
	ShortText      FieldType = "SHORT_TEXT"
	LongText       FieldType = "LONG_TEXT"
	MultipleChoice FieldType = "MULTIPLE_CHOICE"
	Checkboxes     FieldType = "CHECKBOXES"
	Scale          FieldType = "SCALE"
	Date           FieldType = "DATE"
	Number         FieldType = "NUMBER"
	Dropdown       FieldType = "DROPDOWN"

	// File is only reachable through the legacy FILE and IMAGE aliases.
	File FieldType = "FILE"
)

var FieldTypes = []FieldType{ShortText, LongText, MultipleChoice, Checkboxes, Scale, Date, Number, Dropdown}

var typeAliases = map[string]FieldType{
	"SHORT_TEXT":      ShortText,
	"TEXT":            ShortText,
	"EMAIL":           ShortText,
	"PHONE":           ShortText,
	"URL":             ShortText,
	"LONG_TEXT":       LongText,
	"TEXTAREA":        LongText,
	"MULTIPLE_CHOICE": MultipleChoice,
	"RADIO":           MultipleChoice,
	"CHECKBOXES":      Checkboxes,
	"CHECKBOX":        Checkboxes,
	"SCALE":           Scale,
	"DATE":            Date,
	"DATETIME":        Date,
	"NUMBER":          Number,
	"DROPDOWN":        Dropdown,
	"SELECT":          Dropdown,
	"FILE":            File,
	"IMAGE":           File,
}

// ResolveType maps a stored type name, canonical or legacy alias in any case,
// to its canonical type. Unknown names are returned unchanged.
func ResolveType(raw string) FieldType {
	if t, ok := typeAliases[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return t
	}
	return FieldType(raw)
}

// Known reports whether t is a canonical type the renderer supports.
func (t FieldType) Known() bool {
	for _, known := range FieldTypes {
		if t == known {
			return true
		}
	}
	return t == File
}

// NeedsOptions reports whether the type is a choice among configured options.
func (t FieldType) NeedsOptions() bool {
	return t == MultipleChoice || t == Checkboxes || t == Dropdown
}

type FieldOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

var reSpaces = regexp.MustCompile(`\s+`)

// Slug derives an option value from its label.
func Slug(label string) string {
	return reSpaces.ReplaceAllLiteralString(strings.ToLower(label), "_")
}

// FieldConfig is the type specific part of a field definition. Which variant
// a field carries is decided by its resolved type.
type FieldConfig interface {
	wire() wireConfig
}

type ChoiceConfig struct {
	Options []FieldOption
}

type ScaleConfig struct {
	MinValue int
	MaxValue int
	MinLabel string
	MaxLabel string
}

type TextConfig struct {
	Placeholder string
}

const (
	DefaultScaleMin = 1
	DefaultScaleMax = 5
)

func (c ChoiceConfig) wire() wireConfig {
	return wireConfig{Options: c.Options}
}

func (c ScaleConfig) wire() wireConfig {
	return wireConfig{MinValue: &c.MinValue, MaxValue: &c.MaxValue, MinLabel: c.MinLabel, MaxLabel: c.MaxLabel}
}

func (c TextConfig) wire() wireConfig {
	return wireConfig{Placeholder: c.Placeholder}
}

// wireConfig is the flat config object exchanged with clients and persisted.
type wireConfig struct {
	Options     []FieldOption `json:"options,omitempty"`
	MinValue    *int          `json:"minValue,omitempty"`
	MaxValue    *int          `json:"maxValue,omitempty"`
	MinLabel    string        `json:"minLabel,omitempty"`
	MaxLabel    string        `json:"maxLabel,omitempty"`
	Placeholder string        `json:"placeholder,omitempty"`
}

// configFor keeps only the parts of w relevant to t.
func configFor(t FieldType, w wireConfig) FieldConfig {
	switch {
	case t.NeedsOptions():
		return ChoiceConfig{Options: w.Options}
	case t == Scale:
		c := ScaleConfig{MinValue: DefaultScaleMin, MaxValue: DefaultScaleMax, MinLabel: w.MinLabel, MaxLabel: w.MaxLabel}
		if w.MinValue != nil {
			c.MinValue = *w.MinValue
		}
		if w.MaxValue != nil {
			c.MaxValue = *w.MaxValue
		}
		return c
	case w.Placeholder != "":
		return TextConfig{Placeholder: w.Placeholder}
	}
	return nil
}

// ReshapeConfig converts a config to the variant expected by t, carrying over
// whatever still applies.
func ReshapeConfig(t FieldType, c FieldConfig) FieldConfig {
	var w wireConfig
	if c != nil {
		w = c.wire()
	}
	return configFor(t, w)
}

// EncodeConfig serialises a config for storage. A nil config encodes to nil.
func EncodeConfig(c FieldConfig) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c.wire())
}

// DecodeConfig parses a stored config for a field of raw type rawType.
func DecodeConfig(rawType string, data []byte) (FieldConfig, error) {
	var w wireConfig
	if len(data) > 0 {
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
	}
	return configFor(ResolveType(rawType), w), nil
}

type FormField struct {
	ID        string
	FormID    string
	SectionID string
	// Type holds the type name as authored, legacy aliases included.
	Type     string
	Label    string
	HelpText string
	Required bool
	Order    int
	Config   FieldConfig
}

type wireField struct {
	ID        string      `json:"id"`
	FormID    string      `json:"formId"`
	SectionID *string     `json:"sectionId,omitempty"`
	Type      string      `json:"type"`
	Label     string      `json:"label"`
	HelpText  string      `json:"helpText,omitempty"`
	Required  bool        `json:"required"`
	Order     int         `json:"order"`
	Config    *wireConfig `json:"config,omitempty"`
}

func (f FormField) MarshalJSON() ([]byte, error) {
	w := wireField{
		ID:       f.ID,
		FormID:   f.FormID,
		Type:     f.Type,
		Label:    f.Label,
		HelpText: f.HelpText,
		Required: f.Required,
		Order:    f.Order,
	}
	if f.SectionID != "" {
		w.SectionID = &f.SectionID
	}
	if f.Config != nil {
		c := f.Config.wire()
		w.Config = &c
	}
	return json.Marshal(w)
}

func (f *FormField) UnmarshalJSON(data []byte) error {
	var w wireField
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*f = FormField{
		ID:       w.ID,
		FormID:   w.FormID,
		Type:     w.Type,
		Label:    w.Label,
		HelpText: w.HelpText,
		Required: w.Required,
		Order:    w.Order,
	}
	if w.SectionID != nil {
		f.SectionID = *w.SectionID
	}
	if w.Config != nil {
		f.Config = configFor(f.Kind(), *w.Config)
	} else {
		f.Config = configFor(f.Kind(), wireConfig{})
	}
	return nil
}

// Kind is the canonical type of the field.
func (f FormField) Kind() FieldType {
	return ResolveType(f.Type)
}

func (f FormField) Options() []FieldOption {
	if c, ok := f.Config.(ChoiceConfig); ok {
		return c.Options
	}
	return nil
}

// Scale returns the scale bounds, defaulting to 1..5.
func (f FormField) Scale() ScaleConfig {
	if c, ok := f.Config.(ScaleConfig); ok {
		return c
	}
	return ScaleConfig{MinValue: DefaultScaleMin, MaxValue: DefaultScaleMax}
}

func (f FormField) Placeholder() string {
	if c, ok := f.Config.(TextConfig); ok {
		return c.Placeholder
	}
	return ""
}

// OptionLabel resolves an option value back to its label.
func (f FormField) OptionLabel(value string) (string, bool) {
	for _, o := range f.Options() {
		if o.Value == value {
			return o.Label, true
		}
	}
	return "", false
}
