// Package builder holds the authoring state of a form: sections and fields
// created with temporary ids, edited in memory and saved in one go.
package builder

import (
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/sgjt/gestao-forms/model"
	"github.com/sgjt/gestao-forms/store"
)

var (
	ErrUnknownSection = errors.New("builder: unknown section")
	ErrUnknownField   = errors.New("builder: unknown field")
	ErrUnknownOption  = errors.New("builder: unknown option")
	ErrNotChoice      = errors.New("builder: field type has no options")
)

const (
	newFieldLabel = "Novo campo"
	copySuffix    = " (cópia)"
)

// Draft is a form being edited. Sections and fields keep the order of their
// slices; Order is renumbered after every structural change.
type Draft struct {
	FormID              string              `json:"formId,omitempty"`
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	Status              model.FormStatus    `json:"status,omitempty"`
	AllowedDirectorates []model.Directorate `json:"allowedDirectorates"`
	Sections            []model.FormSection `json:"sections"`
	Fields              []model.FormField   `json:"fields"`

	seq int
}

func New() *Draft {
	return &Draft{Status: model.FormDraft}
}

// FromForm starts editing a persisted form.
func FromForm(form model.FormWithDetails) *Draft {
	d := &Draft{
		FormID:              form.ID,
		Title:               form.Title,
		Description:         form.Description,
		Status:              form.Status,
		AllowedDirectorates: append([]model.Directorate(nil), form.AllowedDirectorates...),
		Sections:            append([]model.FormSection(nil), form.Sections...),
		Fields:              make([]model.FormField, 0, len(form.Fields)),
	}
	for _, f := range form.Fields {
		d.Fields = append(d.Fields, cloneField(f))
	}
	return d
}

func (d *Draft) tempID(kind string) string {
	d.seq++
	return fmt.Sprintf("%s%s-%d", store.TempPrefix, kind, d.seq)
}

func (d *Draft) renumber() {
	for i := range d.Sections {
		d.Sections[i].Order = i
	}
	counts := map[string]int{}
	for i := range d.Fields {
		sid := d.Fields[i].SectionID
		d.Fields[i].Order = counts[sid]
		counts[sid]++
	}
}

func (d *Draft) sectionIndex(id string) int {
	for i, s := range d.Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (d *Draft) fieldIndex(id string) int {
	for i, f := range d.Fields {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (d *Draft) Section(id string) (model.FormSection, bool) {
	if i := d.sectionIndex(id); i >= 0 {
		return d.Sections[i], true
	}
	return model.FormSection{}, false
}

func (d *Draft) Field(id string) (model.FormField, bool) {
	if i := d.fieldIndex(id); i >= 0 {
		return d.Fields[i], true
	}
	return model.FormField{}, false
}

// AddSection appends an empty section named after its position.
func (d *Draft) AddSection() model.FormSection {
	s := model.FormSection{
		ID:     d.tempID("sec"),
		FormID: d.FormID,
		Title:  fmt.Sprintf("Seção %d", len(d.Sections)+1),
	}
	d.Sections = append(d.Sections, s)
	d.renumber()
	return d.Sections[len(d.Sections)-1]
}

func (d *Draft) UpdateSection(id, title, description string) error {
	i := d.sectionIndex(id)
	if i < 0 {
		return ErrUnknownSection
	}
	d.Sections[i].Title = title
	d.Sections[i].Description = description
	return nil
}

// DeleteSection removes a section and every field inside it.
func (d *Draft) DeleteSection(id string) error {
	i := d.sectionIndex(id)
	if i < 0 {
		return ErrUnknownSection
	}
	d.Sections = append(d.Sections[:i], d.Sections[i+1:]...)

	kept := d.Fields[:0]
	for _, f := range d.Fields {
		if f.SectionID != id {
			kept = append(kept, f)
		}
	}
	d.Fields = kept
	d.renumber()
	return nil
}

// AddField appends a SHORT_TEXT field to a section, or to the unsectioned
// block when sectionID is empty.
func (d *Draft) AddField(sectionID string) (model.FormField, error) {
	if sectionID != "" && d.sectionIndex(sectionID) < 0 {
		return model.FormField{}, ErrUnknownSection
	}
	f := model.FormField{
		ID:        d.tempID("field"),
		FormID:    d.FormID,
		SectionID: sectionID,
		Type:      string(model.ShortText),
		Label:     newFieldLabel,
	}
	d.Fields = append(d.Fields, f)
	d.renumber()
	return d.Fields[len(d.Fields)-1], nil
}

// UpdateField replaces the field with the same id. Its config is reshaped to
// fit its type.
func (d *Draft) UpdateField(f model.FormField) error {
	i := d.fieldIndex(f.ID)
	if i < 0 {
		return ErrUnknownField
	}
	if f.SectionID != "" && d.sectionIndex(f.SectionID) < 0 {
		return ErrUnknownSection
	}
	f.FormID = d.FormID
	f.Config = model.ReshapeConfig(f.Kind(), f.Config)
	d.Fields[i] = f
	d.renumber()
	return nil
}

// ChangeType switches a field to another type. Options survive a switch
// between choice types; anything the new type has no use for is dropped.
func (d *Draft) ChangeType(id string, t model.FieldType) error {
	i := d.fieldIndex(id)
	if i < 0 {
		return ErrUnknownField
	}
	d.Fields[i].Type = string(t)
	d.Fields[i].Config = model.ReshapeConfig(model.ResolveType(string(t)), d.Fields[i].Config)
	return nil
}

// DuplicateField copies a field to the end of its section.
func (d *Draft) DuplicateField(id string) (model.FormField, error) {
	i := d.fieldIndex(id)
	if i < 0 {
		return model.FormField{}, ErrUnknownField
	}
	c := cloneField(d.Fields[i])
	c.ID = d.tempID("field")
	c.Label = c.Label + copySuffix
	d.Fields = append(d.Fields, c)
	d.renumber()
	return d.Fields[len(d.Fields)-1], nil
}

func (d *Draft) DeleteField(id string) error {
	i := d.fieldIndex(id)
	if i < 0 {
		return ErrUnknownField
	}
	d.Fields = append(d.Fields[:i], d.Fields[i+1:]...)
	d.renumber()
	return nil
}

func (d *Draft) choice(fieldID string) (int, model.ChoiceConfig, error) {
	i := d.fieldIndex(fieldID)
	if i < 0 {
		return -1, model.ChoiceConfig{}, ErrUnknownField
	}
	c, ok := d.Fields[i].Config.(model.ChoiceConfig)
	if !ok {
		if !d.Fields[i].Kind().NeedsOptions() {
			return -1, model.ChoiceConfig{}, ErrNotChoice
		}
		c = model.ChoiceConfig{}
	}
	return i, c, nil
}

// AddOption appends a numbered option to a choice field.
func (d *Draft) AddOption(fieldID string) (model.FieldOption, error) {
	i, c, err := d.choice(fieldID)
	if err != nil {
		return model.FieldOption{}, err
	}
	n := len(c.Options) + 1
	o := model.FieldOption{
		ID:    "opt-" + uuid.Must(uuid.NewV4()).String(),
		Label: fmt.Sprintf("Opção %d", n),
		Value: fmt.Sprintf("option_%d", n),
	}
	c.Options = append(append([]model.FieldOption(nil), c.Options...), o)
	d.Fields[i].Config = c
	return o, nil
}

// UpdateOption relabels an option. Its value becomes the slug of the label.
func (d *Draft) UpdateOption(fieldID, optionID, label string) (model.FieldOption, error) {
	i, c, err := d.choice(fieldID)
	if err != nil {
		return model.FieldOption{}, err
	}
	options := append([]model.FieldOption(nil), c.Options...)
	for j := range options {
		if options[j].ID == optionID {
			options[j].Label = label
			options[j].Value = model.Slug(label)
			d.Fields[i].Config = model.ChoiceConfig{Options: options}
			return options[j], nil
		}
	}
	return model.FieldOption{}, ErrUnknownOption
}

func (d *Draft) DeleteOption(fieldID, optionID string) error {
	i, c, err := d.choice(fieldID)
	if err != nil {
		return err
	}
	options := make([]model.FieldOption, 0, len(c.Options))
	for _, o := range c.Options {
		if o.ID != optionID {
			options = append(options, o)
		}
	}
	if len(options) == len(c.Options) {
		return ErrUnknownOption
	}
	d.Fields[i].Config = model.ChoiceConfig{Options: options}
	return nil
}

func cloneField(f model.FormField) model.FormField {
	if c, ok := f.Config.(model.ChoiceConfig); ok {
		f.Config = model.ChoiceConfig{Options: append([]model.FieldOption(nil), c.Options...)}
	}
	return f
}
