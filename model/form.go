package model

import "time"

type FormStatus string

const (
	FormDraft     FormStatus = "DRAFT"
	FormPublished FormStatus = "PUBLISHED"
	FormArchived  FormStatus = "ARCHIVED"
)

func (s FormStatus) Valid() bool {
	switch s {
	case FormDraft, FormPublished, FormArchived:
		return true
	}
	return false
}

type Form struct {
	ID                  string        `json:"id"`
	Title               string        `json:"title"`
	Description         string        `json:"description,omitempty"`
	Status              FormStatus    `json:"status"`
	CreatedBy           string        `json:"createdBy"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
	Directorate         Directorate   `json:"directorate"`
	AllowedDirectorates []Directorate `json:"allowedDirectorates,omitempty"`
}

// VisibleTo reports whether members of d may see the form. An empty audience
// or one containing ALL is visible everywhere.
func (f Form) VisibleTo(d Directorate) bool {
	if len(f.AllowedDirectorates) == 0 {
		return true
	}
	for _, allowed := range f.AllowedDirectorates {
		if allowed == AllDirectorates || allowed == d {
			return true
		}
	}
	return false
}

type FormSection struct {
	ID          string `json:"id"`
	FormID      string `json:"formId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
}

type FormWithDetails struct {
	Form
	Sections      []FormSection `json:"sections"`
	Fields        []FormField   `json:"fields"`
	ResponseCount int           `json:"responseCount"`
}

// OrderedFields returns the form fields in display order: unsectioned fields
// first, then the fields of each section following section order. Fields
// pointing at an unknown section are kept at the end.
func (f FormWithDetails) OrderedFields() []FormField {
	ordered := make([]FormField, 0, len(f.Fields))
	for _, field := range f.Fields {
		if field.SectionID == "" {
			ordered = append(ordered, field)
		}
	}

	known := make(map[string]bool, len(f.Sections))
	for _, s := range f.Sections {
		known[s.ID] = true
		for _, field := range f.Fields {
			if field.SectionID == s.ID {
				ordered = append(ordered, field)
			}
		}
	}

	for _, field := range f.Fields {
		if field.SectionID != "" && !known[field.SectionID] {
			ordered = append(ordered, field)
		}
	}
	return ordered
}

// Field looks a field up by id.
func (f FormWithDetails) Field(id string) (FormField, bool) {
	for _, field := range f.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return FormField{}, false
}
