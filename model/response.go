package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

type ResponseStatus string

const (
	ResponseDraft     ResponseStatus = "DRAFT"
	ResponseSubmitted ResponseStatus = "SUBMITTED"
)

type FormResponse struct {
	ID          string         `json:"id"`
	FormID      string         `json:"formId"`
	UserID      string         `json:"userId"`
	UserName    string         `json:"userName"`
	Status      ResponseStatus `json:"status"`
	SubmittedAt *time.Time     `json:"submittedAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type FormAnswer struct {
	ID         string      `json:"id"`
	ResponseID string      `json:"responseId"`
	FieldID    string      `json:"fieldId"`
	Value      AnswerValue `json:"value"`
}

type ResponseWithAnswers struct {
	FormResponse
	Answers []FormAnswer `json:"answers"`
}

// Answer finds the answer given to a field, if any.
func (r ResponseWithAnswers) Answer(fieldID string) (FormAnswer, bool) {
	for _, a := range r.Answers {
		if a.FieldID == fieldID {
			return a, true
		}
	}
	return FormAnswer{}, false
}

type valueKind int

const (
	noValue valueKind = iota
	textValue
	listValue
	numberValue
)

// AnswerValue is one of: a string, a list of strings, or a number.
type AnswerValue struct {
	kind valueKind
	text string
	list []string
	num  float64
}

func Text(s string) AnswerValue {
	return AnswerValue{kind: textValue, text: s}
}

func List(items ...string) AnswerValue {
	if items == nil {
		items = []string{}
	}
	return AnswerValue{kind: listValue, list: items}
}

func Num(n float64) AnswerValue {
	return AnswerValue{kind: numberValue, num: n}
}

func (v AnswerValue) IsText() bool   { return v.kind == textValue }
func (v AnswerValue) IsList() bool   { return v.kind == listValue }
func (v AnswerValue) IsNumber() bool { return v.kind == numberValue }

// IsZero reports whether no value was set at all.
func (v AnswerValue) IsZero() bool { return v.kind == noValue }

// Empty reports whether the value counts as unanswered.
func (v AnswerValue) Empty() bool {
	switch v.kind {
	case textValue:
		return strings.TrimSpace(v.text) == ""
	case listValue:
		return len(v.list) == 0
	case numberValue:
		return false
	}
	return true
}

func (v AnswerValue) TextValue() string    { return v.text }
func (v AnswerValue) ListValue() []string  { return v.list }
func (v AnswerValue) NumberValue() float64 { return v.num }

// Join renders the value as-is; lists are joined with sep.
func (v AnswerValue) Join(sep string) string {
	switch v.kind {
	case textValue:
		return v.text
	case listValue:
		return strings.Join(v.list, sep)
	case numberValue:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return ""
}

func (v AnswerValue) String() string {
	return v.Join(", ")
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case textValue:
		return json.Marshal(v.text)
	case listValue:
		return json.Marshal(v.list)
	case numberValue:
		return json.Marshal(v.num)
	}
	return []byte("null"), nil
}

var errBadAnswerValue = errors.New("answer value must be a string, a list of strings or a number")

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = AnswerValue{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return errBadAnswerValue
		}
		*v = List(items...)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return errBadAnswerValue
		}
		*v = Num(n)
	}
	return nil
}
