package httpx

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sgjt/gestao-forms/builder"
	"github.com/sgjt/gestao-forms/fields"
	"github.com/sgjt/gestao-forms/log"
	"github.com/sgjt/gestao-forms/store"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error   string   `json:"error"`
	FieldID string   `json:"fieldId,omitempty"`
	Details []string `json:"details,omitempty"`
}

func writeBody(w http.ResponseWriter, r *http.Request, status int, body ErrorBody) {
	render.Status(r, status)
	render.JSON(w, r, body)
}

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, r *http.Request, code string, err error) {
	log.Errorf("%s: %s", code, err)
	writeBody(w, r, http.StatusInternalServerError, ErrorBody{Error: http.StatusText(http.StatusInternalServerError)})
}

// Will log a debug message, and send an HTTP response with status 404 and default text
func LogNotFound(w http.ResponseWriter, r *http.Request, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	writeBody(w, r, http.StatusNotFound, ErrorBody{Error: http.StatusText(http.StatusNotFound)})
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string) {
	log.Log(level, code)
	writeBody(w, r, status, ErrorBody{Error: http.StatusText(status)})
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	writeBody(w, r, status, ErrorBody{Error: errMsg})
}

// WriteError answers with the status matching err: 422 for rule and value
// violations, 404 for missing records, 409 for conflicts and 500 otherwise.
func WriteError(w http.ResponseWriter, r *http.Request, code string, err error) {
	var (
		violation *builder.ValidationError
		problems  *multierror.Error
		badValue  *fields.ValueError
	)

	switch {
	case errors.As(err, &problems):
		log.Debugf("%s: %s", code, problems)
		body := ErrorBody{Error: "formulário inválido"}
		for i, p := range problems.Errors {
			if i == 0 {
				body.Error = p.Error()
				if errors.As(p, &violation) {
					body.FieldID = violation.FieldID
				}
			}
			body.Details = append(body.Details, p.Error())
		}
		writeBody(w, r, http.StatusUnprocessableEntity, body)

	case errors.As(err, &violation):
		log.Debugf("%s: %s", code, violation)
		writeBody(w, r, http.StatusUnprocessableEntity, ErrorBody{Error: violation.Message, FieldID: violation.FieldID})

	case errors.As(err, &badValue):
		log.Debugf("%s: %s", code, badValue)
		writeBody(w, r, http.StatusUnprocessableEntity, ErrorBody{Error: badValue.Error(), FieldID: badValue.FieldID})

	case errors.Is(err, store.ErrInvalid):
		LogStatusMsg(w, r, http.StatusUnprocessableEntity, log.DebugLevel, code, "%s", err)

	case errors.Is(err, store.ErrNotFound):
		LogNotFound(w, r, code, err)

	case errors.Is(err, store.ErrConflict):
		LogStatusMsg(w, r, http.StatusConflict, log.DebugLevel, code, "%s", err)

	default:
		LogInternalError(w, r, code, err)
	}
}
