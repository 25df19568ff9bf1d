package routes

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"github.com/sgjt/gestao-forms/app"
	"github.com/sgjt/gestao-forms/export"
	"github.com/sgjt/gestao-forms/fields"
	"github.com/sgjt/gestao-forms/httpx"
	"github.com/sgjt/gestao-forms/log"
	"github.com/sgjt/gestao-forms/model"
	"github.com/sgjt/gestao-forms/routes/middlewares"
	"github.com/sgjt/gestao-forms/store"
)

func Me(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := app.Users.Get(r.Context(), middlewares.CurrentUser(r).ID)
		if err != nil {
			httpx.WriteError(w, r, "db.get_user", err)
			return
		}
		render.JSON(w, r, user)
	}
}

func ListDirectorates(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, model.Directorates)
	}
}

// ownResponse finds the caller's response to a form, if any.
func ownResponse(app app.App, r *http.Request, formID string) (*model.ResponseWithAnswers, error) {
	responses, err := app.Responses.ListByUser(r.Context(), middlewares.CurrentUser(r).ID, "")
	if err != nil {
		return nil, err
	}
	for i := range responses {
		if responses[i].FormID == formID {
			return &responses[i], nil
		}
	}
	return nil, nil
}

type fillView struct {
	Form     model.Form                 `json:"form"`
	Sections []model.FormSection        `json:"sections"`
	Widgets  []fields.Widget            `json:"widgets"`
	Response *model.ResponseWithAnswers `json:"response,omitempty"`
	ReadOnly bool                       `json:"readOnly"`
}

// GetFormFill describes how to fill a form in: one widget per field in
// display order, plus the caller's draft or submitted response. A submitted
// response makes the view read-only.
func GetFormFill(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := loadVisibleForm(app, w, r)
		if !ok {
			return
		}

		response, err := ownResponse(app, r, form.ID)
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_user_responses", err)
			return
		}

		view := fillView{
			Form:     form.Form,
			Sections: form.Sections,
			Widgets:  fields.Inputs(form.OrderedFields()),
			Response: response,
			ReadOnly: response != nil && response.Status == model.ResponseSubmitted,
		}
		render.JSON(w, r, view)
	}
}

// fieldRef is a field id sent either as a string or as a number.
type fieldRef string

func (f *fieldRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = fieldRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("fieldId must be a string or a number")
	}
	*f = fieldRef(n.String())
	return nil
}

type answerRequest struct {
	FieldID fieldRef          `json:"fieldId"`
	Value   model.AnswerValue `json:"value"`
}

type responseRequest struct {
	UserID  string               `json:"userId"`
	Status  model.ResponseStatus `json:"status"`
	Answers []answerRequest      `json:"answers"`
}

// SaveResponse saves the caller's answers to a published form, as a draft
// or as the final submission. Answers are checked against their fields and a
// submission must answer every required field.
func SaveResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := responseRequest{}
		if !decodeBody(w, r, &req) {
			return
		}

		user := middlewares.CurrentUser(r)
		if req.UserID != "" && req.UserID != user.ID {
			httpx.LogStatus(w, r, http.StatusForbidden, log.DebugLevel, "save_response.user_id")
			return
		}
		if req.Status == "" {
			req.Status = model.ResponseSubmitted
		}
		if req.Status != model.ResponseDraft && req.Status != model.ResponseSubmitted {
			httpx.LogStatusMsg(w, r, http.StatusUnprocessableEntity, log.DebugLevel, "save_response.status", "status inválido: %s", req.Status)
			return
		}

		form, ok := loadVisibleForm(app, w, r)
		if !ok {
			return
		}
		if form.Status != model.FormPublished {
			httpx.LogStatusMsg(w, r, http.StatusConflict, log.DebugLevel, "save_response.form_status", "o formulário não está aberto para respostas")
			return
		}

		answers := make([]model.FormAnswer, 0, len(req.Answers))
		for _, a := range req.Answers {
			answers = append(answers, model.FormAnswer{FieldID: string(a.FieldID), Value: a.Value})
		}
		answers, err := fields.CoerceAll(form, answers)
		if err != nil {
			httpx.WriteError(w, r, "save_response.coerce", err)
			return
		}

		who := store.Respondent{UserID: user.ID, UserName: user.Name}
		var response model.FormResponse
		if req.Status == model.ResponseSubmitted {
			if missing := fields.MissingRequired(form, answers); len(missing) > 0 {
				body := httpx.ErrorBody{Error: "preencha todos os campos obrigatórios", FieldID: missing[0].ID}
				for _, f := range missing {
					body.Details = append(body.Details, f.Label)
				}
				log.Debugf("save_response.required: %d missing", len(missing))
				render.Status(r, http.StatusUnprocessableEntity)
				render.JSON(w, r, body)
				return
			}
			response, err = app.Responses.Submit(r.Context(), form.ID, who, answers)
		} else {
			response, err = app.Responses.SaveDraft(r.Context(), form.ID, who, answers)
		}
		if errors.Is(err, store.ErrConflict) {
			httpx.LogStatusMsg(w, r, http.StatusConflict, log.DebugLevel, "save_response.conflict", "você já respondeu este formulário")
			return
		}
		if err != nil {
			httpx.WriteError(w, r, "db.save_response", err)
			return
		}

		created(w, r, response)
	}
}

type reviewView struct {
	Response model.FormResponse `json:"response"`
	Rows     []export.ReviewRow `json:"rows"`
}

// GetResponse shows one response field by field as read-only text. Authors
// see every response, other users only their own.
func GetResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		responseID := chi.URLParam(r, "responseId")

		response, err := app.Responses.Get(r.Context(), responseID)
		if err != nil {
			httpx.WriteError(w, r, "db.get_response", err)
			return
		}
		if response.FormID != id {
			httpx.LogNotFound(w, r, "get_response.form", responseID)
			return
		}

		user := middlewares.CurrentUser(r)
		if !user.Role.CanAuthor() && response.UserID != user.ID {
			httpx.LogStatus(w, r, http.StatusForbidden, log.DebugLevel, "get_response.owner")
			return
		}

		form, err := app.Forms.Load(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, r, "db.get_form", err)
			return
		}

		render.JSON(w, r, reviewView{
			Response: response.FormResponse,
			Rows:     export.Review(form, response),
		})
	}
}

// ListUserResponses lists a user's responses, optionally only those to forms
// owned by ?directorate=. Users see their own, administrators anyone's.
func ListUserResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "id")
		user := middlewares.CurrentUser(r)
		if userID != user.ID && user.Role != model.RoleAdmin {
			httpx.LogStatus(w, r, http.StatusForbidden, log.DebugLevel, "list_user_responses.owner")
			return
		}

		directorate, ok := queryDirectorate(w, r)
		if !ok {
			return
		}

		responses, err := app.Responses.ListByUser(r.Context(), userID, directorate)
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_user_responses", err)
			return
		}

		render.JSON(w, r, responses)
	}
}
