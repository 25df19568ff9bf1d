package routes

import (
	"bytes"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"github.com/sgjt/gestao-forms/app"
	"github.com/sgjt/gestao-forms/builder"
	"github.com/sgjt/gestao-forms/export"
	"github.com/sgjt/gestao-forms/httpx"
	"github.com/sgjt/gestao-forms/log"
	"github.com/sgjt/gestao-forms/model"
	"github.com/sgjt/gestao-forms/routes/middlewares"
	"github.com/sgjt/gestao-forms/store"
)

// ListForms lists forms in one of three modes: every form (?isAdmin=true,
// administrators only), the forms opened to a directorate
// (?filterByVisibility=true) or the forms a directorate owns. Viewers always
// get the forms opened to their own directorate.
func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.CurrentUser(r)

		directorate, ok := queryDirectorate(w, r)
		if !ok {
			return
		}
		if directorate == "" {
			directorate = user.Directorate
		}

		opts := store.ListOptions{
			AsAdmin:            queryBool(r, "isAdmin"),
			FilterByVisibility: queryBool(r, "filterByVisibility"),
		}
		if opts.AsAdmin && user.Role != model.RoleAdmin {
			httpx.LogStatus(w, r, http.StatusForbidden, log.DebugLevel, "list_forms.is_admin")
			return
		}
		if !user.Role.CanAuthor() {
			directorate = user.Directorate
			opts.FilterByVisibility = true
		}

		forms, err := app.Forms.List(r.Context(), directorate, opts)
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_forms", err)
			return
		}

		render.JSON(w, r, forms)
	}
}

// loadVisibleForm loads a form for the caller. Forms closed to a viewer's
// directorate are reported as missing.
func loadVisibleForm(app app.App, w http.ResponseWriter, r *http.Request) (model.FormWithDetails, bool) {
	id := chi.URLParam(r, "id")
	form, err := app.Forms.Load(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, "db.get_form", err)
		return model.FormWithDetails{}, false
	}

	user := middlewares.CurrentUser(r)
	if !user.Role.CanAuthor() && !form.VisibleTo(user.Directorate) {
		httpx.LogNotFound(w, r, "get_form.visibility", id)
		return model.FormWithDetails{}, false
	}
	return form, true
}

func GetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := loadVisibleForm(app, w, r)
		if !ok {
			return
		}
		render.JSON(w, r, form)
	}
}

type formRequest struct {
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	Status              model.FormStatus    `json:"status"`
	Directorate         model.Directorate   `json:"directorate"`
	AllowedDirectorates []model.Directorate `json:"allowedDirectorates"`
}

// CreateForm creates a form without structure. Only administrators choose
// the owning directorate and the audience; other authors create forms owned
// by their directorate and open to all.
func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := formRequest{}
		if !decodeBody(w, r, &req) {
			return
		}

		user := middlewares.CurrentUser(r)
		form := model.Form{
			Title:               req.Title,
			Description:         req.Description,
			Status:              req.Status,
			CreatedBy:           user.ID,
			Directorate:         user.Directorate,
			AllowedDirectorates: []model.Directorate{model.AllDirectorates},
		}
		if form.Status == "" {
			form.Status = model.FormDraft
		}
		if !form.Status.Valid() {
			httpx.LogStatusMsg(w, r, http.StatusUnprocessableEntity, log.DebugLevel, "create_form.status", "status inválido: %s", form.Status)
			return
		}
		if user.Role == model.RoleAdmin {
			if req.Directorate != "" {
				form.Directorate = req.Directorate
			}
			form.AllowedDirectorates = req.AllowedDirectorates
		}
		if !form.Directorate.Valid() {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "create_form.directorate", "diretoria desconhecida: %s", form.Directorate)
			return
		}
		if !checkAudience(w, r, form.AllowedDirectorates) {
			return
		}

		form, err := app.Forms.Create(r.Context(), form)
		if err != nil {
			httpx.WriteError(w, r, "db.insert_form", err)
			return
		}

		created(w, r, form)
	}
}

type formUpdate struct {
	Title               *string              `json:"title"`
	Description         *string              `json:"description"`
	Status              *model.FormStatus    `json:"status"`
	AllowedDirectorates *[]model.Directorate `json:"allowedDirectorates"`
}

func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := formUpdate{}
		if !decodeBody(w, r, &req) {
			return
		}

		patch := store.FormPatch{
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
		}
		if middlewares.CurrentUser(r).Role == model.RoleAdmin && req.AllowedDirectorates != nil {
			if !checkAudience(w, r, *req.AllowedDirectorates) {
				return
			}
			patch.AllowedDirectorates = req.AllowedDirectorates
		}

		form, err := app.Forms.Update(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			httpx.WriteError(w, r, "db.update_form", err)
			return
		}

		render.JSON(w, r, form)
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := app.Forms.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, r, "db.delete_form", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// SaveStructure replaces the sections and fields of a form. The answer
// carries the permanent ids given to temporary ones.
func SaveStructure(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := store.Structure{}
		if !decodeBody(w, r, &req) {
			return
		}

		structure, err := app.Forms.SaveStructure(r.Context(), chi.URLParam(r, "id"), req.Sections, req.Fields)
		if err != nil {
			httpx.WriteError(w, r, "db.save_structure", err)
			return
		}

		render.JSON(w, r, structure)
	}
}

type draftRequest struct {
	builder.Draft
	Publish bool `json:"publish"`
}

// SaveDraftForm saves a whole builder session: the form, its audience and
// its structure, optionally publishing it. Rule violations answer 422 with
// every problem found and nothing is written.
func SaveDraftForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := draftRequest{}
		if !decodeBody(w, r, &req) {
			return
		}
		if !checkAudience(w, r, req.AllowedDirectorates) {
			return
		}

		user := middlewares.CurrentUser(r)
		draft := &req.Draft
		draft.FormID = chi.URLParam(r, "id")

		form, err := draft.Save(r.Context(), app.Forms, user, req.Publish)
		var violation *builder.ValidationError
		if errors.As(err, &violation) {
			httpx.WriteError(w, r, "builder.validate", draft.Problems(user.Role == model.RoleAdmin))
			return
		}
		if err != nil {
			httpx.WriteError(w, r, "db.save_draft", err)
			return
		}

		if draft.FormID != chi.URLParam(r, "id") {
			created(w, r, form)
			return
		}
		render.JSON(w, r, form)
	}
}

type statusRequest struct {
	Status model.FormStatus `json:"status"`
}

// SetFormStatus publishes, unpublishes or archives a form. Archiving is
// final.
func SetFormStatus(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := statusRequest{}
		if !decodeBody(w, r, &req) {
			return
		}

		form, err := app.Forms.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
		if err != nil {
			httpx.WriteError(w, r, "db.set_form_status", err)
			return
		}

		render.JSON(w, r, form)
	}
}

func ListFormResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := app.Forms.Get(r.Context(), id); err != nil {
			httpx.WriteError(w, r, "db.get_form", err)
			return
		}

		responses, err := app.Responses.ListByForm(r.Context(), id)
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_responses", err)
			return
		}

		render.JSON(w, r, responses)
	}
}

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type exporter func(buf *bytes.Buffer, form model.FormWithDetails, responses []model.ResponseWithAnswers) error

func exportResponses(app app.App, ext, contentType string, write exporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		form, err := app.Forms.Load(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, r, "db.get_form", err)
			return
		}

		responses, err := app.Responses.ListByForm(r.Context(), id)
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_responses", err)
			return
		}

		buf := &bytes.Buffer{}
		if err = write(buf, form, responses); err != nil {
			httpx.LogInternalError(w, r, "export."+ext, err)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
			"filename": export.FileName(form.Form, ext),
		}))
		w.Write(buf.Bytes())
	}
}

func ExportCSV(app app.App) http.HandlerFunc {
	return exportResponses(app, "csv", csvContentType, func(buf *bytes.Buffer, form model.FormWithDetails, responses []model.ResponseWithAnswers) error {
		return export.WriteCSV(buf, form, responses, app.Location())
	})
}

func ExportXLSX(app app.App) http.HandlerFunc {
	return exportResponses(app, "xlsx", xlsxContentType, func(buf *bytes.Buffer, form model.FormWithDetails, responses []model.ResponseWithAnswers) error {
		return export.WriteXLSX(buf, form, responses, app.Location())
	})
}
