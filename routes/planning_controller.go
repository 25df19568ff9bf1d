package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sgjt/gestao-forms/app"
	"github.com/sgjt/gestao-forms/httpx"
	"github.com/sgjt/gestao-forms/log"
	"github.com/sgjt/gestao-forms/model"
	"github.com/sgjt/gestao-forms/store"
)

// decodeOver loads the entity behind {id} and decodes the body over it, so a
// card dragged across the board may send its new column only.
func decodeOver[T any](w http.ResponseWriter, r *http.Request, code string, load func(context.Context, string) (T, error)) (T, bool) {
	v, err := load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, code, err)
		return v, false
	}
	return v, decodeBody(w, r, &v)
}

func noContent(w http.ResponseWriter, r *http.Request, code string, err error) {
	if err != nil {
		httpx.WriteError(w, r, code, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func ListInitiatives(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		directorate, ok := queryDirectorate(w, r)
		if !ok {
			return
		}

		items, err := app.Initiatives.ListInitiatives(r.Context(), directorate, r.URL.Query().Get("keyResultId"))
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_initiatives", err)
			return
		}
		render.JSON(w, r, items)
	}
}

func GetInitiative(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := app.Initiatives.GetInitiative(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, r, "db.get_initiative", err)
			return
		}
		render.JSON(w, r, item)
	}
}

func CreateInitiative(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item := model.Initiative{}
		if !decodeBody(w, r, &item) || !knownDirectorate(w, r, item.Directorate) {
			return
		}

		item, err := app.Initiatives.CreateInitiative(r.Context(), item)
		if err != nil {
			httpx.WriteError(w, r, "db.insert_initiative", err)
			return
		}
		created(w, r, item)
	}
}

// UpdateInitiative applies the fields present in the body.
func UpdateInitiative(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, ok := decodeOver(w, r, "db.get_initiative", app.Initiatives.GetInitiative)
		if !ok || !knownDirectorate(w, r, item.Directorate) {
			return
		}
		item.ID = chi.URLParam(r, "id")

		item, err := app.Initiatives.UpdateInitiative(r.Context(), item)
		if err != nil {
			httpx.WriteError(w, r, "db.update_initiative", err)
			return
		}
		render.JSON(w, r, item)
	}
}

func DeleteInitiative(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		noContent(w, r, "db.delete_initiative", app.Initiatives.DeleteInitiative(r.Context(), chi.URLParam(r, "id")))
	}
}

func ListPrograms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		directorate, ok := queryDirectorate(w, r)
		if !ok {
			return
		}

		programs, err := app.Initiatives.ListPrograms(r.Context(), directorate)
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_programs", err)
			return
		}
		render.JSON(w, r, programs)
	}
}

func GetProgram(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		program, err := app.Initiatives.GetProgram(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, r, "db.get_program", err)
			return
		}
		render.JSON(w, r, program)
	}
}

func CreateProgram(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		program := model.Program{}
		if !decodeBody(w, r, &program) || !knownDirectorate(w, r, program.Directorate) {
			return
		}

		program, err := app.Initiatives.CreateProgram(r.Context(), program)
		if err != nil {
			httpx.WriteError(w, r, "db.insert_program", err)
			return
		}
		created(w, r, program)
	}
}

func UpdateProgram(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		program, ok := decodeOver(w, r, "db.get_program", app.Initiatives.GetProgram)
		if !ok || !knownDirectorate(w, r, program.Directorate) {
			return
		}
		program.ID = chi.URLParam(r, "id")

		program, err := app.Initiatives.UpdateProgram(r.Context(), program)
		if err != nil {
			httpx.WriteError(w, r, "db.update_program", err)
			return
		}
		render.JSON(w, r, program)
	}
}

// DeleteProgram removes a program with its initiatives.
func DeleteProgram(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		noContent(w, r, "db.delete_program", app.Initiatives.DeleteProgram(r.Context(), chi.URLParam(r, "id")))
	}
}

// boardFilter reads ?directorate=, ?programId= and ?priority=.
func boardFilter(w http.ResponseWriter, r *http.Request) (store.BoardFilter, bool) {
	directorate, ok := queryDirectorate(w, r)
	if !ok {
		return store.BoardFilter{}, false
	}
	f := store.BoardFilter{
		Directorate: directorate,
		ProgramID:   r.URL.Query().Get("programId"),
		Priority:    model.Priority(r.URL.Query().Get("priority")),
	}
	if f.Priority != "" && !f.Priority.Valid() {
		httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.priority", "prioridade desconhecida: %s", f.Priority)
		return store.BoardFilter{}, false
	}
	return f, true
}

func ListProgramInitiatives(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := boardFilter(w, r)
		if !ok {
			return
		}

		items, err := app.Initiatives.ListProgramInitiatives(r.Context(), f)
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_program_initiatives", err)
			return
		}
		render.JSON(w, r, items)
	}
}

// GetBoardStats counts the cards of the filtered board per column.
func GetBoardStats(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := boardFilter(w, r)
		if !ok {
			return
		}

		items, err := app.Initiatives.ListProgramInitiatives(r.Context(), f)
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_program_initiatives", err)
			return
		}
		render.JSON(w, r, model.BoardStatsOf(items))
	}
}

func GetProgramInitiative(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := app.Initiatives.GetProgramInitiative(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, r, "db.get_program_initiative", err)
			return
		}
		render.JSON(w, r, item)
	}
}

func CreateProgramInitiative(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item := model.ProgramInitiative{}
		if !decodeBody(w, r, &item) || !knownDirectorate(w, r, item.Directorate) {
			return
		}

		item, err := app.Initiatives.CreateProgramInitiative(r.Context(), item)
		if err != nil {
			httpx.WriteError(w, r, "db.insert_program_initiative", err)
			return
		}
		created(w, r, item)
	}
}

func UpdateProgramInitiative(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, ok := decodeOver(w, r, "db.get_program_initiative", app.Initiatives.GetProgramInitiative)
		if !ok || !knownDirectorate(w, r, item.Directorate) {
			return
		}
		item.ID = chi.URLParam(r, "id")

		item, err := app.Initiatives.UpdateProgramInitiative(r.Context(), item)
		if err != nil {
			httpx.WriteError(w, r, "db.update_program_initiative", err)
			return
		}
		render.JSON(w, r, item)
	}
}

func DeleteProgramInitiative(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		noContent(w, r, "db.delete_program_initiative", app.Initiatives.DeleteProgramInitiative(r.Context(), chi.URLParam(r, "id")))
	}
}

func ListExecutionControls(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		directorate, ok := queryDirectorate(w, r)
		if !ok {
			return
		}

		rows, err := app.Execution.List(r.Context(), directorate)
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_execution_controls", err)
			return
		}
		render.JSON(w, r, rows)
	}
}

// GetSprintStats sums up the execution table of ?directorate=, or of every
// directorate.
func GetSprintStats(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		directorate, ok := queryDirectorate(w, r)
		if !ok {
			return
		}

		rows, err := app.Execution.List(r.Context(), directorate)
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_execution_controls", err)
			return
		}
		render.JSON(w, r, model.SprintStatsOf(rows))
	}
}

func GetExecutionControl(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, err := app.Execution.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, r, "db.get_execution_control", err)
			return
		}
		render.JSON(w, r, row)
	}
}

func CreateExecutionControl(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row := model.ExecutionControl{}
		if !decodeBody(w, r, &row) || !knownDirectorate(w, r, row.Directorate) {
			return
		}

		row, err := app.Execution.Create(r.Context(), row)
		if err != nil {
			httpx.WriteError(w, r, "db.insert_execution_control", err)
			return
		}
		created(w, r, row)
	}
}

func UpdateExecutionControl(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, ok := decodeOver(w, r, "db.get_execution_control", app.Execution.Get)
		if !ok || !knownDirectorate(w, r, row.Directorate) {
			return
		}
		row.ID = chi.URLParam(r, "id")

		row, err := app.Execution.Update(r.Context(), row)
		if err != nil {
			httpx.WriteError(w, r, "db.update_execution_control", err)
			return
		}
		render.JSON(w, r, row)
	}
}

func DeleteExecutionControl(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		noContent(w, r, "db.delete_execution_control", app.Execution.Delete(r.Context(), chi.URLParam(r, "id")))
	}
}
