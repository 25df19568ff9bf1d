package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sgjt/gestao-forms/app"
	"github.com/sgjt/gestao-forms/httpx"
	"github.com/sgjt/gestao-forms/log"
	"github.com/sgjt/gestao-forms/model"
)

func knownDirectorate(w http.ResponseWriter, r *http.Request, d model.Directorate) bool {
	if d.Valid() {
		return true
	}
	httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "okr.directorate", "diretoria desconhecida: %s", d)
	return false
}

func ListObjectives(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		directorate, ok := queryDirectorate(w, r)
		if !ok {
			return
		}

		objectives, err := app.OKRs.ListObjectives(r.Context(), directorate)
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_objectives", err)
			return
		}
		render.JSON(w, r, objectives)
	}
}

func GetObjective(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		objective, err := app.OKRs.GetObjective(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, r, "db.get_objective", err)
			return
		}
		render.JSON(w, r, objective)
	}
}

func CreateObjective(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		objective := model.Objective{}
		if !decodeBody(w, r, &objective) || !knownDirectorate(w, r, objective.Directorate) {
			return
		}

		objective, err := app.OKRs.CreateObjective(r.Context(), objective)
		if err != nil {
			httpx.WriteError(w, r, "db.insert_objective", err)
			return
		}
		created(w, r, objective)
	}
}

func UpdateObjective(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		objective := model.Objective{}
		if !decodeBody(w, r, &objective) || !knownDirectorate(w, r, objective.Directorate) {
			return
		}
		objective.ID = chi.URLParam(r, "id")

		objective, err := app.OKRs.UpdateObjective(r.Context(), objective)
		if err != nil {
			httpx.WriteError(w, r, "db.update_objective", err)
			return
		}
		render.JSON(w, r, objective)
	}
}

// DeleteObjective removes an objective with its key results.
func DeleteObjective(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := app.OKRs.DeleteObjective(r.Context(), chi.URLParam(r, "id")); err != nil {
			httpx.WriteError(w, r, "db.delete_objective", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListKeyResults(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		directorate, ok := queryDirectorate(w, r)
		if !ok {
			return
		}

		krs, err := app.OKRs.ListKeyResults(r.Context(), directorate)
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_key_results", err)
			return
		}
		render.JSON(w, r, krs)
	}
}

func GetKeyResult(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kr, err := app.OKRs.GetKeyResult(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, r, "db.get_key_result", err)
			return
		}
		render.JSON(w, r, kr)
	}
}

func decodeKeyResult(w http.ResponseWriter, r *http.Request) (model.KeyResult, bool) {
	kr := model.KeyResult{}
	if !decodeBody(w, r, &kr) || !knownDirectorate(w, r, kr.Directorate) {
		return kr, false
	}
	if kr.Status == "" {
		kr.Status = model.NotStarted
	}
	return kr, true
}

func CreateKeyResult(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kr, ok := decodeKeyResult(w, r)
		if !ok {
			return
		}

		kr, err := app.OKRs.CreateKeyResult(r.Context(), kr)
		if err != nil {
			httpx.WriteError(w, r, "db.insert_key_result", err)
			return
		}
		created(w, r, kr)
	}
}

func UpdateKeyResult(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kr, ok := decodeKeyResult(w, r)
		if !ok {
			return
		}
		kr.ID = chi.URLParam(r, "id")

		kr, err := app.OKRs.UpdateKeyResult(r.Context(), kr)
		if err != nil {
			httpx.WriteError(w, r, "db.update_key_result", err)
			return
		}
		render.JSON(w, r, kr)
	}
}

func DeleteKeyResult(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := app.OKRs.DeleteKeyResult(r.Context(), chi.URLParam(r, "id")); err != nil {
			httpx.WriteError(w, r, "db.delete_key_result", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetOKRStats sums up the key results of ?directorate=, or of every
// directorate.
func GetOKRStats(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		directorate, ok := queryDirectorate(w, r)
		if !ok {
			return
		}

		krs, err := app.OKRs.ListKeyResults(r.Context(), directorate)
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_key_results", err)
			return
		}
		render.JSON(w, r, model.Stats(krs))
	}
}
