package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sgjt/gestao-forms/app"
	"github.com/sgjt/gestao-forms/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Route("/auth", func(r chi.Router) {
		r.Post("/token", Token(app))
		r.Post("/login", Login(app))
		r.Post("/refresh", Refresh(app))
	})

	root.Group(func(r chi.Router) {
		r.Use(middlewares.Authenticated(app.TokenSecret, app.Users))

		r.Get("/me", Me(app))
		r.Get("/directorates", ListDirectorates(app))

		r.Route("/forms", formsRouter(app))

		r.Route("/users", func(r chi.Router) {
			r.Get("/{id}/responses", ListUserResponses(app))

			r.Group(func(r chi.Router) {
				r.Use(middlewares.Admin)

				r.Get("/", ListUsers(app))
				r.Post("/", CreateUser(app))
				r.Get("/{id}", GetUser(app))
				r.Put("/{id}", UpdateUser(app))
				r.Delete("/{id}", DeleteUser(app))
			})
		})

		r.Route("/objectives", func(r chi.Router) {
			r.Get("/", ListObjectives(app))
			r.Get("/{id}", GetObjective(app))
			r.With(middlewares.Author).Post("/", CreateObjective(app))
			r.With(middlewares.Author).Put("/{id}", UpdateObjective(app))
			r.With(middlewares.Author).Delete("/{id}", DeleteObjective(app))
		})
		r.Route("/key-results", func(r chi.Router) {
			r.Get("/", ListKeyResults(app))
			r.Get("/{id}", GetKeyResult(app))
			r.With(middlewares.Author).Post("/", CreateKeyResult(app))
			r.With(middlewares.Author).Put("/{id}", UpdateKeyResult(app))
			r.With(middlewares.Author).Delete("/{id}", DeleteKeyResult(app))
		})
		r.Get("/okr/stats", GetOKRStats(app))

		r.Route("/initiatives", func(r chi.Router) {
			r.Get("/", ListInitiatives(app))
			r.Get("/{id}", GetInitiative(app))
			r.With(middlewares.Author).Post("/", CreateInitiative(app))
			r.With(middlewares.Author).Put("/{id}", UpdateInitiative(app))
			r.With(middlewares.Author).Delete("/{id}", DeleteInitiative(app))
		})
		r.Route("/programs", func(r chi.Router) {
			r.Get("/", ListPrograms(app))
			r.Get("/{id}", GetProgram(app))
			r.With(middlewares.Author).Post("/", CreateProgram(app))
			r.With(middlewares.Author).Put("/{id}", UpdateProgram(app))
			r.With(middlewares.Author).Delete("/{id}", DeleteProgram(app))
		})
		r.Route("/program-initiatives", func(r chi.Router) {
			r.Get("/", ListProgramInitiatives(app))
			r.Get("/stats", GetBoardStats(app))
			r.Get("/{id}", GetProgramInitiative(app))
			r.With(middlewares.Author).Post("/", CreateProgramInitiative(app))
			r.With(middlewares.Author).Put("/{id}", UpdateProgramInitiative(app))
			r.With(middlewares.Author).Delete("/{id}", DeleteProgramInitiative(app))
		})
		r.Route("/execution-controls", func(r chi.Router) {
			r.Get("/", ListExecutionControls(app))
			r.Get("/stats", GetSprintStats(app))
			r.Get("/{id}", GetExecutionControl(app))
			r.With(middlewares.Author).Post("/", CreateExecutionControl(app))
			r.With(middlewares.Author).Put("/{id}", UpdateExecutionControl(app))
			r.With(middlewares.Author).Delete("/{id}", DeleteExecutionControl(app))
		})
	})

	return root
}

func formsRouter(app app.App) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", ListForms(app))
		r.Get("/{id}", GetForm(app))
		r.Get("/{id}/fill", GetFormFill(app))
		r.Post("/{id}/responses", SaveResponse(app))
		r.Get("/{id}/responses/{responseId}", GetResponse(app))

		r.Group(func(r chi.Router) {
			r.Use(middlewares.Author)

			r.Post("/", CreateForm(app))
			r.Put("/{id}", UpdateForm(app))
			r.Delete("/{id}", DeleteForm(app))
			r.Post("/{id}/structure", SaveStructure(app))
			r.Post("/draft", SaveDraftForm(app))
			r.Put("/{id}/draft", SaveDraftForm(app))
			r.Post("/{id}/status", SetFormStatus(app))

			r.Get("/{id}/responses", ListFormResponses(app))
			r.Get("/{id}/export.csv", ExportCSV(app))
			r.Get("/{id}/export.xlsx", ExportXLSX(app))
		})
	}
}
