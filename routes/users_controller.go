package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sgjt/gestao-forms/app"
	"github.com/sgjt/gestao-forms/httpx"
	"github.com/sgjt/gestao-forms/log"
	"github.com/sgjt/gestao-forms/model"
	"github.com/sgjt/gestao-forms/routes/middlewares"
	"github.com/sgjt/gestao-forms/store"
)

func ListUsers(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := app.Users.List(r.Context())
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_users", err)
			return
		}
		render.JSON(w, r, users)
	}
}

func GetUser(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := app.Users.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.WriteError(w, r, "db.get_user", err)
			return
		}
		render.JSON(w, r, user)
	}
}

// validUser checks the parts of a user an administrator may set.
func validUser(w http.ResponseWriter, r *http.Request, role *model.Role, status *model.UserStatus, directorate *model.Directorate) bool {
	if role != nil && !role.Valid() {
		httpx.LogStatusMsg(w, r, http.StatusUnprocessableEntity, log.DebugLevel, "user.role", "perfil inválido: %s", *role)
		return false
	}
	if status != nil && *status != model.UserActive && *status != model.UserInactive {
		httpx.LogStatusMsg(w, r, http.StatusUnprocessableEntity, log.DebugLevel, "user.status", "situação inválida: %s", *status)
		return false
	}
	if directorate != nil && !directorate.Valid() {
		httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "user.directorate", "diretoria desconhecida: %s", *directorate)
		return false
	}
	return true
}

func CreateUser(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := model.User{}
		if !decodeBody(w, r, &user) {
			return
		}

		if strings.TrimSpace(user.Email) == "" || user.Password == "" || strings.TrimSpace(user.Name) == "" {
			httpx.LogStatusMsg(w, r, http.StatusUnprocessableEntity, log.DebugLevel, "create_user.required", "nome, e-mail e senha são obrigatórios")
			return
		}
		if user.Role == "" {
			user.Role = model.RoleViewer
		}
		if user.Status == "" {
			user.Status = model.UserActive
		}
		if !validUser(w, r, &user.Role, &user.Status, &user.Directorate) {
			return
		}

		user, err := app.Users.Create(r.Context(), user)
		if err != nil {
			httpx.WriteError(w, r, "db.insert_user", err)
			return
		}

		created(w, r, user)
	}
}

type userUpdate struct {
	Name        *string            `json:"name"`
	Email       *string            `json:"email"`
	Role        *model.Role        `json:"role"`
	Status      *model.UserStatus  `json:"status"`
	Directorate *model.Directorate `json:"directorate"`
	Password    *string            `json:"password"`
}

func UpdateUser(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := userUpdate{}
		if !decodeBody(w, r, &req) {
			return
		}
		if !validUser(w, r, req.Role, req.Status, req.Directorate) {
			return
		}
		if req.Password != nil && *req.Password == "" {
			req.Password = nil
		}

		user, err := app.Users.Update(r.Context(), chi.URLParam(r, "id"), store.UserPatch{
			Name:        req.Name,
			Email:       req.Email,
			Role:        req.Role,
			Status:      req.Status,
			Directorate: req.Directorate,
			Password:    req.Password,
		})
		if err != nil {
			httpx.WriteError(w, r, "db.update_user", err)
			return
		}

		render.JSON(w, r, user)
	}
}

// DeleteUser removes a user. Administrators cannot remove themselves.
func DeleteUser(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == middlewares.CurrentUser(r).ID {
			httpx.LogStatusMsg(w, r, http.StatusConflict, log.DebugLevel, "delete_user.self", "não é possível excluir o próprio usuário")
			return
		}

		if err := app.Users.Delete(r.Context(), id); err != nil {
			httpx.WriteError(w, r, "db.delete_user", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
