package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/sgjt/gestao-forms/httpx"
	"github.com/sgjt/gestao-forms/log"
	"github.com/sgjt/gestao-forms/model"
)

// decodeBody reads a JSON body into v, answering 400 when it cannot.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "%s", err)
		return false
	}
	return true
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

// queryDirectorate reads an optional ?directorate= parameter. Unknown
// directorates answer 400.
func queryDirectorate(w http.ResponseWriter, r *http.Request) (model.Directorate, bool) {
	d := model.Directorate(r.URL.Query().Get("directorate"))
	if d == "" || d.Valid() {
		return d, true
	}
	httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.directorate", "diretoria desconhecida: %s", d)
	return "", false
}

// checkAudience validates the directorates a form is opened to.
func checkAudience(w http.ResponseWriter, r *http.Request, audience []model.Directorate) bool {
	for _, d := range audience {
		if d != model.AllDirectorates && !d.Valid() {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.audience", "diretoria desconhecida: %s", d)
			return false
		}
	}
	return true
}

func created(w http.ResponseWriter, r *http.Request, v any) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, v)
}
