package routes

import (
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/sgjt/gestao-forms/app"
	"github.com/sgjt/gestao-forms/httpx"
	"github.com/sgjt/gestao-forms/log"
)

var reRefreshAuth = regexp.MustCompile(`(?i)^refresh\s+(.*)`)

// Token serves the oauth password and refresh_token grants from a form
// encoded body.
func Token(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_form")
			return
		}
		grant(app, w, r, r.PostForm)
	}
}

// Login exchanges HTTP basic credentials for a token pair.
func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		grant(app, w, r, url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		})
	}
}

// Refresh exchanges the refresh token in an "Authorization: Refresh <token>"
// header for a new token pair.
func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match := reRefreshAuth.FindStringSubmatch(r.Header.Get("authorization"))
		if len(match) == 0 {
			httpx.LogStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}

		grant(app, w, r, url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {match[1]},
		})
	}
}

// grant runs a token request through the bearer server. Refused grants are
// logged and answered with a plain 401.
func grant(app app.App, w http.ResponseWriter, r *http.Request, values url.Values) {
	body := values.Encode()
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, "/", strings.NewReader(body))
	if err != nil {
		httpx.LogInternalError(w, r, "auth.new_request", err)
		return
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	req.Header.Set("content-length", strconv.Itoa(len(body)))

	resp := httpx.NewResponseBuffer()
	app.UserCredentials(resp, req)

	switch status := resp.Status(); {
	case status == http.StatusOK:
		resp.Flush(w)
	case status < http.StatusInternalServerError:
		log.Debugf("auth.%s: refused (%d) %s", values.Get("grant_type"), status, resp.Body())
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, httpx.ErrorBody{Error: "credenciais inválidas"})
	default:
		log.Errorf("auth.%s: %s", values.Get("grant_type"), resp.Body())
		resp.Flush(w)
	}
}
