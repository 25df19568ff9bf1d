package app

import (
	"github.com/go-chi/oauth"
	"github.com/sgjt/gestao-forms/config"
	"github.com/sgjt/gestao-forms/store"
)

// App is handed to every handler factory.
type App struct {
	store.Stores
	*oauth.BearerServer
	config.Config
}
