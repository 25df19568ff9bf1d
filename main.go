package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sgjt/gestao-forms/app"
	"github.com/sgjt/gestao-forms/config"
	"github.com/sgjt/gestao-forms/database"
	"github.com/sgjt/gestao-forms/httpx"
	"github.com/sgjt/gestao-forms/log"
	"github.com/sgjt/gestao-forms/model"
	"github.com/sgjt/gestao-forms/routes"
	"github.com/sgjt/gestao-forms/store"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	stores := store.New(db)
	if err = seedAdmin(context.Background(), stores.Users, cfg); err != nil {
		log.Fatal("main.seed_admin:", err)
	}

	app := app.App{
		Stores:       stores,
		BearerServer: httpx.NewBearerServer(stores.Users, cfg),
		Config:       cfg,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

// seedAdmin creates the configured administrator on a database without
// users.
func seedAdmin(ctx context.Context, users *store.UserStore, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	n, err := users.Count(ctx)
	if err != nil || n > 0 {
		return err
	}

	admin, err := users.Create(ctx, model.User{
		Name:        "Administrador",
		Email:       cfg.AdminEmail,
		Password:    cfg.AdminPassword,
		Role:        model.RoleAdmin,
		Status:      model.UserActive,
		Directorate: model.SGJT,
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{"id": admin.ID, "email": admin.Email}).Info("seeded administrator")
	return nil
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
