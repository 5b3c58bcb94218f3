package main

import (
	"context"

	"equiptrack/app"
	"equiptrack/clock"
	"equiptrack/config"
	"equiptrack/controllers"
	"equiptrack/db"
	"equiptrack/loans"
	"equiptrack/risk"
	"equiptrack/routes"
	"equiptrack/suspension"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	application := app.MustNew(cfg)
	defer application.Close()

	clk := clock.Real{}
	repo := db.NewRepo(application.DB)

	susp := suspension.NewManager(repo, clk, application.Log)
	scanner := risk.NewScanner(repo, clk, susp, application.Log)

	srv := &controllers.Srv{
		Store:   repo,
		Loans:   loans.NewManager(repo, clk),
		Scanner: scanner,
		Susp:    susp,
		AppSess: application.AppSessions(),
		Cfg:     cfg,
	}

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application, srv, clk)

	// Background expiry + risk sweep.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scanner.Run(ctx, cfg.ScanInterval)

	application.Log.Info().Str("port", cfg.Port).Msg("listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		application.Log.Fatal().Err(err).Msg("server")
	}
}
