// Package main library catalog & loan API.
//
// @title           Biblioteca API
// @version         1.0
// @description     Library catalog and loan ledger (books, stock, loans).
// @BasePath        /api
// @schemes         http
package main

import (
	"context"
	"log/slog"
	"os"

	"biblioteca/app/echoServer"
	bookctrl "biblioteca/app/echoServer/controller/book"
	loanctrl "biblioteca/app/echoServer/controller/loan"
	"biblioteca/app/echoServer/validation"
	"biblioteca/config"
	bookrepo "biblioteca/repository/book"
	loanrepo "biblioteca/repository/loan"
	"biblioteca/repository/memory"
	catalogsvc "biblioteca/service/catalog"
	ledgersvc "biblioteca/service/ledger"
	"biblioteca/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// repos: Postgres when configured, in-memory otherwise
	var (
		br catalogsvc.Repo
		lr ledgersvc.Repo
	)
	if cfg.DatabaseURL != "" {
		db, err := database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		br = bookrepo.New(db)
		lr = loanrepo.New(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store")
		store := memory.New()
		br = store
		lr = store
	}

	// services
	cs := catalogsvc.New(br)
	ls := ledgersvc.New(lr)

	// controllers
	v := validator.New()
	bookC := &bookctrl.Controller{Svc: cs, V: v, Log: log}
	loanC := &loanctrl.Controller{Svc: ls, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Book: bookC,
		Loan: loanC,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
