// Package main console & games rental API.
//
// @title           Console & Games Rental API
// @version         1.0
// @description     Peer game-sharing platform: catalog, lending lifecycle, feedback.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/PawelKwidzinski/console-and-games-rental/app/echoServer"
	authctrl "github.com/PawelKwidzinski/console-and-games-rental/app/echoServer/controller/auth"
	feedbackctrl "github.com/PawelKwidzinski/console-and-games-rental/app/echoServer/controller/feedback"
	gamectrl "github.com/PawelKwidzinski/console-and-games-rental/app/echoServer/controller/game"
	lendingctrl "github.com/PawelKwidzinski/console-and-games-rental/app/echoServer/controller/lending"
	"github.com/PawelKwidzinski/console-and-games-rental/app/echoServer/validation"
	"github.com/PawelKwidzinski/console-and-games-rental/config"
	feedbackrepo "github.com/PawelKwidzinski/console-and-games-rental/repository/feedback"
	gamerepo "github.com/PawelKwidzinski/console-and-games-rental/repository/game"
	loanrepo "github.com/PawelKwidzinski/console-and-games-rental/repository/loan"
	userrepo "github.com/PawelKwidzinski/console-and-games-rental/repository/user"
	authsvc "github.com/PawelKwidzinski/console-and-games-rental/service/auth"
	feedbacksvc "github.com/PawelKwidzinski/console-and-games-rental/service/feedback"
	gamesvc "github.com/PawelKwidzinski/console-and-games-rental/service/game"
	"github.com/PawelKwidzinski/console-and-games-rental/service/lending"
	"github.com/PawelKwidzinski/console-and-games-rental/util/database"
	"github.com/PawelKwidzinski/console-and-games-rental/util/mailer"
	"github.com/PawelKwidzinski/console-and-games-rental/util/storage"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	gr := gamerepo.New(db)
	lr := loanrepo.New(db)
	fr := feedbackrepo.New(db)

	// collaborators
	files := storage.New(cfg.UploadDir)
	var mail mailer.Mailer = mailer.Noop{}
	if cfg.SMTPAddr != "" {
		mail = mailer.NewSMTP(cfg.SMTPAddr, cfg.SMTPFrom)
	}

	// services
	as := authsvc.New(ur, mail, log, cfg.JWTSecret, cfg.ActivationURL)
	gs := gamesvc.New(gr, lr, files)
	les := lending.New(database.NewTxRunner(db), gr, lr)
	fs := feedbacksvc.New(gr, fr)

	// expired activation tokens are purged in the background
	cleaner := authsvc.NewCleaner(ur, log)
	go cleaner.Run(ctx, time.Hour)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	gameC := &gamectrl.Controller{Svc: gs, V: v, Log: log}
	lendingC := &lendingctrl.Controller{Svc: les, Log: log}
	feedbackC := &feedbackctrl.Controller{Svc: fs, V: v, Log: log}

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
		Auth:     authC,
		Game:     gameC,
		Lending:  lendingC,
		Feedback: feedbackC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
