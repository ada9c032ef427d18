package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ubateam/uba-backend/internal/config"
	"github.com/ubateam/uba-backend/internal/es"
	"github.com/ubateam/uba-backend/internal/handlers"
	"github.com/ubateam/uba-backend/internal/logging"
	authmw "github.com/ubateam/uba-backend/internal/middleware/auth"
	loggingmw "github.com/ubateam/uba-backend/internal/middleware/logging"
	"github.com/ubateam/uba-backend/internal/mykafka"
	"github.com/ubateam/uba-backend/internal/rbac"
	"github.com/ubateam/uba-backend/internal/tokens"
	httpserver "github.com/ubateam/uba-backend/internal/transport/http"
	"github.com/ubateam/uba-backend/internal/validation"
)

const usersIndex = "users"

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(configuration.JWT_SECRET, "JWT_SECRET")

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	prod := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	tokenService := &tokens.Service{
		Secret: []byte(configuration.JWT_SECRET),
		TTL:    configuration.TokenTTL(),
	}
	resolver := &rbac.Resolver{Store: &rbac.GormStore{DB: db}}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Validator = validation.New()

	deps := httpserver.Deps{
		Auth: &authmw.Middleware{Tokens: tokenService, Resolver: resolver},
		Users: &handlers.UserHandler{
			DB:       db,
			Tokens:   tokenService,
			Resolver: resolver,
			Producer: prod,
			ES:       esClient,
			ESIndex:  usersIndex,
		},
		Roles:       &handlers.RoleHandler{DB: db},
		Permissions: &handlers.PermissionHandler{DB: db},
		Internships: &handlers.InternshipHandler{DB: db},
		Search:      &handlers.SearchHandler{ES: esClient, Index: usersIndex},
	}
	httpserver.Register(e, &deps)

	port := configuration.PORT
	if port == "" {
		port = "8000"
	}
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
