package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter регистрирует маршруты сервиса
func NewRouter(userHandler *UserHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/", HandleRoot)

	r.Get("/user", userHandler.ReadUsers)
	r.Post("/user", userHandler.CreateUser)
	r.Put("/user", userHandler.UpdateUser)
	r.Delete("/user", userHandler.DeleteUser)

	return r
}
