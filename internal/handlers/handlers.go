package handlers

import (
	"UniversalInbox/internal/middleware"
	"UniversalInbox/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(recordService *service.RecordService, logger *zap.SugaredLogger) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)

	rh := NewRecordHandler(recordService, logger)

	r.Get("/api/health", Health)

	r.Route("/api/records", func(r chi.Router) {
		r.Get("/items", rh.ListItems)
		r.Put("/items/{id}", rh.PutItem)
		r.Delete("/items/{id}", rh.DeleteItem)

		r.Get("/bins", rh.ListBins)
		r.Put("/bins/{id}", rh.PutBin)
	})

	return &Handler{Router: r}
}
