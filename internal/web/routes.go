package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-id/internal/migrate"
	"github.com/kozaktomas/face-id/internal/recognizer"
	"github.com/kozaktomas/face-id/internal/web/handlers"
)

func (s *Server) setupRoutes(rec *recognizer.Recognizer, migrateRunner *migrate.Runner) {
	facesHandler := handlers.NewFacesHandler(rec)
	migrateHandler := handlers.NewMigrateHandler(migrateRunner)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", facesHandler.Health)

		r.Post("/faces/add", facesHandler.Add)
		r.Post("/faces/identify", facesHandler.Identify)
		r.Get("/faces", facesHandler.List)
		r.Delete("/faces/{userID}", facesHandler.Delete)
		r.Post("/faces/clear", facesHandler.Clear)

		r.Post("/migrate", migrateHandler.Run)
	})
}
