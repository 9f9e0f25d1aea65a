package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/ws", func(r chi.Router) {
		r.Get("/room", c.roomSocket)
		r.Get("/job", c.jobSocket)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/ktv/queue", c.queueItem)
		r.Post("/job/progress", c.reportProgress)
	})

	return r
}
