package http

import (
	"log"
	"net/http"
	"time"
)

// NewRouter mounts every route and wraps them with auth and request logging.
func NewRouter(h *Handler, ws *WSHandler, auth *Authenticator) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /quizzes", h.ListQuizzes)
	mux.HandleFunc("GET /categories", h.ListCategories)
	mux.HandleFunc("GET /categories/{name}", h.CategoryQuizzes)
	mux.HandleFunc("GET /quizzes/{slug}", h.QuizDetail)
	mux.HandleFunc("GET /quizzes/{slug}/take", h.Take)
	mux.HandleFunc("POST /quizzes/{slug}/take", h.Take)
	mux.HandleFunc("GET /progress", h.Progress)
	mux.HandleFunc("GET /final", h.FinalProgress)
	mux.HandleFunc("GET /leaderboard", h.Leaderboard)
	mux.HandleFunc("GET /marking", h.MarkingList)
	mux.HandleFunc("GET /marking/{id}", h.MarkingDetail)
	mux.HandleFunc("POST /marking/{id}", h.MarkingDetail)
	mux.HandleFunc("GET /ws/leaderboard", ws.ServeWS)
	return logRequests(auth.Middleware(mux))
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
