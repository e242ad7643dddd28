package http

import (
	"fmt"
	"net/http"
	"strconv"

	"quiz-sitting-service/internal/app"
	"quiz-sitting-service/internal/domain"
)

// Handler serves the quiz pages.
type Handler struct {
	catalog  *app.CatalogService
	taker    *app.QuizTaker
	board    *app.Scoreboard
	marking  *app.MarkingService
	sessions *Sessions
	renderer Renderer
}

func NewHandler(catalog *app.CatalogService, taker *app.QuizTaker, board *app.Scoreboard, marking *app.MarkingService, sessions *Sessions, renderer Renderer) *Handler {
	return &Handler{
		catalog:  catalog,
		taker:    taker,
		board:    board,
		marking:  marking,
		sessions: sessions,
		renderer: renderer,
	}
}

func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFrom(r.Context())
	quizzes, err := h.catalog.ListQuizzes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	scores, err := h.board.QuizScores(r.Context(), principal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.renderer.Render(w, http.StatusOK, "quiz_list.html", map[string]any{
		"quiz_list":   summaries(quizzes),
		"scores_dict": scores,
	})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.renderer.Render(w, http.StatusOK, "category_list.html", map[string]any{"category_list": categories})
}

func (h *Handler) CategoryQuizzes(w http.ResponseWriter, r *http.Request) {
	category, quizzes, err := h.catalog.QuizzesByCategory(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.renderer.Render(w, http.StatusOK, "view_quiz_category.html", map[string]any{
		"category":  category,
		"quiz_list": summaries(quizzes),
	})
}

func (h *Handler) QuizDetail(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.catalog.QuizDetail(r.Context(), PrincipalFrom(r.Context()), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.renderer.Render(w, http.StatusOK, "quiz_detail.html", map[string]any{"quiz": app.Summarize(quiz)})
}

// Take presents the current question on GET and scores the posted answer on POST.
func (h *Handler) Take(w http.ResponseWriter, r *http.Request) {
	req := app.TakeRequest{Principal: PrincipalFrom(r.Context()), Slug: r.PathValue("slug")}
	if !req.Principal.IsAuthenticated() {
		req.SessionID = h.sessions.ID(w, r)
	}

	var sub *domain.Submission
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidSubmission, err))
			return
		}
		sub = &domain.Submission{
			Answer: r.PostForm.Get("answers"),
			Title:  r.PostForm.Get("answer_title"),
		}
	}

	result, err := h.taker.Take(r.Context(), req, sub)
	if err != nil {
		writeError(w, r, err)
		return
	}
	switch result.View {
	case app.ViewQuestion:
		h.renderer.Render(w, http.StatusOK, string(result.View), result.Question)
	case app.ViewResult:
		h.renderer.Render(w, http.StatusOK, string(result.View), result.Result)
	default:
		h.renderer.Render(w, http.StatusOK, string(result.View), map[string]any{"quiz": result.Quiz})
	}
}

func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	lb, err := h.board.Progress(r.Context(), PrincipalFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.renderer.Render(w, http.StatusOK, "progress_new.html", lb)
}

func (h *Handler) FinalProgress(w http.ResponseWriter, r *http.Request) {
	final, err := h.board.FinalProgress(r.Context(), PrincipalFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.renderer.Render(w, http.StatusOK, "final_progress.html", final)
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.board.Leaderboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.renderer.Render(w, http.StatusOK, "leaderboard_new.html", lb)
}

func (h *Handler) MarkingList(w http.ResponseWriter, r *http.Request) {
	filter := app.MarkingFilter{
		Quiz: r.URL.Query().Get("quiz_filter"),
		User: r.URL.Query().Get("user_filter"),
	}
	sittings, err := h.marking.List(r.Context(), PrincipalFrom(r.Context()), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.renderer.Render(w, http.StatusOK, "sitting_list.html", map[string]any{"sitting_list": sittings})
}

// MarkingDetail shows a sitting; a POST with qid toggles that question first.
func (h *Handler) MarkingDetail(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFrom(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, fmt.Errorf("sitting %q: %w", r.PathValue("id"), domain.ErrSittingNotFound))
		return
	}

	var detail app.MarkingDetail
	qid := ""
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidSubmission, err))
			return
		}
		qid = r.PostForm.Get("qid")
	}
	if qid != "" {
		questionID, perr := strconv.ParseInt(qid, 10, 64)
		if perr != nil {
			writeError(w, r, fmt.Errorf("%w: qid %q", domain.ErrInvalidSubmission, qid))
			return
		}
		detail, err = h.marking.Toggle(r.Context(), principal, id, questionID)
	} else {
		detail, err = h.marking.Detail(r.Context(), principal, id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.renderer.Render(w, http.StatusOK, "sitting_detail.html", detail)
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

func summaries(quizzes []domain.Quiz) []app.QuizSummary {
	out := make([]app.QuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		out = append(out, app.Summarize(quiz))
	}
	return out
}
