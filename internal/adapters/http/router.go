package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/wealthplay/nex-mentor/internal/config"
	"github.com/wealthplay/nex-mentor/internal/core/domain"
	"github.com/wealthplay/nex-mentor/internal/core/ports"
)

const (
	userIDHeader          = "X-User-Id"
	exchangePublishBudget = 2 * time.Second
)

// ExchangeObserver counts history publish attempts.
type ExchangeObserver interface {
	RecordExchangePublish(err error)
}

type Dependencies struct {
	Mentor    ports.MentorResponder
	Catalog   ports.CourseCatalog
	TopicChat ports.TopicChatService

	// Optional. A nil TopicChat disables the history routes and publishing.
	BreakerStates    func() map[string]string
	ExchangeObserver ExchangeObserver
}

type Router struct {
	cfg       config.Config
	deps      Dependencies
	validator *requestValidator
}

func NewRouter(cfg config.Config, deps Dependencies) (*Router, error) {
	validator, err := newRequestValidator()
	if err != nil {
		return nil, err
	}
	return &Router{cfg: cfg, deps: deps, validator: validator}, nil
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)

	mux.HandleFunc("POST /v1/mentor/respond", rt.validated(rt.mentorRespond))
	mux.HandleFunc("POST /v1/mentor/general", rt.validated(rt.mentorGeneral))

	mux.HandleFunc("GET /v1/courses", rt.listCourses)
	mux.HandleFunc("GET /v1/courses/{course_id}", rt.getCourse)

	if rt.deps.TopicChat != nil {
		mux.HandleFunc("POST /v1/topic-chat", rt.validated(rt.saveTopicMessage))
		mux.HandleFunc("GET /v1/topic-chat/{course_id}", rt.topicHistory)
		mux.HandleFunc("GET /v1/topic-chat/{course_id}/{module_id}", rt.topicHistory)
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, rt.cfg.BackpressureWait())
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{"status": "ok", "mentor": "Nex"}
	if rt.deps.BreakerStates != nil {
		if states := rt.deps.BreakerStates(); len(states) > 0 {
			payload["breakers"] = states
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

func (rt *Router) validated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := rt.validator.validate(r); err != nil {
			message := validationMessage(err)
			if strings.HasPrefix(r.URL.Path, "/v1/mentor/") {
				writeJSON(w, http.StatusBadRequest, domain.ErrorResult(message, domain.ErrInvalidInput))
				return
			}
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": message})
			return
		}
		next(w, r)
	}
}

type mentorRequestBody struct {
	CourseID string  `json:"course_id"`
	ModuleID *string `json:"module_id"`
	Question string  `json:"question"`
}

func (rt *Router) mentorRespond(w http.ResponseWriter, r *http.Request) {
	var body mentorRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, domain.ErrorResult("invalid json", domain.ErrInvalidInput))
		return
	}
	req := domain.MentorRequest{CourseID: body.CourseID, Question: body.Question}
	if body.ModuleID != nil {
		req.ModuleID = *body.ModuleID
	}

	result := rt.deps.Mentor.Respond(r.Context(), req)
	rt.publishExchange(r, req, result)
	writeMentorResult(w, result)
}

func (rt *Router) mentorGeneral(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, domain.ErrorResult("invalid json", domain.ErrInvalidInput))
		return
	}
	writeMentorResult(w, rt.deps.Mentor.GeneralInquiry(r.Context(), body.Question))
}

// publishExchange records the exchange for the caller's topic history. It
// never affects the mentor response.
func (rt *Router) publishExchange(r *http.Request, req domain.MentorRequest, result domain.MentorResult) {
	userID := strings.TrimSpace(r.Header.Get(userIDHeader))
	if rt.deps.TopicChat == nil || userID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), exchangePublishBudget)
	defer cancel()

	err := rt.deps.TopicChat.PublishExchange(ctx, userID, req, result)
	if rt.deps.ExchangeObserver != nil {
		rt.deps.ExchangeObserver.RecordExchangePublish(err)
	}
	if err != nil {
		slog.WarnContext(ctx, "exchange_publish_failed",
			"course_id", req.CourseID,
			"error", err,
		)
	}
}

func (rt *Router) listCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := rt.deps.Catalog.ListCourses(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"courses": courses})
}

func (rt *Router) getCourse(w http.ResponseWriter, r *http.Request) {
	course, err := rt.deps.Catalog.GetCourse(r.Context(), r.PathValue("course_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (rt *Router) topicHistory(w http.ResponseWriter, r *http.Request) {
	messages, err := rt.deps.TopicChat.History(
		r.Context(),
		r.Header.Get(userIDHeader),
		r.PathValue("course_id"),
		r.PathValue("module_id"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (rt *Router) saveTopicMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CourseID string  `json:"course_id"`
		ModuleID *string `json:"module_id"`
		Text     string  `json:"text"`
		Sender   string  `json:"sender"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	msg := domain.TopicChatMessage{
		UserID:   strings.TrimSpace(r.Header.Get(userIDHeader)),
		CourseID: body.CourseID,
		Text:     body.Text,
		Sender:   body.Sender,
	}
	if body.ModuleID != nil {
		msg.ModuleID = *body.ModuleID
	}

	saved, err := rt.deps.TopicChat.SaveMessage(r.Context(), msg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func writeMentorResult(w http.ResponseWriter, result domain.MentorResult) {
	status := http.StatusOK
	if result.Type == domain.ResultError {
		status = mapErrorToHTTPStatus(result.Cause)
	}
	writeJSON(w, status, result)
}

func writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request_failed", "error", err)
		message = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
