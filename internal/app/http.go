package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"adnote/api/internal/auth"
	"adnote/api/internal/logging"
	"adnote/api/internal/rbac"
	"adnote/api/internal/session"
	"adnote/api/internal/store"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
	logger     *slog.Logger
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin, logger: service.log()}
}

func (s *HTTPServer) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(s.withMiddleware)
	router.Use(middleware.Recoverer)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, CodeNotFound, "Not found", nil)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	router.Get("/api/health", s.handleHealth)
	router.Head("/api/health", s.handleHealth)
	router.Get("/api/ready", s.handleReady)
	router.Head("/api/ready", s.handleReady)

	router.With(s.authorize(rbac.ActionReadSession)).Get("/api/session", s.handleSession)
	router.With(s.authorize(rbac.ActionEndSession)).Post("/api/session/logout", s.handleLogout)

	router.With(s.authorize(rbac.ActionParseContent)).Post("/api/content/parse", s.handleParseContent)
	router.With(s.authorize(rbac.ActionPreviewLink)).Get("/api/link-preview", s.handleLinkPreview)

	router.With(s.authorize(rbac.ActionListNotes)).Get("/notes", s.handleListNotes)

	router.Route("/editor", func(r chi.Router) {
		r.With(s.authorize(rbac.ActionCreateNote)).Post("/", s.handleCreateNote)
		r.Route("/{id}", func(r chi.Router) {
			r.With(s.authorize(rbac.ActionReadNote)).Get("/", s.handleGetNote)
			r.With(s.authorize(rbac.ActionReadNote)).Get("/export", s.handleExportNote)
			r.With(s.authorize(rbac.ActionUpdateNote)).Patch("/", s.handleUpdateNote)
			r.With(s.authorize(rbac.ActionDeleteNote)).Delete("/", s.handleDeleteNote)
		})
	})

	return router
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	statusCode := http.StatusOK
	checks := map[string]any{
		"database": map[string]any{"status": "ok"},
	}

	if err := s.service.Ping(ctx); err != nil {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
		checks["database"] = map[string]any{
			"status": "error",
			"error":  err.Error(),
		}
	}

	if configured, err := s.service.PingCache(ctx); configured {
		checks["redis"] = map[string]any{"status": "ok"}
		if err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["redis"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}
	}

	writeJSON(w, r, statusCode, map[string]any{
		"ok":     status == "ready",
		"status": status,
		"checks": checks,
	})
}

func (s *HTTPServer) handleSession(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeJSON(w, r, http.StatusOK, map[string]any{"authenticated": false, "userId": nil, "email": nil})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"authenticated": true,
		"userId":        identity.UserID,
		"email":         identity.Email,
		"expiresAt":     identity.ExpiresAt.Unix(),
	})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	revoked, err := s.service.Logout(r.Context(), identity)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"ok": true, "revoked": revoked})
}

func (s *HTTPServer) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	note, err := s.service.CreateNote(r.Context(), identity)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	location := "/editor/" + note.ID
	w.Header().Set("Location", location)
	writeJSON(w, r, http.StatusSeeOther, map[string]any{"id": note.ID, "location": location})
}

func (s *HTTPServer) handleGetNote(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	withHTML := r.URL.Query().Get("format") == "html"
	view, err := s.service.GetNote(r.Context(), identity, chi.URLParam(r, "id"), withHTML)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *HTTPServer) handleExportNote(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	result, err := s.service.ExportNote(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

func (s *HTTPServer) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	var body UpdateNoteInput
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}
	if _, err := s.service.UpdateNote(r.Context(), identity, chi.URLParam(r, "id"), body); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"success": true})
}

func (s *HTTPServer) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	if err := s.service.DeleteNote(r.Context(), identity, chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleListNotes(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	notes, err := s.service.ListNotes(r.Context(), identity, r.URL.Query().Get("sort"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"items": notes})
}

func (s *HTTPServer) handleParseContent(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	var body ParseContentInput
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}
	content, err := s.service.ParseContent(identity, body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"content": content})
}

func (s *HTTPServer) handleLinkPreview(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	preview, err := s.service.LinkPreview(identity, r.URL.Query().Get("href"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, preview)
}

type identityKey struct{}

func identityFrom(ctx context.Context) (session.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(session.Identity)
	return identity, ok && identity.UserID != ""
}

// authorize resolves the caller and admits the request when the caller's
// role may perform action. Unresolved callers act as anon.
func (s *HTTPServer) authorize(action rbac.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := rbac.RoleAnon
			identity, err := s.service.Resolve(r)
			switch {
			case err == nil:
				role = rbac.RoleAuthenticated
				r = r.WithContext(context.WithValue(r.Context(), identityKey{}, identity))
			case errors.Is(err, session.ErrNoSession):
				s.logger.DebugContext(r.Context(), "no session", logging.Err(err))
			default:
				s.logger.ErrorContext(r.Context(), "session lookup failed", logging.Err(err))
				writeError(w, r, http.StatusInternalServerError, CodeServerError, "Session lookup failed", nil)
				return
			}

			if !rbac.Can(role, action) {
				writeError(w, r, http.StatusUnauthorized, CodeUnauthenticated, "Unauthenticated", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// fail maps err to a response, logging failures that are not the
// caller's fault.
func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message, details := mapError(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("code", code),
			logging.Err(err),
		)
	}
	writeError(w, r, status, code, message, details)
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		if r.Method == http.MethodOptions {
			writer.WriteHeader(http.StatusNoContent)
		} else {
			next.ServeHTTP(writer, r)
		}

		level := slog.LevelInfo
		switch {
		case writer.status >= http.StatusInternalServerError:
			level = slog.LevelError
		case writer.status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		s.logger.LogAttrs(r.Context(), level, "request",
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", writer.status),
			slog.Int64("duration_ms", time.Since(started).Milliseconds()),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Credentials", "true")
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
	header.Set("Access-Control-Expose-Headers", "Location, X-Request-ID")
	header.Set("Cache-Control", "no-store")
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	render.Status(r, status)
	render.JSON(w, r, payload)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, r, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.New("request body is required")
	}
	if err := render.DecodeJSON(r.Body, target); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound, CodeNotFound, "Not found", nil
	}
	if errors.Is(err, store.ErrOwnerRequired) || errors.Is(err, session.ErrNoSession) ||
		errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return http.StatusUnauthorized, CodeUnauthenticated, "Unauthenticated", nil
	}
	if isStoreFailure(err) {
		return http.StatusInternalServerError, CodePersistenceError, "Persistence error", nil
	}
	return http.StatusInternalServerError, CodeServerError, "Server error", nil
}
