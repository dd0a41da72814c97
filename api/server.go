// Package api exposes builds, catalog parts and the build scaffold as a
// JSON HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"bikebuild/apperr"
	"bikebuild/buildparts"
	"bikebuild/cache"
	"bikebuild/config"
	"bikebuild/db"
	"bikebuild/scaffold"
	"bikebuild/store"
)

// Server routes requests to the scaffold and build-part services.
type Server struct {
	repo       store.Repository
	parts      *cache.PartCache
	builder    *scaffold.Builder
	mutator    *scaffold.Mutator
	buildParts *buildparts.Service
	userHeader string
	log        *zap.Logger
	now        func() time.Time
}

// NewServer wires the services over repo. parts must read through to the
// same repository.
func NewServer(repo store.Repository, parts *cache.PartCache, cfg *config.Config, log *zap.Logger) *Server {
	builder := scaffold.NewBuilder(repo, log, cfg.Scaffold.SerializeMaterialization)
	return &Server{
		repo:       repo,
		parts:      parts,
		builder:    builder,
		mutator:    scaffold.NewMutator(repo, builder, log),
		buildParts: buildparts.NewService(repo, builder, parts, log),
		userHeader: cfg.Auth.UserHeader,
		log:        log,
		now:        time.Now,
	}
}

// respondWithError sends a JSON error response.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON sends a JSON response.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Error marshalling JSON: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// fail maps err to a status code by kind and logs server-side faults.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrUnauthorized):
		respondWithError(w, http.StatusForbidden, err.Error())
	case db.IsForeignKeyViolation(err):
		respondWithError(w, http.StatusConflict, "Referenced row does not exist")
	default:
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", http.StatusInternalServerError),
			zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// ServeHTTP dispatches on the path segments.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(r.URL.Path, "/")
	if path == "" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Bike Build API"})
		return
	}

	parts := strings.Split(path, "/")
	if parts[0] != "api" || len(parts) < 2 {
		respondWithError(w, http.StatusNotFound, "Not found")
		return
	}
	switch parts[1] {
	case "health":
		s.handleHealth(w, r, parts[2:])
	case "components":
		s.handleComponents(w, r, parts[2:])
	case "builds":
		s.handleBuilds(w, r, parts[2:])
	case "parts":
		s.handleParts(w, r, parts[2:])
	default:
		respondWithError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, rest []string) {
	if len(rest) != 0 {
		respondWithError(w, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}
