// Package server exposes the analysis pipeline and stored sessions over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	figmadocgen "github.com/kataras/figma-docgen"
	"github.com/kataras/figma-docgen/pkg/database"
	"github.com/kataras/figma-docgen/pkg/design"
	"github.com/kataras/figma-docgen/pkg/figma"
	"github.com/kataras/figma-docgen/pkg/llm"
	"github.com/kataras/figma-docgen/pkg/storage"
)

// maxBodyBytes bounds the analyze request body.
const maxBodyBytes = 1 << 20

// RunFunc runs one analysis. figmadocgen.Run in production.
type RunFunc func(ctx context.Context, opts figmadocgen.Options) (*figmadocgen.Result, error)

// URLSigner is implemented by stores that can hand out direct download links (S3Store).
type URLSigner interface {
	GetURL(ctx context.Context, sessionID, name string) (string, error)
}

// Server holds the collaborators of the HTTP handlers. Store is required; the others are optional.
type Server struct {
	Store      storage.Store
	Repository database.Repository
	LLM        *llm.Provider
	Logger     *slog.Logger

	// FigmaToken is used when a request carries no access token.
	FigmaToken   string
	Concurrency  int
	FigmaOptions []figma.Option

	Run RunFunc
}

// analyzeRequest is the body of POST /api/analyze.
type analyzeRequest struct {
	FigmaURL    string   `json:"figmaUrl"`
	AccessToken string   `json:"accessToken"`
	NodeIDs     []string `json:"nodeIds,omitempty"`
	Page        string   `json:"page,omitempty"`
	Previews    bool     `json:"previews,omitempty"`
}

type analyzeResponse struct {
	*figmadocgen.Result
	Files []string `json:"files"`
}

// sessionSummary is one entry of GET /api/sessions, whichever backend answered.
type sessionSummary struct {
	SessionID  string            `json:"sessionId"`
	FileKey    string            `json:"fileKey"`
	FileName   string            `json:"fileName"`
	Created    time.Time         `json:"created"`
	TokenCount int               `json:"tokenCount"`
	Sources    map[string]string `json:"sources,omitempty"`
}

type sessionResponse struct {
	SessionID string             `json:"sessionId"`
	Analysis  *database.Analysis `json:"analysis,omitempty"`
	Files     []string           `json:"files"`
}

// Handler returns the routes wrapped in request logging and CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/sessions", s.handleSessions)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleSession)
	mux.HandleFunc("GET /api/sessions/{id}/files/{name...}", s.handleFile)

	return logRequests(s.logger(), cors(mux))
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":  true,
		"llm": s.LLM.Configured(),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var in analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	in.FigmaURL = strings.TrimSpace(in.FigmaURL)
	if in.FigmaURL == "" {
		writeError(w, http.StatusBadRequest, "figmaUrl is required")
		return
	}
	token := strings.TrimSpace(in.AccessToken)
	if token == "" {
		token = s.FigmaToken
	}

	run := s.Run
	if run == nil {
		run = figmadocgen.Run
	}

	log := s.logger().With("figma_url", in.FigmaURL)
	res, err := run(r.Context(), figmadocgen.Options{
		AccessToken:  token,
		FileURL:      in.FigmaURL,
		NodeIDs:      in.NodeIDs,
		Page:         in.Page,
		LLM:          s.LLM,
		Concurrency:  s.Concurrency,
		Store:        s.Store,
		Repository:   s.Repository,
		Previews:     in.Previews,
		FigmaOptions: s.FigmaOptions,
		Logger:       figmadocgen.SlogLogger{L: log},
	})
	if err != nil {
		status := statusOf(err)
		if status >= http.StatusInternalServerError {
			log.Error("analysis failed", "error", err)
		}
		writeError(w, status, err.Error())
		return
	}

	log.Info("analysis complete", "session", res.SessionID, "nodes", res.NodeCount)
	names, err := s.Store.List(r.Context(), res.SessionID)
	if err != nil {
		names = fileNames(res.Files)
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Result: res, Files: names})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	if s.Repository != nil {
		records, err := s.Repository.List(r.Context(), limit)
		if err == nil {
			out := make([]sessionSummary, 0, len(records))
			for _, a := range records {
				out = append(out, sessionSummary{
					SessionID:  a.SessionID,
					FileKey:    a.FileKey,
					FileName:   a.FileName,
					Created:    a.CreatedAt,
					TokenCount: a.ColorCount + a.TypographyCount + a.SpacingCount + a.RadiusCount,
					Sources:    a.Sources,
				})
			}
			writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
			return
		}
		s.logger().Warn("listing sessions from the database failed, using session storage", "error", err)
	}

	infos, err := s.Store.Sessions(r.Context())
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	if limit > 0 && len(infos) > limit {
		infos = infos[:limit]
	}
	out := make([]sessionSummary, 0, len(infos))
	for _, info := range infos {
		out = append(out, sessionSummary{
			SessionID:  info.SessionID,
			FileKey:    info.FileKey,
			FileName:   info.FileName,
			Created:    info.Created,
			TokenCount: info.TokenCount,
			Sources:    info.Sources,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	resp := sessionResponse{SessionID: id, Files: []string{}}

	if s.Repository != nil {
		a, err := s.Repository.Get(r.Context(), id)
		switch {
		case err == nil:
			resp.Analysis = a
		case !errors.Is(err, database.ErrNotFound):
			writeError(w, statusOf(err), err.Error())
			return
		}
	}

	names, err := s.Store.List(r.Context(), id)
	switch {
	case err == nil:
		resp.Files = names
	case errors.Is(err, storage.ErrNotFound):
		if resp.Analysis == nil {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
	default:
		writeError(w, statusOf(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	id, name := r.PathValue("id"), r.PathValue("name")

	if signer, ok := s.Store.(URLSigner); ok {
		u, err := signer.GetURL(r.Context(), id, name)
		if err != nil {
			writeError(w, statusOf(err), err.Error())
			return
		}
		http.Redirect(w, r, u, http.StatusFound)
		return
	}

	content, err := s.Store.Get(r.Context(), id, name)
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType(name))
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(name)}))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// statusOf maps pipeline and storage errors to HTTP status codes.
func statusOf(err error) int {
	var apiErr *figma.APIError
	switch {
	case errors.Is(err, figmadocgen.ErrMissingToken),
		errors.Is(err, figma.ErrInvalidURL),
		errors.Is(err, storage.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, database.ErrNotFound),
		errors.Is(err, design.ErrPageNotFound):
		return http.StatusNotFound
	case errors.As(err, &apiErr):
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusTooManyRequests:
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".json":
		return "application/json"
	}
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func fileNames(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
