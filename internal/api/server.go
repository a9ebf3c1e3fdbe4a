// Package api serves layouts over HTTP.
//
//	POST   /v1/layouts                                 lay out a world (JSON or YAML body)
//	GET    /v1/layouts                                 list stored layouts
//	GET    /v1/layouts/{id}                            full history document
//	DELETE /v1/layouts/{id}                            remove a layout
//	GET    /v1/layouts/{id}/snapshots/{step}.{format}  render one snapshot
//	GET    /healthz                                    liveness and build info
//
// {step} is a snapshot index or "last"; {format} is svg, png, txt, dot or
// graph.svg. Errors are JSON objects carrying a machine-readable code.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/buildinfo"
	mmberrors "github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/errors"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/pipeline"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/render"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/world"
)

// MaxBodyBytes caps the size of a submitted world.
const MaxBodyBytes = 8 << 20

// Server handles API requests.
type Server struct {
	runner *pipeline.Runner
	opts   pipeline.Options
	logger *log.Logger
}

// NewServer creates a server. opts are the defaults for submitted layouts;
// requests may override max_steps and the repair switches.
func NewServer(runner *pipeline.Runner, opts pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	return &Server{runner: runner, opts: opts, logger: logger}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Route("/v1/layouts", func(r chi.Router) {
		r.Post("/", s.createLayout)
		r.Get("/", s.listLayouts)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getLayout)
			r.Delete("/", s.deleteLayout)
			r.Get("/snapshots/{file}", s.getSnapshot)
		})
	})
	return r
}

// =============================================================================
// Handlers
// =============================================================================

type reportJSON struct {
	Normal        int `json:"normal"`
	NonStraight   int `json:"non_straight"`
	Obstructed    int `json:"obstructed"`
	Long          int `json:"long"`
	Intersections int `json:"intersections"`
}

type layoutResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Steps           int        `json:"steps"`
	OutOfSteps      bool       `json:"out_of_steps"`
	CompactionStart int        `json:"compaction_start"`
	CacheHit        bool       `json:"cache_hit"`
	Report          reportJSON `json:"report"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Get()})
}

func (s *Server) createLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := world.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = world.FormatYAML
	}
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	wd, err := world.Decode(body, format)
	if err != nil {
		s.writeError(w, r, mmberrors.Wrap(mmberrors.ErrCodeInvalidWorld, err, "cannot decode world"))
		return
	}
	if err := mmberrors.ValidateAreaName(wd.Name); err != nil {
		s.writeError(w, r, err)
		return
	}

	run, err := s.runner.Layout(r.Context(), wd, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := s.runner.Save(r.Context(), run)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rep := run.Report()
	writeJSON(w, http.StatusCreated, layoutResponse{
		ID:              id,
		Name:            run.Document.Name,
		Steps:           run.Result.Len(),
		OutOfSteps:      run.Result.OutOfSteps(),
		CompactionStart: run.Result.CompactionStart(),
		CacheHit:        run.CacheHit,
		Report: reportJSON{
			Normal:        len(rep.Normal),
			NonStraight:   len(rep.NonStraight),
			Obstructed:    len(rep.Obstructed),
			Long:          len(rep.Long),
			Intersections: len(rep.Intersections),
		},
	})
}

func (s *Server) listLayouts(w http.ResponseWriter, r *http.Request) {
	list, err := s.runner.Store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"layouts": list})
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := mmberrors.ValidateLayoutID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	run, err := s.runner.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run.Document)
}

func (s *Server) deleteLayout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := mmberrors.ValidateLayoutID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.runner.Store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := mmberrors.ValidateLayoutID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	step, format, err := parseSnapshotFile(chi.URLParam(r, "file"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	run, err := s.runner.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.opts
	opts.DebugInfo = opts.DebugInfo || queryBool(r, "debug")
	data, err := s.runner.RenderRun(r.Context(), run, step, format, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// parseSnapshotFile splits "12.svg" into a step and a format. The step
// "last" is returned as -1.
func parseSnapshotFile(file string) (int, render.Format, error) {
	stepText, ext, ok := strings.Cut(file, ".")
	if !ok || ext == "" {
		return 0, "", mmberrors.New(mmberrors.ErrCodeInvalidFormat, "missing format in %q", file)
	}
	var format render.Format
	if ext == strings.TrimPrefix(render.FormatGraph.Ext(), ".") {
		format = render.FormatGraph
	} else {
		f, err := render.ParseFormat(ext)
		if err != nil {
			return 0, "", mmberrors.Wrap(mmberrors.ErrCodeInvalidFormat, err, "unsupported format %q", ext)
		}
		format = f
	}

	if stepText == "last" {
		return -1, format, nil
	}
	step, err := strconv.Atoi(stepText)
	if err != nil || step < 0 {
		return 0, "", mmberrors.New(mmberrors.ErrCodeInvalidStep, "invalid step %q", stepText)
	}
	return step, format, nil
}

// requestOptions applies query overrides to the server defaults.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.opts
	q := r.URL.Query()
	if v := q.Get("max_steps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, mmberrors.New(mmberrors.ErrCodeInvalidInput, "max_steps must be a positive integer, got %q", v)
		}
		opts.MaxSteps = n
	}
	for name, dst := range map[string]*bool{
		"fix_obstacles":     &opts.FixObstacles,
		"fix_non_straight":  &opts.FixNonStraight,
		"fix_intersections": &opts.FixIntersections,
		"sanitize":          &opts.Sanitize,
	} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, mmberrors.New(mmberrors.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
			}
			*dst = b
		}
	}
	return opts, nil
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code    mmberrors.Code `json:"code"`
	Message string         `json:"message"`
	Detail  string         `json:"detail,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		err = mmberrors.Wrap(mmberrors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", maxErr.Limit)
	}

	status := mmberrors.HTTPStatus(err)
	body := errorBody{Code: mmberrors.GetCode(err), Message: mmberrors.UserMessage(err)}
	if body.Code == "" {
		body.Code = mmberrors.ErrCodeInternal
	}
	var e *mmberrors.Error
	if errors.As(err, &e) && e.Cause != nil {
		body.Detail = e.Cause.Error()
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		body.Message = "internal error"
		body.Detail = ""
	}
	writeJSON(w, status, map[string]any{"error": body})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAddr formats host and port for log output.
func ListenAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return fmt.Sprintf("http://localhost%s", addr)
	}
	return "http://" + addr
}
