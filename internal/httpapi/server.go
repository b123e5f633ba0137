package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"buildhook/internal/coordinator"
	"buildhook/internal/logsink"
	"buildhook/internal/uvars"
	"buildhook/pkg/types"
)

// Service is the build hook surface the host adapter drives.
type Service interface {
	BindPre(ctx context.Context) coordinator.Outcome
	BindPost(ctx context.Context, succeeded bool) coordinator.Outcome
	BindCancel(ctx context.Context) coordinator.Outcome
	BindBuildRaw(ctx context.Context, data string) coordinator.Outcome
	BindProjectPre(ctx context.Context, handle string) coordinator.Outcome
	BindProjectPost(ctx context.Context, handle string, success bool) coordinator.Outcome
	BindCommand(ctx context.Context, cmd coordinator.Command) (coordinator.Outcome, bool)
	Reset() bool
	Status() types.StatusResponse
}

// Evaluator expands script containers and properties.
type Evaluator interface {
	Eval(text string) (string, error)
}

// Variables exposes the user variable store.
type Variables interface {
	List() []uvars.Variable
	Unset(name, project string)
	UnsetAll()
}

// HostSwitch toggles whether this host instance may run actions.
type HostSwitch interface {
	SetAllowActions(v bool)
}

// LogEmitter forwards host log messages to the logging path.
type LogEmitter interface {
	Emit(m logsink.Message)
}

// Deps wires the HTTP layer. Only Service is required; routes whose
// dependency is nil answer 501.
type Deps struct {
	Service   Service
	Eval      Evaluator
	Variables Variables
	Host      HostSwitch
	Logs      LogEmitter
	// Events serves the websocket event stream.
	Events http.Handler
}

func NewMux(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	svc := d.Service
	r.Route("/v1", func(r chi.Router) {
		r.Post("/build/pre", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			writeResult(w, r, "pre", start, svc.BindPre(actionContext()))
		})
		r.Post("/build/post", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			var req types.PostRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			writeResult(w, r, "post", start, svc.BindPost(actionContext(), req.Succeeded))
		})
		r.Post("/build/cancel", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			writeResult(w, r, "cancel", start, svc.BindCancel(actionContext()))
		})
		r.Post("/build/raw", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			var req types.RawRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			writeResult(w, r, "raw", start, svc.BindBuildRaw(actionContext(), req.Data))
		})

		r.Post("/projects/{project}/before", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			project, ok := projectParam(w, r)
			if !ok {
				return
			}
			writeResult(w, r, "project_before", start, svc.BindProjectPre(actionContext(), project))
		})
		r.Post("/projects/{project}/after", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			project, ok := projectParam(w, r)
			if !ok {
				return
			}
			var req types.ProjectAfterRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			writeResult(w, r, "project_after", start, svc.BindProjectPost(actionContext(), project, req.Success))
		})

		r.Post("/commands/{direction}", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			var pre bool
			switch chi.URLParam(r, "direction") {
			case "pre":
				pre = true
			case "post":
			default:
				writeJSONError(w, http.StatusNotFound, "direction must be pre or post")
				return
			}
			var req types.CommandRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			out, cancel := svc.BindCommand(actionContext(), coordinator.Command{
				GUID:      req.GUID,
				ID:        req.ID,
				CustomIn:  req.CustomIn,
				CustomOut: req.CustomOut,
				Pre:       pre,
			})
			hookResultsTotal.WithLabelValues("command", out.String()).Inc()
			writeJSON(w, http.StatusOK, types.CommandResponse{Result: out.String(), Cancel: cancel})
			logHook(r, "command", http.StatusOK, start, nil)
		})

		r.Post("/log", func(w http.ResponseWriter, r *http.Request) {
			if d.Logs == nil {
				writeJSONError(w, http.StatusNotImplemented, "log path not configured")
				return
			}
			var req types.LogRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			lvl := zerolog.InfoLevel
			if req.Level != "" {
				var err error
				if lvl, err = zerolog.ParseLevel(strings.ToLower(req.Level)); err != nil {
					writeJSONError(w, http.StatusBadRequest, "unknown level: "+req.Level)
					return
				}
			}
			d.Logs.Emit(logsink.Message{Text: req.Message, Level: lvl, Origin: logsink.OriginHost, Time: time.Now()})
			w.WriteHeader(http.StatusAccepted)
		})

		r.Post("/reset", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			if !svc.Reset() {
				writeJSONError(w, http.StatusConflict, "actions are disallowed by the host")
				logHook(r, "reset", http.StatusConflict, start, nil)
				return
			}
			st := svc.Status()
			writeJSON(w, http.StatusOK, map[string]string{"session": st.Session})
			logHook(r, "reset", http.StatusOK, start, nil)
		})

		r.Post("/eval", func(w http.ResponseWriter, r *http.Request) {
			if d.Eval == nil {
				writeJSONError(w, http.StatusNotImplemented, "evaluator not configured")
				return
			}
			start := time.Now()
			var req types.EvalRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			out, err := d.Eval.Eval(req.Expression)
			if err != nil {
				code := evalStatus(err)
				writeJSONError(w, code, err.Error())
				logHook(r, "eval", code, start, err)
				return
			}
			writeJSON(w, http.StatusOK, types.EvalResponse{Result: out})
			logHook(r, "eval", http.StatusOK, start, nil)
		})

		r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, svc.Status())
		})

		r.Get("/variables", func(w http.ResponseWriter, r *http.Request) {
			if d.Variables == nil {
				writeJSONError(w, http.StatusNotImplemented, "variables not configured")
				return
			}
			list := d.Variables.List()
			resp := types.VariablesResponse{Variables: make([]types.Variable, 0, len(list))}
			for _, v := range list {
				resp.Variables = append(resp.Variables, types.Variable{
					Name:        v.Name,
					Project:     v.Project,
					Ident:       v.Ident(),
					Value:       v.Value,
					Unevaluated: v.Unevaluated,
				})
			}
			writeJSON(w, http.StatusOK, resp)
		})
		r.Delete("/variables", func(w http.ResponseWriter, r *http.Request) {
			if d.Variables == nil {
				writeJSONError(w, http.StatusNotImplemented, "variables not configured")
				return
			}
			d.Variables.UnsetAll()
			w.WriteHeader(http.StatusNoContent)
		})
		r.Delete("/variables/{name}", func(w http.ResponseWriter, r *http.Request) {
			if d.Variables == nil {
				writeJSONError(w, http.StatusNotImplemented, "variables not configured")
				return
			}
			d.Variables.Unset(chi.URLParam(r, "name"), r.URL.Query().Get("project"))
			w.WriteHeader(http.StatusNoContent)
		})

		r.Put("/host/actions", func(w http.ResponseWriter, r *http.Request) {
			if d.Host == nil {
				writeJSONError(w, http.StatusNotImplemented, "host switch not configured")
				return
			}
			var req types.HostActionsRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			d.Host.SetAllowActions(req.Allow)
			w.WriteHeader(http.StatusNoContent)
		})

		if d.Events != nil {
			r.Get("/events/ws", d.Events.ServeHTTP)
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// decodeJSON enforces the content type and body limit, then decodes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func projectParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	p, err := url.PathUnescape(chi.URLParam(r, "project"))
	if err != nil || strings.TrimSpace(p) == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid project")
		return "", false
	}
	return p, true
}

func writeResult(w http.ResponseWriter, r *http.Request, hook string, start time.Time, out coordinator.Outcome) {
	hookResultsTotal.WithLabelValues(hook, out.String()).Inc()
	writeJSON(w, http.StatusOK, types.ResultResponse{Result: out.String()})
	logHook(r, hook, http.StatusOK, start, nil)
}
