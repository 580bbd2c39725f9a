package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/formtree"
	"github.com/aretw0/formtree/internal/logging"
	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/snapshot"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// DefaultSettleTimeout bounds how long a request with settle=true waits for
// pending async validation.
const DefaultSettleTimeout = 5 * time.Second

// Server exposes one form tree over HTTP.
type Server struct {
	Root          form.Control
	Logger        *slog.Logger
	SettleTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithSettleTimeout overrides DefaultSettleTimeout.
func WithSettleTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.SettleTimeout = d
	}
}

// NewHandler creates the HTTP handler for the tree rooted at root.
//
// Every endpoint below /form addresses a control through the "path" query
// parameter, a dotted path relative to root; an empty path is root itself.
func NewHandler(root form.Control, opts ...Option) http.Handler {
	s := &Server{
		Root:          root,
		Logger:        logging.NewNop(),
		SettleTimeout: DefaultSettleTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Route("/form", func(r chi.Router) {
		r.Get("/", s.GetForm)
		r.Put("/value", s.SetValue)
		r.Patch("/value", s.PatchValue)
		r.Post("/reset", s.Reset)
		r.Post("/{action}", s.Mark)
		r.Get("/events", s.SubscribeEvents)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "formtree-http",
		"version": strings.TrimSpace(formtree.Version),
	})
}

// GetForm handles the GET /form request: a snapshot of the addressed control.
func (s *Server) GetForm(w http.ResponseWriter, r *http.Request) {
	c, err := s.lookup(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respond(w, r, c)
}

// SetValue handles the PUT /form/value request. The body is the new value.
func (s *Server) SetValue(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, form.Control.SetValue)
}

// PatchValue handles the PATCH /form/value request. The body is the patch.
func (s *Server) PatchValue(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, form.Control.PatchValue)
}

// Reset handles the POST /form/reset request. An empty body resets to nil.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, form.Control.Reset)
}

type mutator func(c form.Control, value any, opts ...form.UpdateOption) error

func (s *Server) update(w http.ResponseWriter, r *http.Request, apply mutator) {
	c, err := s.lookup(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	value, err := decodeBody(r.Body)
	if err != nil {
		s.Logger.Warn("invalid request body", "path", c.Path(), "err", err)
		s.writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	if err := apply(c, value, updateOptions(r)...); err != nil {
		s.Logger.Warn("update rejected", "path", c.Path(), "err", err)
		s.writeError(w, err)
		return
	}
	s.Logger.Debug("control updated", "method", r.Method, "path", c.Path())
	s.respond(w, r, c)
}

// Mark handles POST /form/{action}, where action is one of touch, untouch,
// touch-all, dirty, pristine, enable, disable, focus, blur or validate.
func (s *Server) Mark(w http.ResponseWriter, r *http.Request) {
	c, err := s.lookup(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	action := chi.URLParam(r, "action")
	if err := mark(c, action, updateOptions(r)); err != nil {
		s.writeError(w, err)
		return
	}
	s.Logger.Debug("control marked", "action", action, "path", c.Path())
	s.respond(w, r, c)
}

func mark(c form.Control, action string, opts []form.UpdateOption) error {
	switch action {
	case "touch":
		c.MarkAsTouched(opts...)
	case "untouch":
		c.MarkAsUntouched(opts...)
	case "touch-all":
		all, ok := c.(interface{ MarkAllAsTouched(...form.UpdateOption) })
		if !ok {
			return fmt.Errorf("%w: touch-all on %T", errBadRequest, c)
		}
		all.MarkAllAsTouched(opts...)
	case "dirty":
		c.MarkAsDirty(opts...)
	case "pristine":
		c.MarkAsPristine(opts...)
	case "enable":
		c.MarkAsEnabled(opts...)
	case "disable":
		c.MarkAsDisabled(opts...)
	case "validate":
		c.UpdateValueAndValidity(opts...)
	case "focus", "blur":
		f, ok := c.(*form.Field)
		if !ok {
			return fmt.Errorf("%w: %s needs a field, got %q", errBadRequest, action, c.Path())
		}
		if action == "focus" {
			f.Focus()
		} else {
			f.Blur(opts...)
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownAction, action)
	}
	return nil
}

var (
	errBadRequest    = errors.New("bad request")
	errUnknownAction = errors.New("unknown action")
)

// lookup resolves the "path" query parameter against the root.
func (s *Server) lookup(r *http.Request) (form.Control, error) {
	path := r.URL.Query().Get("path")
	if path == "" {
		return s.Root, nil
	}
	coll, ok := s.Root.(form.Collection)
	if !ok {
		return nil, &form.PathError{Path: path, Segment: path, Err: form.ErrControlNotFound}
	}
	return coll.Get(path)
}

func updateOptions(r *http.Request) []form.UpdateOption {
	var opts []form.UpdateOption
	if flag(r, "only_self") {
		opts = append(opts, form.OnlySelf())
	}
	if flag(r, "silent") {
		opts = append(opts, form.Silent())
	}
	return opts
}

func flag(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

func decodeBody(body io.Reader) (any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// respond writes the snapshot of c, first waiting for pending validation when
// the request asks for settle=true.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, c form.Control) {
	if flag(r, "settle") {
		ctx, cancel := context.WithTimeout(r.Context(), s.SettleTimeout)
		defer cancel()
		if _, err := form.Settle(ctx, c); err != nil {
			s.Logger.Warn("settle failed", "path", c.Path(), "err", err)
			s.writeError(w, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, snapshot.Take(c))
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusCode(err), map[string]string{"error": err.Error()})
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, form.ErrControlNotFound), errors.Is(err, form.ErrInvalidIndex):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest), errors.Is(err, errUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, form.ErrValueType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, form.ErrDisposed):
		return http.StatusGone
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
