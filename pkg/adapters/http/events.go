package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/formtree/pkg/form"
	"github.com/goccy/go-json"
)

// eventBuffer is the per-stream channel size. Events beyond it are dropped
// for slow clients.
const eventBuffer = 32

// Event is the payload of one SSE message.
type Event struct {
	Path    string      `json:"path"`
	Status  form.Status `json:"status,omitempty"`
	Value   any         `json:"value,omitempty"`
	Touched *bool       `json:"touched,omitempty"`
}

// SubscribeEvents handles the GET /form/events request (SSE).
//
// The stream carries "status", "value" and "touch" events of the addressed
// control. The optional "watch" parameter is a comma separated subset of
// those names. The stream ends with a "disposed" event when the control is
// disposed.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("streaming not supported")
		return
	}

	c, err := s.lookup(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	watch := map[string]bool{"status": true, "value": true, "touch": true}
	if list := r.URL.Query().Get("watch"); list != "" {
		clear(watch)
		for _, name := range strings.Split(list, ",") {
			watch[strings.TrimSpace(name)] = true
		}
	}

	// Unwatched channels stay nil and never fire.
	var (
		statuses <-chan form.Status
		values   <-chan any
		touches  <-chan bool
	)
	if watch["status"] {
		ch, cancel := c.StatusChanges().Chan(eventBuffer)
		defer cancel()
		statuses = ch
	}
	if watch["value"] {
		ch, cancel := c.ValueChanges().Chan(eventBuffer)
		defer cancel()
		values = ch
	}
	if watch["touch"] {
		ch, cancel := c.TouchChanges().Chan(eventBuffer)
		defer cancel()
		touches = ch
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	path := c.Path()
	s.Logger.Info("sse client subscribed", "path", path)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	send := func(name string, ev Event) {
		data, err := json.Marshal(ev)
		if err != nil {
			s.Logger.Error("sse encode failed", "path", path, "err", err)
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
		flusher.Flush()
	}
	disposed := func() {
		fmt.Fprintf(w, "event: disposed\ndata: %s\n\n", path)
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("sse client disconnected", "path", path)
			return
		case st, ok := <-statuses:
			if !ok {
				disposed()
				return
			}
			send("status", Event{Path: path, Status: st})
		case v, ok := <-values:
			if !ok {
				disposed()
				return
			}
			send("value", Event{Path: path, Value: v})
		case t, ok := <-touches:
			if !ok {
				disposed()
				return
			}
			send("touch", Event{Path: path, Touched: &t})
		}
	}
}
