package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"rentflow/realtime"
)

// handleStream serves the server-sent-events feed. Each connection gets its
// own hub subscription, torn down when the client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeStatusError(w, r, http.StatusInternalServerError, errors.New("httpapi: streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sub := s.Hub.Subscribe()
	defer sub.Close()

	fmt.Fprintf(w, "event: connected\ndata: {\"ts\":%q}\n\n", time.Now().UTC().Format(time.RFC3339))
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-sub.C:
			if !open {
				return
			}
			if msg.Heartbeat {
				// SSE comment line, keeps proxies from idling out the socket.
				fmt.Fprint(w, ": ping\n\n")
				flusher.Flush()
				continue
			}
			if err := writeSSEEvent(w, msg.Event); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, event realtime.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: mutation\ndata: %s\n\n", data)
	return err
}
