package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"prestiti/internal/core"
	"prestiti/internal/watch"
)

func (s *Server) handleClientSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	key := strconv.FormatInt(id, 10)
	if cached, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, fromClientSummary(cached))
		return
	}

	summary, err := s.views.ClientSummary(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if summary == nil {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}

	s.summaryCache.Set(key, *summary)
	writeJSON(w, http.StatusOK, fromClientSummary(*summary))
}

func (s *Server) handleAreaSummaries(w http.ResponseWriter, r *http.Request) {
	areas, err := s.views.AreaSummaries(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromAreaSummaries(areas))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.dashboardCache.Get(dashboardCacheKey); ok {
		writeJSON(w, http.StatusOK, fromDashboard(cached))
		return
	}

	state, err := s.views.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.dashboardCache.Set(dashboardCacheKey, state)
	writeJSON(w, http.StatusOK, fromDashboard(state))
}

const dashboardCacheKey = "dashboard"

func (s *Server) handleDashboardStream(w http.ResponseWriter, r *http.Request) {
	stream := s.views.WatchDashboard(r.Context())
	serveSSE(w, r, stream, fromDashboard)
}

func (s *Server) handleLoanDetailsStream(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	stream := s.views.WatchLoanDetails(r.Context(), id)
	serveSSE(w, r, stream, func(d *core.LoanDetails) *loanDetailsPayload {
		if d == nil {
			return nil
		}
		p := fromLoanDetails(*d)
		return &p
	})
}

func (s *Server) handleClientSummaryStream(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	stream := s.views.WatchClientSummary(r.Context(), id)
	serveSSE(w, r, stream, func(cs *core.ClientSummary) *clientSummaryPayload {
		if cs == nil {
			return nil
		}
		p := fromClientSummary(*cs)
		return &p
	})
}

func (s *Server) handleClientsStream(w http.ResponseWriter, r *http.Request) {
	stream := s.views.WatchClients(r.Context())
	serveSSE(w, r, stream, fromClients)
}

func (s *Server) handleClientLoansStream(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	stream := s.views.WatchClientLoans(r.Context(), id)
	serveSSE(w, r, stream, fromLoans)
}

func (s *Server) handleLoanPaymentsStream(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	stream := s.views.WatchLoanPayments(r.Context(), id)
	serveSSE(w, r, stream, fromPayments)
}

// serveSSE drains a watch stream into a Server-Sent Events response.
// Each emission becomes one "data:" frame; a deleted entity encodes as
// JSON null so clients can drop their local copy. The stream ends when
// the client disconnects.
func serveSSE[T, P any](w http.ResponseWriter, r *http.Request, stream *watch.Stream[T], encode func(T) P) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case v, open := <-stream.Updates():
			if !open {
				return
			}
			data, err := json.Marshal(encode(v))
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
