package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alexanderramin/mirrorer/internal/catalog"
	"github.com/alexanderramin/mirrorer/internal/domain"
	"github.com/alexanderramin/mirrorer/internal/interpret"
	"github.com/alexanderramin/mirrorer/internal/prompt"
	"github.com/alexanderramin/mirrorer/internal/service"
	"github.com/alexanderramin/mirrorer/internal/simulation"
)

const maxBodyBytes = 1 << 20

// userSummary is the list view of a catalog user.
type userSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Domain        string `json:"domain"`
	Avatar        string `json:"avatar,omitempty"`
	HistoryCount  int    `json:"historyCount"`
	ExposureCount int    `json:"exposureCount"`
	GroundTruth   string `json:"groundTruth,omitempty"`
}

type userDetail struct {
	*domain.User
	ExposureLabels []string `json:"exposureLabels"`
}

type interpretResponse struct {
	Result  domain.SimulationResult `json:"result"`
	Matched int                     `json:"matched"`
}

type simulateRequest struct {
	Prompt   string   `json:"prompt,omitempty"`
	Backends []string `json:"backends,omitempty"`
}

type simulateDone struct {
	simulation.RunSummary
	Prompt string `json:"prompt"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) domains(w http.ResponseWriter, r *http.Request) {
	ds, err := s.users.Domains(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ds == nil {
		ds = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"domains": ds})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers(r.Context(), r.URL.Query().Get("domain"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]userSummary, 0, len(users))
	for _, u := range users {
		out = append(out, userSummary{
			ID:            u.ID(),
			Name:          u.Profile.Name,
			Domain:        string(u.Profile.Domain),
			Avatar:        u.Profile.Avatar,
			HistoryCount:  len(u.History),
			ExposureCount: len(u.Exposure),
			GroundTruth:   u.GroundTruth,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userDetail{User: u, ExposureLabels: u.ExposureLabels()})
}

func (s *Server) getPrompt(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, prompt.Build(u))
}

func (s *Server) interpret(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	raw := string(body)
	writeJSON(w, http.StatusOK, interpretResponse{
		Result:  interpret.Interpret(raw),
		Matched: interpret.Matched(raw),
	})
}

// simulate streams a run as server-sent events: one "slot" event per
// backend as it settles, then "done" with the run summary. The stream
// starts with the first event so lookup errors still get a status code.
func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	var req simulateRequest
	if r.ContentLength != 0 {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	started := false
	start := func() {
		if started {
			return
		}
		started = true
		w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
	}
	send := func(event string, v any) {
		payload, err := json.Marshal(v)
		if err != nil {
			s.logger.Error("encoding stream event", "event", event, "error", err)
			return
		}
		start()
		if err := writeSSE(w, event, payload); err != nil {
			s.logger.Debug("client stream closed", "event", event, "error", err)
			return
		}
		flusher.Flush()
	}

	res, err := s.sims.Simulate(r.Context(), service.SimulateRequest{
		UserID:   chi.URLParam(r, "id"),
		Prompt:   req.Prompt,
		Backends: req.Backends,
	}, func(u simulation.SlotUpdate) {
		send("slot", u)
	})
	if err != nil {
		if started {
			send("error", map[string]string{"message": err.Error()})
			return
		}
		s.fail(w, r, err)
		return
	}
	send("done", simulateDone{RunSummary: res.Summary, Prompt: res.Prompt})
}

// fail maps an error to a status code and writes it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, simulation.ErrUnknownBackend):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
