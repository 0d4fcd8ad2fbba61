package http

import (
	"net/http"
)

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.store.ListClients(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromClients(clients))
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var payload clientPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	client, err := payload.toCore(0)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.ledger.CreateClient(r.Context(), client)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	client, err := s.store.GetClient(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if client == nil {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, fromClient(*client))
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var payload clientPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	client, err := payload.toCore(id)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.ledger.UpdateClient(r.Context(), client); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.ledger.DeleteClient(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListClientLoans(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	loans, err := s.store.ListLoansByClient(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromLoans(loans))
}
