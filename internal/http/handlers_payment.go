package http

import (
	"net/http"
)

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var payload paymentPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	payment, err := payload.toCore(loanID)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.ledger.RecordPayment(r.Context(), payment)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

// handleCreatePayment is the flat variant: the loan id travels in the body.
func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var payload paymentPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	payment, err := payload.toCore(payload.LoanID)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.ledger.RecordPayment(r.Context(), payment)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.ledger.DeletePayment(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}
