package http

import (
	"net/http"
)

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := s.store.ListLoans(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromLoans(loans))
}

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var payload loanPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	loan, err := payload.toCore(0)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.ledger.CreateLoan(r.Context(), loan)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	loan, err := s.store.GetLoan(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if loan == nil {
		writeError(w, http.StatusNotFound, "loan not found")
		return
	}
	writeJSON(w, http.StatusOK, fromLoan(*loan))
}

func (s *Server) handleUpdateLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var payload loanPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	loan, err := payload.toCore(id)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.ledger.UpdateLoan(r.Context(), loan); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.ledger.DeleteLoan(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLoanDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	details, err := s.views.LoanDetails(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if details == nil {
		writeError(w, http.StatusNotFound, "loan not found")
		return
	}
	writeJSON(w, http.StatusOK, fromLoanDetails(*details))
}

func (s *Server) handleListLoanPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	payments, err := s.store.ListPaymentsByLoan(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromPayments(payments))
}
