package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"gasledger/internal/core"
	"gasledger/internal/ledger"
	"gasledger/internal/log"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, s.buildPage(s.store.State()))
}

func (s *Server) handleLedgerJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, newLedgerJSON(s.store.State()))
}

func (s *Server) handleSetDate(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	state := s.store.SetActiveDate(r.Context(), p.Get("date"))
	s.done(w, r, p, state)
}

func (s *Server) handleAddSale(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	in, err := s.numbers.saleInput(p)
	if err != nil {
		s.reject(w, r, p, err, func(data *pageData) {
			data.SaleForm = typedSale(p)
		})
		return
	}
	s.done(w, r, p, s.store.AddSale(r.Context(), in))
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	in, err := s.numbers.expenseInput(p)
	if err != nil {
		s.reject(w, r, p, err, func(data *pageData) {
			data.ExpenseForm = typedExpense(p)
		})
		return
	}
	s.done(w, r, p, s.store.AddExpense(r.Context(), in))
}

func (s *Server) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	s.withIndex(w, r, func(p *RequestBodyParser, i int) {
		state, err := s.store.DeleteSaleAt(r.Context(), i)
		s.doneOrNoop(w, r, p, state, err)
	})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.withIndex(w, r, func(p *RequestBodyParser, i int) {
		state, err := s.store.DeleteExpenseAt(r.Context(), i)
		s.doneOrNoop(w, r, p, state, err)
	})
}

func (s *Server) handleBeginEditSale(w http.ResponseWriter, r *http.Request) {
	s.withIndex(w, r, func(p *RequestBodyParser, i int) {
		_, err := s.store.BeginEditSale(r.Context(), i)
		s.doneOrNoop(w, r, p, s.store.State(), err)
	})
}

func (s *Server) handleBeginEditExpense(w http.ResponseWriter, r *http.Request) {
	s.withIndex(w, r, func(p *RequestBodyParser, i int) {
		_, err := s.store.BeginEditExpense(r.Context(), i)
		s.doneOrNoop(w, r, p, s.store.State(), err)
	})
}

func (s *Server) handleCommitSale(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	in, err := s.numbers.saleInput(p)
	if err != nil {
		s.reject(w, r, p, err, func(data *pageData) {
			typed := typedSale(p)
			if data.SaleEdit == nil {
				data.SaleForm = typed
				return
			}
			typed.Index = data.SaleEdit.Index
			data.SaleEdit = &typed
		})
		return
	}
	state, err := s.store.CommitEditSale(r.Context(), core.SaleEntry{Cylinders: in.Cylinders, Price: in.Price, Note: in.Note})
	s.doneOrNoop(w, r, p, state, err)
}

func (s *Server) handleCommitExpense(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	in, err := s.numbers.expenseInput(p)
	if err != nil {
		s.reject(w, r, p, err, func(data *pageData) {
			typed := typedExpense(p)
			if data.ExpenseEdit == nil {
				data.ExpenseForm = typed
				return
			}
			typed.Index = data.ExpenseEdit.Index
			data.ExpenseEdit = &typed
		})
		return
	}
	state, err := s.store.CommitEditExpense(r.Context(), core.ExpenseEntry{Name: in.Name, Amount: in.Amount})
	s.doneOrNoop(w, r, p, state, err)
}

func (s *Server) parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p, err := NewRequestBodyParser(r)
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Invalid request body", log.FieldError, err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return nil, false
	}
	return p, true
}

func (s *Server) withIndex(w http.ResponseWriter, r *http.Request, fn func(*RequestBodyParser, int)) {
	i, err := parseIndex(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	fn(p, i)
}

// done answers a successful write: JSON clients get the ledger, browsers
// are sent back to the page.
func (s *Server) done(w http.ResponseWriter, r *http.Request, p *RequestBodyParser, state core.LedgerState) {
	if p.IsJSON() {
		writeJSON(w, r, http.StatusOK, newLedgerJSON(state))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// doneOrNoop treats stale indexes and commits without an edit as no-ops.
// The store has already logged them.
func (s *Server) doneOrNoop(w http.ResponseWriter, r *http.Request, p *RequestBodyParser, state core.LedgerState, err error) {
	switch {
	case err == nil:
	case errors.Is(err, ledger.ErrIndexOutOfRange), errors.Is(err, ledger.ErrNotEditing):
		if p.IsJSON() {
			writeJSON(w, r, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Ledger operation failed", log.FieldError, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.done(w, r, p, state)
}

// reject answers a strict-mode parse failure with 422. Browsers get the page
// back with what was typed, placed by keep.
func (s *Server) reject(w http.ResponseWriter, r *http.Request, p *RequestBodyParser, err error, keep func(*pageData)) {
	if p.IsJSON() {
		writeJSON(w, r, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	data := s.buildPage(s.store.State())
	data.Error = err.Error()
	keep(&data)
	s.render(w, r, http.StatusUnprocessableEntity, data)
}

func typedSale(p *RequestBodyParser) saleDraft {
	return saleDraft{Cylinders: p.Get("cylinders"), Price: p.Get("price"), Note: p.Get("note")}
}

func typedExpense(p *RequestBodyParser) expenseDraft {
	return expenseDraft{Name: p.Get("name"), Amount: p.Get("amount")}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err, log.FieldOperation, log.OpRender)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response", log.FieldError, err)
	}
}
