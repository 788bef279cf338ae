package httpapi

import (
	"fmt"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"spokoj/internal/budget"
	"spokoj/internal/core"
)

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.svc.Transactions()
	if month := r.URL.Query().Get("month"); month != "" {
		if !core.ValidMonthID(month) {
			writeError(w, http.StatusBadRequest, core.ErrInvalidMonthID.Error())
			return
		}
		filtered := make([]core.Transaction, 0, len(txs))
		for _, t := range txs {
			if t.InMonth(month) {
				filtered = append(filtered, t)
			}
		}
		txs = filtered
	}
	toJSON(w, http.StatusOK, txs)
}

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	input := budget.TransactionInput{
		Amount:     req.Amount,
		CategoryID: req.CategoryID,
		Date:       req.Date,
		Note:       req.Note,
		CreatedBy:  req.CreatedBy,
	}
	if err := (core.Transaction{CategoryID: input.CategoryID, Date: input.Date, CreatedBy: input.CreatedBy}).Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	toJSON(w, http.StatusCreated, s.svc.AddTransaction(input))
}

// importTransactions inserts a batch as one group, auto-categorizing items
// that carry no explicit category via the learned merchant mappings.
func (s *Server) importTransactions(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "empty import")
		return
	}

	matched := 0
	inputs := make([]budget.TransactionInput, 0, len(req.Items))
	for i, item := range req.Items {
		categoryID := item.CategoryID
		if categoryID == "" {
			id, ok := s.svc.CategoryForMerchant(item.MerchantText)
			if !ok {
				writeError(w, http.StatusUnprocessableEntity,
					fmt.Sprintf("item %d: no category and no merchant match for %q", i, item.MerchantText))
				return
			}
			categoryID = id
			matched++
		}

		note := item.Note
		if note == "" {
			note = item.MerchantText
		}
		input := budget.TransactionInput{
			Amount:     item.Amount,
			CategoryID: categoryID,
			Date:       item.Date,
			Note:       note,
			CreatedBy:  item.CreatedBy,
		}
		if err := (core.Transaction{CategoryID: input.CategoryID, Date: input.Date, CreatedBy: input.CreatedBy}).Validate(); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("item %d: %s", i, err))
			return
		}
		inputs = append(inputs, input)
	}

	txs := s.svc.AddTransactions(inputs)
	toJSON(w, http.StatusCreated, importResponse{Transactions: txs, Matched: matched})
}

func (s *Server) patchTransaction(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Date != nil && !core.ValidDate(*req.Date) {
		writeError(w, http.StatusBadRequest, core.ErrInvalidDate.Error())
		return
	}
	if req.CreatedBy != nil && !req.CreatedBy.Valid() {
		writeError(w, http.StatusBadRequest, core.ErrInvalidMember.Error())
		return
	}

	s.svc.EditTransaction(chi.URLParam(r, "id"), budget.TransactionPatch{
		Amount:     req.Amount,
		CategoryID: req.CategoryID,
		Date:       req.Date,
		Note:       req.Note,
		CreatedBy:  req.CreatedBy,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	s.svc.DeleteTransaction(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
