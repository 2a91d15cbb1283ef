package http

import (
	"fmt"
	"net/http"

	"presupuesto/internal/export"
	"presupuesto/internal/log"
	"presupuesto/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := s.deps.Expenses.History(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var form services.ManualForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	form.Description = sanitizeInput(form.Description)

	user, err := s.actingUser(r)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	out, err := s.deps.Entry.SubmitManual(r.Context(), form, user)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	writeOutcome(w, out)
}

type quickRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleQuickExpense(w http.ResponseWriter, r *http.Request) {
	var req quickRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpExtract, err)
		return
	}
	user, err := s.actingUser(r)
	if err != nil {
		writeError(w, r, log.OpExtract, err)
		return
	}
	out, err := s.deps.Entry.SubmitText(r.Context(), sanitizeInput(req.Text), user)
	if err != nil {
		writeError(w, r, log.OpExtract, err)
		return
	}
	writeOutcome(w, out)
}

// writeOutcome answers 201 for a stored expense and 202 when the store did
// not take it.
func writeOutcome(w http.ResponseWriter, out services.Outcome) {
	status := http.StatusCreated
	if !out.Saved {
		status = http.StatusAccepted
	}
	writeJSON(w, status, out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.deps.Expenses.History(r.Context())
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	now := s.deps.Dashboard.Now()
	view, _ := s.deps.Dashboard.View(now)

	data, err := export.HistoryXLSX(rows, view.View.Categories, s.deps.Location)
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="gastos-%s.xlsx"`, now.Format("2006-01")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
