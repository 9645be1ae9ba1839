package handlers

import (
	"net/http"

	"personagen/internal/middleware"
)

// HistoryStats returns aggregate counts over the caller's generations.
func (a *API) HistoryStats(w http.ResponseWriter, r *http.Request) {
	st, err := a.history.Stats(r.Context(), middleware.OwnerFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Dashboard returns stats, the most recent generations and whether the
// caller has a persona.
func (a *API) Dashboard(w http.ResponseWriter, r *http.Request) {
	sum, err := a.history.Summary(r.Context(), middleware.OwnerFromCtx(r.Context()), dashboardRecent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
