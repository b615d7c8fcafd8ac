package http

import (
	"net/http"
	"strings"
	"time"

	"ledgerview/internal/log"
)

type refreshResponse struct {
	LoadedAt time.Time `json:"loaded_at"`
	Entries  int       `json:"entries"`
	Accounts int       `json:"accounts"`
}

// handleRefresh reloads the snapshot from the source. A failing source is a 503
// and the previous snapshot is dropped, so no stale data is served after it.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	tables, err := s.snapshot.Refresh(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Snapshot refresh failed",
			log.NewFields().WithOperation(log.OpRefresh).WithError(err).ToSlice()...)
		if isHTMX(r) {
			Notice("error", "Refresh failed").Status(http.StatusServiceUnavailable).Write(w)
			return
		}
		UnavailableError("refresh failed").Write(w)
		return
	}

	ledgerRows, _, _, accounts := tables.Counts()
	logger.InfoContext(r.Context(), "Snapshot refreshed",
		log.NewFields().WithOperation(log.OpRefresh).WithEntries(ledgerRows).ToSlice()...)

	loadedAt := tables.LoadedAt.UTC().Format(time.RFC3339)
	if isHTMX(r) {
		Notice("success", "Data reloaded at "+loadedAt).TriggerRefreshed(loadedAt).Write(w)
		return
	}
	NewResponse().
		TriggerRefreshed(loadedAt).
		JSON(refreshResponse{LoadedAt: tables.LoadedAt, Entries: ledgerRows, Accounts: accounts}).
		Write(w)
}

func isHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}
