package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"ledgerview/internal/export"
	"ledgerview/internal/log"
)

// handleExport streams the filtered view as CSV. An empty view is a 404.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	_, res, ok := s.run(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, res.View); err != nil {
		if errors.Is(err, export.ErrNoData) {
			NotFoundError("no data").Write(w)
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "CSV export failed",
			log.NewFields().WithOperation(log.OpExport).WithError(err).ToSlice()...)
		InternalServerError("export failed").Write(w)
		return
	}

	NewResponse().
		Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(res.View.Filter))).
		Body("text/csv; charset=utf-8", buf.Bytes()).
		Write(w)
}
