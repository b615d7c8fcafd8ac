package http

import (
	"bytes"
	"html/template"
	"net/http"

	"ledgerview/internal/log"
	"ledgerview/internal/report"
)

type reportPage struct {
	Title string
	Query template.URL
	Body  template.HTML
}

// handleReport renders the markdown report. format=md returns the source.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	tables, res, ok := s.run(w, r)
	if !ok {
		return
	}

	doc := report.Build(tables, res, s.year, s.currency)
	md, err := report.RenderMarkdown(doc)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Report rendering failed",
			log.NewFields().WithOperation(log.OpRender).WithError(err).ToSlice()...)
		InternalServerError("report failed").Write(w)
		return
	}

	if r.URL.Query().Get("format") == "md" {
		NewResponse().Body("text/markdown; charset=utf-8", []byte(md)).Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(md), &buf); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Markdown conversion failed",
			log.NewFields().WithOperation(log.OpRender).WithError(err).ToSlice()...)
		InternalServerError("report failed").Write(w)
		return
	}

	s.render(w, r, "report.html", reportPage{
		Title: doc.Title,
		Query: template.URL(FilterQuery(res.View.Filter)),
		// goldmark escapes raw HTML unless WithUnsafe is set
		Body: template.HTML(buf.String()),
	})
}
