package http

import (
	"net/http"
	"strconv"

	"gasledger/internal/cache"
	"gasledger/internal/export"
	"gasledger/internal/log"
)

func (s *Server) handleExportWorkbook(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, "xlsx", export.WorkbookContentType, export.WorkbookFilename, s.exporter.WriteWorkbook)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, "pdf", export.DocumentContentType, export.DocumentFilename, s.exporter.WritePDF)
}

// serveReport renders into memory first so a failure can still become a 500.
// An unchanged ledger is served from the report cache.
func (s *Server) serveReport(w http.ResponseWriter, r *http.Request, format, contentType, filename string, render cache.RenderFunc) {
	data, hit, err := s.reports.Render(r.Context(), format, s.store.State(), render)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Report export failed",
			log.FieldOperation, log.OpExport, log.FieldError, err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	if hit {
		w.Header().Set("X-Report-Cache", "hit")
	}
	_, _ = w.Write(data)
}
