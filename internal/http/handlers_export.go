package http

import (
	"log/slog"
	"net/http"
	"strconv"
)

// handleExport streams the full movement collection as a JSON download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	filename, data, err := s.svc.Export(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Export error", "error", err)
		ErrorNotice(http.StatusInternalServerError, CodeExport, "Could not export the movements").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
