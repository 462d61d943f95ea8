package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/chunkrecall/trainer/internal/errors"
	"github.com/chunkrecall/trainer/internal/logger"
	"github.com/chunkrecall/trainer/internal/services"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// handleImport queues an uploaded CSV or XLSX file for the import workers.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxImportSize+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		log.Warn("import without a file: %v", err)
		handleError(w, r, errors.NewBadRequestError("choose a .csv or .xlsx file to import"))
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("could not read the uploaded file"))
		return
	}

	rec, err := s.TransferService.QueueImport(r.Context(), user.ID, header.Filename, data)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, r, http.StatusAccepted, rec)
		return
	}
	redirectWithNotice(w, r, "/chunks", fmt.Sprintf("Import of %s queued", rec.Filename))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "chunks.csv", csvContentType, s.TransferService.ExportCSV)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "chunks.xlsx", xlsxContentType, s.TransferService.ExportXLSX)
}

type exportFunc func(ctx context.Context, userID int64, w io.Writer) error

// export buffers the file so a failure can still be reported as an error
// page instead of a truncated download.
func (s *Server) export(w http.ResponseWriter, r *http.Request, filename, contentType string, fn exportFunc) {
	user := userFromContext(r.Context())

	var buf bytes.Buffer
	if err := fn(r.Context(), user.ID, &buf); err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
