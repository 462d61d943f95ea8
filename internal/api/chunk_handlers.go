package api

import (
	"fmt"
	"net/http"

	"github.com/chunkrecall/trainer/internal/errors"
	"github.com/chunkrecall/trainer/internal/logger"
)

const recentImportsLimit = 5

// handleChunks renders the manage page: the chunk table, deck statistics
// and recent imports.
func (s *Server) handleChunks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	filter, page := chunkFilter(r, user.ID)
	chunks, total, err := s.ChunkService.ListChunks(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	stats, err := s.StatsService.ChunkStats(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	dist, err := s.StatsService.QualityDistribution(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	imports, err := s.TransferService.RecentImports(r.Context(), user.ID, recentImportsLimit)
	if err != nil {
		log.Warn("failed to load recent imports: %v", err)
	}

	log.Debug("found %d of %d chunks (page %d)", len(chunks), total, page)
	s.render(w, r, "pages/chunks.html", pageData{
		"chunks":       chunks,
		"total_count":  total,
		"page":         page,
		"per_page":     filter.Limit,
		"total_pages":  totalPages(total, filter.Limit),
		"search":       filter.Search,
		"due_only":     filter.DueOnly,
		"sort":         filter.OrderBy,
		"dir":          filter.OrderDir,
		"stats":        stats,
		"distribution": dist,
		"imports":      imports,
	})
}

func (s *Server) handleAddChunk(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	chunk, err := s.ChunkService.AddChunk(r.Context(), user.ID, r.FormValue("jp_prompt"), r.FormValue("en_answer"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, r, http.StatusCreated, chunk)
		return
	}
	redirectWithNotice(w, r, "/chunks", "Chunk added")
}

func (s *Server) handleEditChunks(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	edits, err := chunkEdits(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	n, err := s.ChunkService.EditChunks(r.Context(), user.ID, edits)
	if err != nil {
		handleError(w, r, err)
		return
	}
	redirectWithNotice(w, r, "/chunks", fmt.Sprintf("Saved %d chunks", n))
}

func (s *Server) handleDeleteChunks(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	ids, err := formIDs(r, "selected")
	if err != nil {
		handleError(w, r, err)
		return
	}
	n, err := s.ChunkService.DeleteChunks(r.Context(), user.ID, ids)
	if err != nil {
		handleError(w, r, err)
		return
	}
	redirectWithNotice(w, r, "/chunks", fmt.Sprintf("Deleted %d chunks", n))
}

func (s *Server) handleResetIntervals(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	ids, err := formIDs(r, "selected")
	if err != nil {
		handleError(w, r, err)
		return
	}
	n, err := s.ChunkService.ResetIntervals(r.Context(), user.ID, ids)
	if err != nil {
		handleError(w, r, err)
		return
	}
	redirectWithNotice(w, r, "/chunks", fmt.Sprintf("Reset %d chunks", n))
}

// handleResetAll deletes the whole deck. The form must tick "confirm".
func (s *Server) handleResetAll(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	if r.FormValue("confirm") != "yes" {
		handleError(w, r, errors.NewBadRequestError("confirm deleting all chunks first"))
		return
	}
	n, err := s.ChunkService.ResetAll(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Warn("user deleted all %d chunks", n)
	redirectWithNotice(w, r, "/chunks", fmt.Sprintf("Deleted all %d chunks", n))
}
