package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/chunkrecall/trainer/internal/errors"
	"github.com/chunkrecall/trainer/internal/models"
)

const (
	defaultPerPage = 50
	maxAudioSize   = 25 << 20
)

// chunkFilter reads the manage page's search, due-only, sort and paging
// query parameters.
func chunkFilter(r *http.Request, userID int64) (models.ChunkFilter, int) {
	q := r.URL.Query()

	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}
	perPage := defaultPerPage
	switch q.Get("per_page") {
	case "25":
		perPage = 25
	case "100":
		perPage = 100
	case "500":
		perPage = 500
	}

	return models.ChunkFilter{
		UserID:   userID,
		Search:   strings.TrimSpace(q.Get("q")),
		DueOnly:  q.Get("due") == "1",
		OrderBy:  q.Get("sort"),
		OrderDir: q.Get("dir"),
		Limit:    perPage,
		Offset:   (page - 1) * perPage,
	}, page
}

func totalPages(total, perPage int) int {
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return pages
}

// chunkEdits collects the rows of the manage page's bulk edit form. Each
// row posts its id in "id" and its fields suffixed with "_<id>".
func chunkEdits(r *http.Request) ([]models.ChunkEdit, error) {
	ids, err := formIDs(r, "id")
	if err != nil {
		return nil, err
	}
	edits := make([]models.ChunkEdit, 0, len(ids))
	for _, id := range ids {
		suffix := "_" + strconv.FormatInt(id, 10)
		ef, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("ef"+suffix)), 64)
		if err != nil {
			return nil, errors.NewValidationError("chunk "+strconv.FormatInt(id, 10)+" ef", "must be a number")
		}
		interval, err := strconv.Atoi(strings.TrimSpace(r.FormValue("interval" + suffix)))
		if err != nil {
			return nil, errors.NewValidationError("chunk "+strconv.FormatInt(id, 10)+" interval", "must be a whole number")
		}
		edits = append(edits, models.ChunkEdit{
			ID:           id,
			JPPrompt:     r.FormValue("jp" + suffix),
			ENAnswer:     r.FormValue("en" + suffix),
			EaseFactor:   ef,
			IntervalDays: interval,
		})
	}
	return edits, nil
}

// parseQuality accepts a recall grade from a form or query value.
func parseQuality(v string) (int, error) {
	q, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, errors.NewBadRequestError("invalid quality")
	}
	return q, nil
}
