package api

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/chunkrecall/trainer/internal/errors"
	"github.com/chunkrecall/trainer/internal/logger"
)

const dueListLimit = 20

func (s *Server) handlePractice(w http.ResponseWriter, r *http.Request) {
	s.renderPractice(w, r, nil)
}

// renderPractice shows today's queue, the next chunk to practice and the
// wider due list. extra carries exercise or review results for the current
// chunk.
func (s *Server) renderPractice(w http.ResponseWriter, r *http.Request, extra pageData) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	queue, err := s.ReviewService.TodayQueue(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	due, err := s.ReviewService.DueChunks(r.Context(), user.ID, dueListLimit)
	if err != nil {
		handleError(w, r, err)
		return
	}

	data := pageData{
		"queue":    queue,
		"progress": queue.Queue.Progress(),
		"done":     queue.Queue.DoneCount(),
		"total":    queue.Queue.Total(),
		"due":      due,
	}
	if current, ok := queue.Next(); ok {
		data["current"] = current
	}
	for k, v := range extra {
		data[k] = v
	}
	log.Debug("rendering practice page: %d/%d done, %d due", queue.Queue.DoneCount(), queue.Queue.Total(), len(due))
	s.render(w, r, "pages/practice.html", data)
}

func (s *Server) handleGenerateExercise(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id, err := chunkIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	user := userFromContext(r.Context())
	session := sessionFromContext(r.Context())

	ex, err := s.ExerciseService.Generate(r.Context(), user.ID, id, session.OpenAIAPIKey)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("generated exercise %d for chunk %d", ex.ID, id)

	if wantsJSON(r) {
		writeJSON(w, r, http.StatusOK, ex)
		return
	}
	s.renderPractice(w, r, pageData{"exercise": ex, "exercise_chunk_id": id})
}

// handleCheckAnswer reviews a typed answer. A recorded "audio" upload is
// transcribed first and used when the typed answer is blank.
func (s *Server) handleCheckAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id, err := chunkIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	user := userFromContext(r.Context())
	session := sessionFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioSize)
	if err := r.ParseMultipartForm(maxAudioSize); err != nil && !stderrors.Is(err, http.ErrNotMultipart) {
		handleError(w, r, errors.NewBadRequestError("invalid upload"))
		return
	}

	answer := r.FormValue("answer")
	if file, header, err := r.FormFile("audio"); err == nil {
		defer func() { _ = file.Close() }()
		text, err := s.ExerciseService.Transcribe(r.Context(), session.OpenAIAPIKey, header.Filename, file)
		if err != nil {
			handleError(w, r, err)
			return
		}
		log.Debug("transcribed %d bytes of audio", header.Size)
		if strings.TrimSpace(answer) == "" {
			answer = text
		}
	}

	res, err := s.ExerciseService.Check(r.Context(), user.ID, id, answer, session.OpenAIAPIKey)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, r, http.StatusOK, res)
		return
	}
	s.renderPractice(w, r, pageData{
		"exercise":          res.Exercise,
		"exercise_chunk_id": id,
		"review":            res.Review,
		"suggested_quality": res.SuggestedQuality,
	})
}
