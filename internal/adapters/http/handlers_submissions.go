package httpadapter

import (
	"errors"
	"net/http"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

func (rt *Router) uploadSubmissionImages(w http.ResponseWriter, r *http.Request) {
	submissionID, err := pathID(r, "submissionID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	images, err := readFiles(w, r, "images")
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := rt.deps.Ingest.IngestImages(r.Context(), submissionID, images)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type processRequestBody struct {
	ClassroomID int64 `json:"classroomId"`
	StudentID   int64 `json:"studentId"`
	Resume      bool  `json:"resume"`
	Async       bool  `json:"async"`
}

func (rt *Router) processSubmission(w http.ResponseWriter, r *http.Request) {
	submissionID, err := pathID(r, "submissionID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body processRequestBody
	if err := decodeJSONBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	req := domain.ProcessRequest{
		SubmissionID: submissionID,
		ClassroomID:  body.ClassroomID,
		StudentID:    body.StudentID,
		Resume:       body.Resume,
	}

	if body.Async {
		if rt.deps.Queue == nil {
			writeError(w, r, domain.WrapError(domain.ErrTemporary, "enqueue process request", errors.New("queue is not configured")))
			return
		}
		if req.ClassroomID <= 0 || req.StudentID <= 0 {
			writeError(w, r, domain.NewValidationError("classroomId/studentId", "must be positive"))
			return
		}
		if err := rt.deps.Queue.PublishProcessRequest(r.Context(), req); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"status": "queued", "submission_id": submissionID})
		return
	}

	result, err := rt.deps.Process.Process(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) latestRun(w http.ResponseWriter, r *http.Request) {
	submissionID, err := pathID(r, "submissionID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	run, err := rt.deps.Runs.LatestRun(r.Context(), submissionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
