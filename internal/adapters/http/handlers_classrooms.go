package httpadapter

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func classroomStudent(r *http.Request) (int64, int64, error) {
	classroomID, err := pathID(r, "classroomID")
	if err != nil {
		return 0, 0, err
	}
	studentID, err := pathID(r, "studentID")
	if err != nil {
		return 0, 0, err
	}
	return classroomID, studentID, nil
}

func (rt *Router) listSubmissions(w http.ResponseWriter, r *http.Request) {
	classroomID, studentID, err := classroomStudent(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	subs, err := rt.deps.Gradebook.Submissions(r.Context(), classroomID, studentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

func (rt *Router) progress(w http.ResponseWriter, r *http.Request) {
	classroomID, studentID, err := classroomStudent(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	analysis, err := rt.deps.Gradebook.Progress(r.Context(), classroomID, studentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (rt *Router) exportGradebook(w http.ResponseWriter, r *http.Request) {
	classroomID, studentID, err := classroomStudent(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := rt.deps.Gradebook.Export(r.Context(), classroomID, studentID, &buf); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="gradebook-%d-%d.xlsx"`, classroomID, studentID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (rt *Router) provisionAssignment(w http.ResponseWriter, r *http.Request) {
	classroomID, err := pathID(r, "classroomID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	draft, err := decodeRubricDraft(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := rt.deps.Provision.Provision(r.Context(), classroomID, draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (rt *Router) listRubrics(w http.ResponseWriter, r *http.Request) {
	classroomID, err := pathID(r, "classroomID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rubrics, err := rt.deps.Attachments.ListRubrics(r.Context(), classroomID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rubrics == nil {
		rubrics = []domain.Rubric{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rubrics": rubrics})
}
