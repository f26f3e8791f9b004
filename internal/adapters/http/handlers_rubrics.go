package httpadapter

import "net/http"

func (rt *Router) uploadRubricDocuments(w http.ResponseWriter, r *http.Request) {
	rubricID, err := pathID(r, "rubricID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	documents, err := readFiles(w, r, "document")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := rt.deps.Attachments.UploadDocuments(r.Context(), rubricID, documents); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rubric_id": rubricID, "uploaded": len(documents)})
}

func (rt *Router) uploadRubricImages(w http.ResponseWriter, r *http.Request) {
	rubricID, err := pathID(r, "rubricID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	images, err := readFiles(w, r, "images")
	if err != nil {
		writeError(w, r, err)
		return
	}
	meta, err := rt.deps.Attachments.UploadImages(r.Context(), rubricID, images)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": meta})
}

func (rt *Router) deleteRubricImage(w http.ResponseWriter, r *http.Request) {
	rubricID, err := pathID(r, "rubricID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	imageID, err := pathID(r, "imageID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	meta, err := rt.deps.Attachments.DeleteImage(r.Context(), rubricID, imageID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": meta})
}
