// Package handler exposes the studio session over plain JSON endpoints.
// Handlers delegate to the session core and reply with the refreshed
// session state, so the client never tracks state transitions itself.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"

	"redesignstudio/internal/designstore"
	"redesignstudio/internal/session"
	"redesignstudio/internal/types"
)

const maxUploadBytes = 32 << 20

type StudioHandler struct {
	session *session.Session

	mu       sync.Mutex
	watchers map[chan session.State]struct{}
}

func NewStudioHandler(s *session.Session) *StudioHandler {
	return &StudioHandler{
		session:  s,
		watchers: make(map[chan session.State]struct{}),
	}
}

func (h *StudioHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.session.State())
}

func (h *StudioHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	mimeType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if err := h.session.Upload(r.Context(), header.Filename, mimeType, file); err != nil {
		// Analysis failures are carried in the session state; only log here.
		log.Printf("upload %q: %v", header.Filename, err)
	}
	h.respondState(w)
}

func (h *StudioHandler) HandleModify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.Prompt) == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}
	err := h.session.Modify(r.Context(), in.Prompt)
	switch {
	case errors.Is(err, session.ErrNoAnalysis):
		http.Error(w, "upload and analyze a file first", http.StatusBadRequest)
		return
	case errors.Is(err, session.ErrBusy):
		http.Error(w, "a generation is already in progress", http.StatusConflict)
		return
	case err != nil:
		log.Printf("modify: %v", err)
	}
	h.respondState(w)
}

func (h *StudioHandler) HandleSelectHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if _, ok := h.session.SelectHistory(strings.TrimSpace(in.ID)); !ok {
		http.Error(w, "history entry not found", http.StatusNotFound)
		return
	}
	h.respondState(w)
}

func (h *StudioHandler) HandleListDesigns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"designs": h.session.Designs(r.Context()),
	})
}

func (h *StudioHandler) HandleSaveDesign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	saved, err := h.session.SaveDesign(r.Context(), in.Name)
	switch {
	case errors.Is(err, session.ErrNoAnalysis):
		http.Error(w, "nothing to save yet", http.StatusBadRequest)
		return
	case errors.Is(err, designstore.ErrStorageFull):
		http.Error(w, designstore.ErrStorageFull.Error(), http.StatusInsufficientStorage)
		return
	case err != nil:
		log.Printf("save design: %v", err)
		http.Error(w, "failed to save design", http.StatusInternalServerError)
		return
	}
	h.broadcast()
	writeJSON(w, http.StatusOK, map[string]any{
		"saved":   saved,
		"designs": h.session.Designs(r.Context()),
	})
}

func (h *StudioHandler) HandleLoadDesign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	design, ok := findDesign(h.session.Designs(r.Context()), in.ID)
	if !ok {
		http.Error(w, "design not found", http.StatusNotFound)
		return
	}
	h.session.LoadDesign(design)
	h.respondState(w)
}

func (h *StudioHandler) HandleDeleteDesign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		var in struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err == nil {
			id = strings.TrimSpace(in.ID)
		}
	}
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	if err := h.session.DeleteDesign(r.Context(), id); err != nil {
		log.Printf("delete design %q: %v", id, err)
		http.Error(w, "failed to delete design", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"designs": h.session.Designs(r.Context()),
	})
}

func (h *StudioHandler) respondState(w http.ResponseWriter) {
	h.broadcast()
	writeJSON(w, http.StatusOK, h.session.State())
}

func findDesign(designs []types.SavedDesign, id string) (types.SavedDesign, bool) {
	id = strings.TrimSpace(id)
	for _, d := range designs {
		if d.ID == id {
			return d, true
		}
	}
	return types.SavedDesign{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
