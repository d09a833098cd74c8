package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/mudkip/internal/apperr"
	"github.com/starford/mudkip/internal/document"
	"github.com/starford/mudkip/internal/instance"
)

// Handler holds the API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// PickFile handles POST /api/pick/file. A cancelled dialog answers 204.
func (h *Handler) PickFile(w http.ResponseWriter, r *http.Request) {
	path, err := h.svc.Picker.PickFile(r.Context())
	if err != nil {
		slog.Error("pick file failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, errorBody("no file picker available"))
		return
	}
	if path == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

// PickFolder handles POST /api/pick/folder. A cancelled dialog answers 204.
func (h *Handler) PickFolder(w http.ResponseWriter, r *http.Request) {
	path, err := h.svc.Picker.PickFolder(r.Context())
	if err != nil {
		slog.Error("pick folder failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, errorBody("no folder picker available"))
		return
	}
	if path == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

// GetDocument handles GET /api/document?path=.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}
	payload, err := document.BuildFile(path)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound), errors.Is(err, fs.ErrNotExist):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrNotMarkdown):
			writeJSON(w, http.StatusBadRequest, errorBody("not a markdown file"))
		default:
			slog.Error("build document failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// GetFolder handles GET /api/folder?path=.
func (h *Handler) GetFolder(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}
	payload, err := document.BuildFolder(path)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound), errors.Is(err, fs.ErrNotExist):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrNotFolder):
			writeJSON(w, http.StatusBadRequest, errorBody("not a folder"))
		default:
			slog.Error("build folder failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// OpenInEditor handles POST /api/editor/open.
func (h *Handler) OpenInEditor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
		Line int    `json:"line"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.Editor.Open(req.Path, req.Line); err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotMarkdown):
			writeJSON(w, http.StatusBadRequest, errorBody("not a markdown file"))
		case errors.Is(err, apperr.ErrUnavailable):
			writeJSON(w, http.StatusServiceUnavailable, errorBody("no editor available"))
		default:
			slog.Error("open in editor failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SystemTheme handles GET /api/theme/system.
func (h *Handler) SystemTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"theme": h.svc.Theme.System(r.Context())})
}

// StartFileWatch handles POST /api/watch/file.
func (h *Handler) StartFileWatch(w http.ResponseWriter, r *http.Request) {
	h.startWatch(w, r, h.svc.FileWatch.Start, "not a markdown file")
}

// StopFileWatch handles DELETE /api/watch/file.
func (h *Handler) StopFileWatch(w http.ResponseWriter, r *http.Request) {
	h.svc.FileWatch.Stop()
	w.WriteHeader(http.StatusNoContent)
}

// StartFolderWatch handles POST /api/watch/folder.
func (h *Handler) StartFolderWatch(w http.ResponseWriter, r *http.Request) {
	h.startWatch(w, r, h.svc.FolderWatch.Start, "not a folder")
}

// StopFolderWatch handles DELETE /api/watch/folder.
func (h *Handler) StopFolderWatch(w http.ResponseWriter, r *http.Request) {
	h.svc.FolderWatch.Stop()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) startWatch(w http.ResponseWriter, r *http.Request, start func(string) error, kindMsg string) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := start(req.Path); err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotMarkdown), errors.Is(err, apperr.ErrNotFolder):
			writeJSON(w, http.StatusBadRequest, errorBody(kindMsg))
		default:
			slog.Error("start watch failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ConsumePending handles POST /api/pending/consume. An empty queue answers
// 204 so the shell can poll without error handling.
func (h *Handler) ConsumePending(w http.ResponseWriter, r *http.Request) {
	target := h.svc.Queue.Pop()
	if target == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

// StartupOptions handles GET /api/startup-options. The snapshot never
// changes after launch; later invocations broadcast theirs over the event
// stream instead.
func (h *Handler) StartupOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Startup)
}

// Recent handles GET /api/recent?limit=.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	if h.svc.History == nil {
		writeJSON(w, http.StatusOK, map[string]any{"entries": []any{}})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.svc.History.Recent(limit)
	if err != nil {
		slog.Error("recent failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// ClearRecent handles DELETE /api/recent.
func (h *Handler) ClearRecent(w http.ResponseWriter, r *http.Request) {
	if h.svc.History != nil {
		if err := h.svc.History.Clear(); err != nil {
			slog.Error("clear recent failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// InstanceOpen handles POST /api/instance/open, the landing point for
// argument vectors forwarded by later process invocations.
func (h *Handler) InstanceOpen(w http.ResponseWriter, r *http.Request) {
	var req instance.ForwardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.svc.Instance.HandleArgs(req.Args)
	w.WriteHeader(http.StatusNoContent)
}
