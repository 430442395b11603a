package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/regimen/internal/identity"
	"github.com/hyperengineering/regimen/internal/protocol"
	"github.com/hyperengineering/regimen/internal/store"
	"github.com/hyperengineering/regimen/internal/types"
)

// Handler implements the API handlers.
type Handler struct {
	store    store.Store
	identity identity.Provider
	version  string
}

// NewHandler creates a new Handler with the given store and identity provider.
func NewHandler(s store.Store, p identity.Provider, version string) *Handler {
	return &Handler{
		store:    s,
		identity: p,
		version:  version,
	}
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		mapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		UserCount: stats.UserCount,
	})
}

// GetProgress handles GET /api/progress. The aggregate is recomposed
// from the four record sets; a user with no rows gets day-1 defaults.
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := h.identity.Resolve(r, r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if userID == "" {
		writeError(w, http.StatusBadRequest, "Missing userId")
		return
	}

	progress, err := h.store.GetProgress(r.Context(), userID)
	if err != nil {
		mapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.ProgressResponse{Progress: *progress})
}

// SaveProgress handles POST /api/progress. The whole aggregate is
// decomposed and upserted; the first failing upsert aborts the request.
func (h *Handler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	var req types.SaveProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	requested := req.UserID
	if requested == "" {
		requested = r.URL.Query().Get("userId")
	}
	userID, err := h.identity.Resolve(r, requested)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if userID == "" {
		writeError(w, http.StatusBadRequest, "Missing userId")
		return
	}
	if req.Progress == nil {
		writeError(w, http.StatusBadRequest, "Missing progress object")
		return
	}

	if err := h.store.SaveProgress(r.Context(), userID, *req.Progress); err != nil {
		slog.Error("save progress failed", "error", err, "user_id", userID)
		mapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.SaveProgressResponse{OK: true})
}

// SetupUser handles POST /api/setup-user.
func (h *Handler) SetupUser(w http.ResponseWriter, r *http.Request) {
	var req types.SetupUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	userID, err := h.identity.Resolve(r, req.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if userID == "" {
		writeError(w, http.StatusBadRequest, "Missing userId")
		return
	}
	req.UserID = userID

	user, err := h.store.UpsertUser(r.Context(), req)
	if err != nil {
		slog.Error("setup user failed", "error", err, "user_id", userID)
		mapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.SetupUserResponse{User: *user})
}

// Supplements handles GET /api/supplements. The table is static content.
func (h *Handler) Supplements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.SupplementsResponse{Supplements: protocol.Supplements()})
}
