package worktype

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/siteops/workforce-compliance/internal/auth"
	"github.com/siteops/workforce-compliance/internal/transport"
	"github.com/siteops/workforce-compliance/pkg/logger"
)

type ServiceAPI interface {
	CreateWorkType(dto *CreateWorkTypeDTO) (*WorkType, error)
	GetWorkType(code string) (*WorkType, error)
	ListWorkTypes() ([]*WorkType, error)
	DeactivateWorkType(code string) error

	CreateOverride(dto *CreateOverrideDTO) (*Override, error)
	ApproveOverride(ctx context.Context, id int64, approver string) (*Override, error)
	DeactivateOverride(id int64) error
	ListOverrides(workTypeCode, scope, scopeRef string) ([]*Override, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreateWorkType(w http.ResponseWriter, r *http.Request) {
	var dto CreateWorkTypeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateWorkType: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wt, err := h.Service.CreateWorkType(&dto)
	if err != nil {
		h.Logger.Error("CreateWorkType: service error", "error", err, "code", dto.Code)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateWorkType: work type created", "code", wt.Code)
	h.WriteJSON(w, http.StatusCreated, wt)
}

func (h *Handler) GetWorkType(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	wt, err := h.Service.GetWorkType(code)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, wt)
}

func (h *Handler) ListWorkTypes(w http.ResponseWriter, r *http.Request) {
	workTypes, err := h.Service.ListWorkTypes()
	if err != nil {
		h.Logger.Error("ListWorkTypes: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, workTypes)
}

func (h *Handler) DeactivateWorkType(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if err := h.Service.DeactivateWorkType(code); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *Handler) CreateOverride(w http.ResponseWriter, r *http.Request) {
	var dto CreateOverrideDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateOverride: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.Service.CreateOverride(&dto)
	if err != nil {
		h.Logger.Error("CreateOverride: service error", "error", err, "work_type", dto.WorkTypeCode)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateOverride: override created", "override_id", o.ID, "work_type", o.WorkTypeCode)
	h.WriteJSON(w, http.StatusCreated, o)
}

func (h *Handler) ApproveOverride(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("ApproveOverride: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid override id")
		return
	}

	o, err := h.Service.ApproveOverride(r.Context(), id, user.Email)
	if err != nil {
		h.Logger.Error("ApproveOverride: service error", "error", err, "override_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ApproveOverride: override approved", "override_id", id, "approved_by", user.Email)
	h.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) DeactivateOverride(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid override id")
		return
	}

	if err := h.Service.DeactivateOverride(id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *Handler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	workTypeCode := chi.URLParam(r, "code")
	scope := r.URL.Query().Get("scope")
	scopeRef := r.URL.Query().Get("scope_ref")

	overrides, err := h.Service.ListOverrides(workTypeCode, scope, scopeRef)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, overrides)
}
