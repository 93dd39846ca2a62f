package eligibility

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/siteops/workforce-compliance/internal/transport"
	"github.com/siteops/workforce-compliance/pkg/logger"
)

type ServiceAPI interface {
	Check(ctx context.Context, dto CheckRequestDTO) (*CheckResult, error)
	ResolveRule(ctx context.Context, workTypeCode, scope, scopeRef string) (*EffectiveRule, error)
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

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	var dto CheckRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Check: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Check(r.Context(), dto)
	if err != nil {
		h.Logger.Error("Check: service error", "error", err, "work_type", dto.WorkTypeCode)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("Check: eligibility check completed",
		"work_type", result.WorkTypeCode,
		"scope", dto.Scope,
		"scope_ref", dto.ScopeRef,
		"eligible", result.Eligible,
		"assignees", len(result.AssigneeResults))

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetEffectiveRule(w http.ResponseWriter, r *http.Request) {
	workTypeCode := chi.URLParam(r, "code")
	scope := r.URL.Query().Get("scope")
	scopeRef := r.URL.Query().Get("scope_ref")

	rule, err := h.Service.ResolveRule(r.Context(), workTypeCode, scope, scopeRef)
	if err != nil {
		h.Logger.Error("GetEffectiveRule: service error", "error", err, "work_type", workTypeCode)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rule)
}
