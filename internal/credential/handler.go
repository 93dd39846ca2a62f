package credential

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/siteops/workforce-compliance/internal/transport"
	"github.com/siteops/workforce-compliance/pkg/logger"
)

type ServiceAPI interface {
	CreateDefinition(dto *CreateDefinitionDTO) (*Definition, error)
	GetDefinition(kind, code string) (*Definition, error)
	ListDefinitions(kind string) ([]*Definition, error)
	DeactivateDefinition(kind, code string) error

	SubmitRecord(dto *SubmitRecordDTO) (*Record, error)
	ListRecords(personID int64) ([]*Record, error)
	VerifyRecord(ctx context.Context, id int64) (*Record, error)
	RejectRecord(ctx context.Context, id int64) (*Record, error)
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

func (h *Handler) CreateDefinition(w http.ResponseWriter, r *http.Request) {
	var dto CreateDefinitionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateDefinition: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	def, err := h.Service.CreateDefinition(&dto)
	if err != nil {
		h.Logger.Error("CreateDefinition: service error", "error", err, "code", dto.Code)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateDefinition: definition created", "kind", def.Kind, "code", def.Code)
	h.WriteJSON(w, http.StatusCreated, def)
}

func (h *Handler) GetDefinition(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	code := chi.URLParam(r, "code")

	def, err := h.Service.GetDefinition(kind, code)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, def)
}

func (h *Handler) ListDefinitions(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")

	defs, err := h.Service.ListDefinitions(kind)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, defs)
}

func (h *Handler) DeactivateDefinition(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	code := chi.URLParam(r, "code")

	if err := h.Service.DeactivateDefinition(kind, code); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *Handler) SubmitRecord(w http.ResponseWriter, r *http.Request) {
	var dto SubmitRecordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SubmitRecord: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.Service.SubmitRecord(&dto)
	if err != nil {
		h.Logger.Error("SubmitRecord: service error", "error", err,
			"person_id", dto.PersonID, "code", dto.Code)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("SubmitRecord: credential submitted",
		"record_id", rec.ID, "person_id", rec.PersonID, "code", rec.Code)
	h.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	personID, err := strconv.ParseInt(chi.URLParam(r, "personID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid person id")
		return
	}

	records, err := h.Service.ListRecords(personID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) VerifyRecord(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.Service.VerifyRecord)
}

func (h *Handler) RejectRecord(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.Service.RejectRecord)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request, op func(context.Context, int64) (*Record, error)) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	rec, err := op(r.Context(), id)
	if err != nil {
		h.Logger.Error("updateStatus: service error", "error", err, "record_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rec)
}
