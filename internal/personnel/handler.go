package personnel

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/siteops/workforce-compliance/internal/transport"
	"github.com/siteops/workforce-compliance/pkg/logger"
)

type ServiceAPI interface {
	GetPerson(id int64) (*Person, error)
	ListPeople(activeOnly bool) ([]*Person, error)
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

func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid person id")
		return
	}

	person, err := h.Service.GetPerson(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, person)
}

func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("include_inactive") != "true"

	people, err := h.Service.ListPeople(activeOnly)
	if err != nil {
		h.Logger.Error("ListPeople: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, people)
}
