package credential

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/siteops/workforce-compliance/internal/core/events"
)

// EventHandler turns expiring-soon annotations from eligibility checks into
// alert log lines. Downstream notification systems attach here.
type EventHandler struct {
	logger *slog.Logger
}

func NewEventHandler(logger *slog.Logger) *EventHandler {
	return &EventHandler{logger: logger}
}

func (h *EventHandler) HandleCheckCompleted(ctx context.Context, event events.Event) error {
	checkEvent, ok := event.(*events.CheckCompletedEvent)
	if !ok {
		h.logger.Error("invalid event type for check completed handler", "event_type", event.EventType())
		return fmt.Errorf("expected CheckCompletedEvent, got %T", event)
	}

	for _, expiring := range checkEvent.ExpiringSoon {
		h.logger.Warn("credential expiring soon",
			"person_id", expiring.PersonID,
			"code", expiring.Code,
			"days_left", expiring.DaysLeft,
			"work_type", checkEvent.WorkTypeCode,
			"scope", checkEvent.Scope,
			"scope_ref", checkEvent.ScopeRef,
			"event_id", checkEvent.EventID())
	}

	if !checkEvent.StrictTeam && checkEvent.Eligible {
		h.logger.Warn("non-compliant team passed under WARN enforcement",
			"work_type", checkEvent.WorkTypeCode,
			"scope", checkEvent.Scope,
			"scope_ref", checkEvent.ScopeRef,
			"event_id", checkEvent.EventID())
	}

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeCheckCompleted, h.HandleCheckCompleted)

	h.logger.Info("credential event handlers registered",
		"handlers", []string{events.EventTypeCheckCompleted})
}
