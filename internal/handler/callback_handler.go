package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/assohub/assohub-backend/internal/model"
	"github.com/assohub/assohub-backend/internal/service"
)

// CallbackHandler receives provider delivery events. It acknowledges with
// 200 no matter what: a non-2xx here triggers the provider's retry storm,
// and the ingestor is already a no-op for anything it cannot match.
type CallbackHandler struct {
	Ingestor *service.CallbackIngestor
	Log      *zap.Logger
}

type callbackPayload struct {
	Type string `json:"type"`
	Data struct {
		MessageID string `json:"message_id"`
		Reason    string `json:"reason"`
	} `json:"data"`
}

func (h *CallbackHandler) Receive(w http.ResponseWriter, r *http.Request) {
	defer writeJSON(w, http.StatusOK, map[string]string{"status": "received"})

	var payload callbackPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.Log.Warn("malformed callback payload", zap.Error(err))
		return
	}

	eventType := model.CallbackType(payload.Type)
	if !model.ValidCallbackType(eventType) {
		h.Log.Warn("unknown callback type", zap.String("type", payload.Type))
		return
	}
	if payload.Data.MessageID == "" {
		h.Log.Warn("callback without message id", zap.String("type", payload.Type))
		return
	}

	ev := model.CallbackEvent{
		Type:      eventType,
		MessageID: payload.Data.MessageID,
		Reason:    payload.Data.Reason,
	}
	if err := h.Ingestor.HandleCallback(r.Context(), ev); err != nil {
		h.Log.Error("callback processing failed",
			zap.String("message_id", ev.MessageID),
			zap.Error(err),
		)
	}
}
