package handler

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/mireven/shopfront/internal/notify"
)

// CouponEvents streams coupon-change events as server-sent events. Clients
// holding optimistic coupon state subscribe here and treat every received
// event as authoritative, replacing or dropping their local copy.
func (h *Handler) CouponEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, cancel := h.hub.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	lg := zctx.From(r.Context())
	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			payload := notify.EncodeEvent(ev)
			if _, err := w.Write(append(append([]byte("data: "), payload...), '\n', '\n')); err != nil {
				lg.Debug("event stream closed", zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}
