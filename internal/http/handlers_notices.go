package httpx

import (
	"net/http"

	"github.com/hillstay/hillstay/internal/observability/notify"
)

const (
	defaultNoticeLimit = 20
	maxNoticeLimit     = 100
)

// NoticeLister returns the most recent notices, oldest first.
type NoticeLister interface {
	List(limit int) []notify.Notice
}

// NoticeHandlers serves the notice feed.
type NoticeHandlers struct {
	Feed NoticeLister
}

// List returns recent notices.
// GET /api/notices?limit=N.
func (h *NoticeHandlers) List(w http.ResponseWriter, r *http.Request) {
	notices := h.Feed.List(parseLimit(r, defaultNoticeLimit, maxNoticeLimit))
	if notices == nil {
		notices = []notify.Notice{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"notices": notices})
}
