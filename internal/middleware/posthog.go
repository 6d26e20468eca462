package middleware

import (
	"net/http"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// EventCapturer receives product analytics events.
type EventCapturer interface {
	Capture(actor domain.Actor, event string, properties map[string]any)
}

// routeEvents names the analytics event for each tracked route. Routes not
// listed here (reads, polling) are not tracked.
var routeEvents = map[string]string{
	"POST /api/v1/drafts":                                       "draft_opened",
	"DELETE /api/v1/drafts/:session_id":                         "draft_discarded",
	"PUT /api/v1/drafts/:session_id/itemization":                "itemization_toggled",
	"POST /api/v1/drafts/:session_id/duplicate/dismiss":         "duplicate_dismissed",
	"POST /api/v1/drafts/:session_id/split/dismiss":             "split_dismissed",
	"POST /api/v1/drafts/:session_id/receipt":                   "receipt_applied",
	"POST /api/v1/drafts/:session_id/suggestions":               "suggestions_requested",
	"POST /api/v1/drafts/:session_id/account-suggestions":       "account_suggestions_requested",
	"POST /api/v1/drafts/:session_id/suggestions/:index/select": "suggestion_selected",
	"POST /api/v1/drafts/:session_id/category/confirm":          "new_category_answered",
	"POST /api/v1/drafts/:session_id/submit":                    "draft_submitted",
	"POST /api/v1/categories":                                   "category_created",
}

// PosthogMiddleware captures an event for every successful request to a
// tracked route. It must run after AuthMiddleware.
func PosthogMiddleware(capturer EventCapturer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if capturer == nil || len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		event, tracked := routeEvents[c.Request.Method+" "+c.FullPath()]
		if !tracked {
			return
		}
		actor, ok := GetActorFromContext(c)
		if !ok {
			return
		}

		props := map[string]any{"status_code": c.Writer.Status()}
		if sessionID := c.Param("session_id"); sessionID != "" {
			props["session_id"] = sessionID
		}
		capturer.Capture(actor, event, props)
	}
}
