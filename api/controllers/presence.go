package controllers

import (
	"net/http"

	"github.com/stringmaster/stringmaster-backend/api/middleware"
	"github.com/stringmaster/stringmaster-backend/api/responses"
	"github.com/stringmaster/stringmaster-backend/internal/presence"
	pkgerrors "github.com/stringmaster/stringmaster-backend/pkg/errors"
	"github.com/stringmaster/stringmaster-backend/pkg/logger"
)

// PresenceHeartbeat records the caller as online.
func PresenceHeartbeat(tracker *presence.Tracker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tracker == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "presence tracker unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if err := tracker.Heartbeat(userID, middleware.EmailFromContext(ctx), middleware.AccessIDFromContext(ctx)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "online"})
	}
}

// AdminPresenceList returns users currently considered online.
func AdminPresenceList(tracker *presence.Tracker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tracker == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "presence tracker unavailable"))
			return
		}

		online := tracker.ListOnline()
		responses.WriteSuccess(w, map[string]any{"online": online, "count": len(online)})
	}
}
