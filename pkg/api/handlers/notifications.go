package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"burrow/pkg/notify"
	"burrow/pkg/utils"
)

// RegisterNotifications registers notification routes. Users only ever
// see their own notifications.
func RegisterNotifications(r *mux.Router) {
	r.HandleFunc("/notifications", listNotifications).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id}/read", markNotificationRead).Methods(http.MethodPost)
}

func listNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	ns, err := notify.List(user, limitParam(r))
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, map[string]any{"notifications": ns})
}

func markNotificationRead(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	if err := notify.MarkRead(user, mux.Vars(r)["id"]); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
