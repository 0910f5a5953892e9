package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"burrow/pkg/account"
	"burrow/pkg/utils"
)

// RegisterUsers registers profile routes.
func RegisterUsers(r *mux.Router) {
	r.HandleFunc("/me", getMe).Methods(http.MethodGet)
	r.HandleFunc("/me", updateMe).Methods(http.MethodPatch)
	r.HandleFunc("/users/{id}", getUser).Methods(http.MethodGet)
}

func getMe(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	u, err := account.Get(id)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, u)
}

func updateMe(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	var body struct {
		DisplayName string `json:"display_name"`
		AvatarURL   string `json:"avatar_url"`
	}
	if err := decode(r, &body); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	u, err := account.UpdateProfile(id, body.DisplayName, body.AvatarURL)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, u)
}

func getUser(w http.ResponseWriter, r *http.Request) {
	u, err := account.Get(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, u)
}
