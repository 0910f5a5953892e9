package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"burrow/pkg/social"
	"burrow/pkg/utils"
)

// RegisterFollows registers follow-graph routes.
func RegisterFollows(r *mux.Router) {
	r.HandleFunc("/users/{id}/follow", toggleFollow).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}/following", listFollowing).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}/followers", listFollowers).Methods(http.MethodGet)
}

func toggleFollow(w http.ResponseWriter, r *http.Request) {
	follower, ok := caller(w, r)
	if !ok {
		return
	}
	following, err := social.ToggleFollow(follower, mux.Vars(r)["id"])
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, map[string]bool{"following": following})
}

func listFollowing(w http.ResponseWriter, r *http.Request) {
	ids, err := social.ListFollowing(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, map[string]any{"following": ids})
}

func listFollowers(w http.ResponseWriter, r *http.Request) {
	ids, err := social.ListFollowers(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, map[string]any{"followers": ids})
}
