package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"burrow/pkg/player"
	"burrow/pkg/utils"
)

// RegisterStats registers game-economy routes. Grants and spends apply
// to the authenticated caller only.
func RegisterStats(r *mux.Router) {
	r.HandleFunc("/stats/{id}", getStats).Methods(http.MethodGet)
	r.HandleFunc("/stats/grant", grantStats).Methods(http.MethodPost)
	r.HandleFunc("/stats/spend", spendStats).Methods(http.MethodPost)
}

func getStats(w http.ResponseWriter, r *http.Request) {
	s, err := player.GetStats(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, s)
}

func grantStats(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var body struct {
		Coins int64 `json:"coins"`
		XP    int64 `json:"xp"`
	}
	if err := decode(r, &body); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	s, err := player.Grant(user, body.Coins, body.XP)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, s)
}

func spendStats(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var body struct {
		Coins int64 `json:"coins"`
	}
	if err := decode(r, &body); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	s, err := player.Spend(user, body.Coins)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, s)
}
