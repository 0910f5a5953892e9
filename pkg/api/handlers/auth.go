package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"burrow/pkg/account"
	"burrow/pkg/auth"
	"burrow/pkg/models"
	"burrow/pkg/utils"
)

// RegisterAuth registers the unauthenticated credential routes.
func RegisterAuth(r *mux.Router, svc *account.Service) {
	h := &authHandlers{svc: svc}
	r.HandleFunc("/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/refresh", h.refresh).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.logout).Methods(http.MethodPost)
}

type authHandlers struct {
	svc *account.Service
}

type credentialsBody struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

type sessionBody struct {
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	User   models.User `json:"user"`
	Tokens auth.Tokens `json:"tokens"`
}

func (h *authHandlers) register(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := decode(r, &body); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	u, toks, err := h.svc.Register(r.Context(), body.Username, body.Password, body.DisplayName)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusCreated, authResponse{User: u, Tokens: toks})
}

func (h *authHandlers) login(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := decode(r, &body); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	u, toks, err := h.svc.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, authResponse{User: u, Tokens: toks})
}

func (h *authHandlers) refresh(w http.ResponseWriter, r *http.Request) {
	var body sessionBody
	if err := decode(r, &body); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	toks, err := h.svc.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, toks)
}

func (h *authHandlers) logout(w http.ResponseWriter, r *http.Request) {
	var body sessionBody
	if err := decode(r, &body); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	if err := h.svc.Logout(r.Context(), body.RefreshToken); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
