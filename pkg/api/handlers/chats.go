package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"burrow/pkg/chat"
	"burrow/pkg/utils"
)

// RegisterChats registers chat, membership, message and invite routes.
func RegisterChats(r *mux.Router) {
	r.HandleFunc("/chats", createChat).Methods(http.MethodPost)
	r.HandleFunc("/chats", listChats).Methods(http.MethodGet)
	r.HandleFunc("/chats/{id}", getChat).Methods(http.MethodGet)
	r.HandleFunc("/chats/{id}", deleteChat).Methods(http.MethodDelete)
	r.HandleFunc("/chats/{id}/join", joinChat).Methods(http.MethodPost)
	r.HandleFunc("/chats/{id}/leave", leaveChat).Methods(http.MethodPost)
	r.HandleFunc("/chats/{id}/messages", sendMessage).Methods(http.MethodPost)
	r.HandleFunc("/chats/{id}/messages", listMessages).Methods(http.MethodGet)
	r.HandleFunc("/chats/{id}/messages/{msgID}/viewed", markViewed).Methods(http.MethodPost)
	r.HandleFunc("/chats/{id}/invites", createInvite).Methods(http.MethodPost)
	r.HandleFunc("/invites", listInvites).Methods(http.MethodGet)
	r.HandleFunc("/invites/{id}", resolveInvite).Methods(http.MethodPost)
}

func createChat(w http.ResponseWriter, r *http.Request) {
	creator, ok := caller(w, r)
	if !ok {
		return
	}
	var body struct {
		Public bool `json:"public"`
	}
	if err := decode(r, &body); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	c, err := chat.CreateChat(creator, body.Public)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusCreated, c)
}

func listChats(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	chats, err := chat.ListChats(user)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, map[string]any{"chats": chats})
}

func getChat(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	c, err := chat.GetChat(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	if !c.Public && !c.HasMember(user) {
		utils.JSONError(w, http.StatusUnauthorized, "not a chat member")
		return
	}
	utils.JSONWrite(w, http.StatusOK, c)
}

func deleteChat(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	if err := chat.DeleteChat(mux.Vars(r)["id"], user); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func joinChat(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	changed, err := chat.Join(mux.Vars(r)["id"], user)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, map[string]bool{"changed": changed})
}

func leaveChat(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	changed, err := chat.Leave(mux.Vars(r)["id"], user)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, map[string]bool{"changed": changed})
}

func sendMessage(w http.ResponseWriter, r *http.Request) {
	sender, ok := caller(w, r)
	if !ok {
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := decode(r, &body); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	m, err := chat.SendMessage(mux.Vars(r)["id"], sender, body.Text)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusCreated, m)
}

func listMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	msgs, err := chat.ListMessages(mux.Vars(r)["id"], user, limitParam(r))
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, map[string]any{"messages": msgs})
}

func markViewed(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	if err := chat.MarkViewed(vars["id"], vars["msgID"], user); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func createInvite(w http.ResponseWriter, r *http.Request) {
	sender, ok := caller(w, r)
	if !ok {
		return
	}
	var body struct {
		Recipient string `json:"recipient"`
	}
	if err := decode(r, &body); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	inv, err := chat.CreateInvite(mux.Vars(r)["id"], sender, body.Recipient)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusCreated, inv)
}

func listInvites(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	invs, err := chat.ListInvites(user)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, map[string]any{"invites": invs})
}

func resolveInvite(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var body struct {
		Accept bool `json:"accept"`
	}
	if err := decode(r, &body); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	inv, err := chat.ResolveInvite(mux.Vars(r)["id"], user, body.Accept)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, inv)
}
