package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"burrow/pkg/social"
	"burrow/pkg/utils"
)

// RegisterPosts registers post, like, feature and comment routes.
func RegisterPosts(r *mux.Router) {
	r.HandleFunc("/posts", createPost).Methods(http.MethodPost)
	r.HandleFunc("/posts", listPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts/featured", getFeatured).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id}", getPost).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id}", deletePost).Methods(http.MethodDelete)
	r.HandleFunc("/posts/{id}/like", toggleLike).Methods(http.MethodPost)
	r.HandleFunc("/posts/{id}/feature", setFeatured).Methods(http.MethodPut)
	r.HandleFunc("/posts/{id}/comments", addComment).Methods(http.MethodPost)
	r.HandleFunc("/posts/{id}/comments", listComments).Methods(http.MethodGet)
}

func createPost(w http.ResponseWriter, r *http.Request) {
	owner, ok := caller(w, r)
	if !ok {
		return
	}
	var body struct {
		Text     string `json:"text"`
		ImageURL string `json:"image_url"`
	}
	if err := decode(r, &body); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	p, err := social.CreatePost(owner, body.Text, body.ImageURL)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusCreated, p)
}

func listPosts(w http.ResponseWriter, r *http.Request) {
	var (
		posts any
		err   error
	)
	if owner := r.URL.Query().Get("owner"); owner != "" {
		posts, err = social.ListPostsByOwner(owner, limitParam(r))
	} else {
		posts, err = social.ListPosts(limitParam(r))
	}
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, map[string]any{"posts": posts})
}

func getPost(w http.ResponseWriter, r *http.Request) {
	p, err := social.GetPost(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, p)
}

func deletePost(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	if err := social.DeletePost(mux.Vars(r)["id"], user); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toggleLike(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	state, err := social.ToggleLike(mux.Vars(r)["id"], user)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, state)
}

func setFeatured(w http.ResponseWriter, r *http.Request) {
	if _, ok := caller(w, r); !ok {
		return
	}
	var body struct {
		Featured bool `json:"featured"`
	}
	if err := decode(r, &body); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	if err := social.SetFeatured(mux.Vars(r)["id"], body.Featured); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func getFeatured(w http.ResponseWriter, r *http.Request) {
	id, err := social.GetFeatured()
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	p, err := social.GetPost(id)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, p)
}

func addComment(w http.ResponseWriter, r *http.Request) {
	owner, ok := caller(w, r)
	if !ok {
		return
	}
	var body struct {
		Text   string `json:"text"`
		Parent string `json:"parent"`
	}
	if err := decode(r, &body); err != nil {
		utils.JSONAppError(w, err)
		return
	}
	node, err := social.AddComment(mux.Vars(r)["id"], owner, body.Text, body.Parent)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusCreated, node)
}

func listComments(w http.ResponseWriter, r *http.Request) {
	trees, err := social.ListComments(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusOK, map[string]any{"comments": trees})
}
