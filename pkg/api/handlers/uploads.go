package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"burrow/pkg/blob"
	"burrow/pkg/utils"
)

// RegisterUploads registers the media upload route. When no blob store
// is configured uploads fail with 503 rather than vanishing silently.
func RegisterUploads(r *mux.Router, store blob.Store, maxUpload int64) {
	r.HandleFunc("/uploads", func(w http.ResponseWriter, req *http.Request) {
		uploadMedia(w, req, store, maxUpload)
	}).Methods(http.MethodPost)
}

func uploadMedia(w http.ResponseWriter, r *http.Request, store blob.Store, maxUpload int64) {
	if _, ok := caller(w, r); !ok {
		return
	}
	if store == nil {
		utils.JSONError(w, http.StatusServiceUnavailable, "uploads are not configured")
		return
	}
	if maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer f.Close()

	url, err := store.Put(r.Context(), hdr.Filename, hdr.Header.Get("Content-Type"), hdr.Size, f)
	if err != nil {
		utils.JSONAppError(w, err)
		return
	}
	utils.JSONWrite(w, http.StatusCreated, map[string]string{"url": url})
}
