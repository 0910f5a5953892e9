// Package api assembles the HTTP surface: public auth endpoints,
// authenticated /v1 resources and the operational endpoints.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"burrow/pkg/account"
	"burrow/pkg/api/handlers"
	"burrow/pkg/auth"
	"burrow/pkg/blob"
	"burrow/pkg/store"
	"burrow/pkg/telemetry"
)

// Deps carries the services handlers need.
type Deps struct {
	Accounts *account.Service
	Signer   *auth.Signer
	Sessions *auth.SessionStore
	Limiter  *auth.LimiterPool
	Blobs    blob.Store
	// MaxUpload bounds upload request bodies in bytes.
	MaxUpload int64
}

// Router builds the full route tree.
func Router(d Deps) http.Handler {
	r := mux.NewRouter()
	// mux.Use middleware runs after route matching, so the telemetry
	// route namer can read the matched template
	r.Use(telemetry.Middleware(routeName))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !store.Ready() || d.Sessions.Ping(r.Context()) != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// public: registration, login, token refresh
	pub := r.PathPrefix("/v1/auth").Subrouter()
	pub.Use(auth.RateLimit(d.Limiter))
	handlers.RegisterAuth(pub, d.Accounts)

	// everything else requires a bearer token
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(auth.Middleware(d.Signer))
	v1.Use(auth.RateLimit(d.Limiter))
	handlers.RegisterUsers(v1)
	handlers.RegisterPosts(v1)
	handlers.RegisterFollows(v1)
	handlers.RegisterChats(v1)
	handlers.RegisterNotifications(v1)
	handlers.RegisterStats(v1)
	handlers.RegisterUploads(v1, d.Blobs, d.MaxUpload)

	return r
}

// routeName labels metrics with the mux route template, not the raw
// path, to keep cardinality bounded.
func routeName(r *http.Request) string {
	if cur := mux.CurrentRoute(r); cur != nil {
		if tpl, err := cur.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
