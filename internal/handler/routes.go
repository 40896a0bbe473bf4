package handler

import (
	"net/http"

	"github.com/msomdec/limur-users/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. limiter bounds
// mutations per profile; issuance bounds new profiles per client address.
func RegisterRoutes(mux *http.ServeMux, stores *service.UserStores, profiles *service.ProfileService, limiter, issuance *service.TokenBucket, cookieSecure bool) {
	users := NewUserHandler(stores)

	withProfile := func(h http.HandlerFunc) http.Handler {
		return WithProfile(profiles, issuance, cookieSecure, h)
	}
	limited := func(h http.HandlerFunc) http.Handler {
		return WithProfile(profiles, issuance, cookieSecure, RateLimit(limiter, h))
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.Handle("GET /users", withProfile(users.HandleList))
	mux.Handle("GET /users/table", withProfile(users.HandleTable))
	mux.Handle("GET /users/{id}/modal", withProfile(users.HandleModal))
	mux.Handle("GET /users/modal/close", withProfile(users.HandleCloseModal))
	mux.Handle("DELETE /users/{id}", limited(users.HandleDelete))
	mux.Handle("POST /users/reload", limited(users.HandleReload))
	mux.Handle("GET /users/add", withProfile(users.HandleNew))
	mux.Handle("POST /users/add", limited(users.HandleCreate))

	mux.HandleFunc("GET /", HandleHome)
}
