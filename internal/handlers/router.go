package handlers

import (
	"net/http"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authHandler *AuthHandler,
	users UserGetter,
	authMiddleware func(http.Handler) http.Handler,
	mds ...func(next http.Handler) http.Handler,
) http.Handler {
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	apiusers := http.NewServeMux()
	apiusers.Handle("/", authHandler.Handler())
	apiusers.Handle("GET /me", withAuth(handleUserMe(users)))

	root := http.NewServeMux()
	root.Handle("/users/", http.StripPrefix("/users", apiusers))

	return chain(root, mds...)
}
