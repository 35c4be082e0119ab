package rest

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.instrument)

	r.Handle("/health", http.HandlerFunc(s.handleHealth)).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.Handle("/signup", s.rateLimit("/api/auth/signup", http.HandlerFunc(s.handleSignup))).Methods(http.MethodPost)
	auth.Handle("/login", s.rateLimit("/api/auth/login", http.HandlerFunc(s.handleLogin))).Methods(http.MethodPost)

	users := api.PathPrefix("/users").Subrouter()
	users.Use(s.requireIdentity)
	users.HandleFunc("/me", s.handleDeleteAccount).Methods(http.MethodDelete)

	items := api.PathPrefix("/items").Subrouter()
	items.Use(s.requireIdentity)
	items.HandleFunc("", s.handleListItems).Methods(http.MethodGet)
	items.HandleFunc("", s.handleCreateItem).Methods(http.MethodPost)
	// Registered ahead of /{id} so it is not taken for an item ID.
	items.HandleFunc("/recommendation", s.handleRecommendation).Methods(http.MethodGet)
	items.HandleFunc("/{id}", s.handleGetItem).Methods(http.MethodGet)
	items.HandleFunc("/{id}", s.handleUpdateItem).Methods(http.MethodPut)
	items.HandleFunc("/{id}", s.handleDeleteItem).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return s.requestID(s.accessLog(s.cors(r)))
}
