package server

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/taskmanager-ai/backend/auth"
	"github.com/taskmanager-ai/backend/server/contextkey"
	myhandlers "github.com/taskmanager-ai/backend/server/handlers"
)

// authGuard is a middleware that enforces the authentication contract on
// every protected route: the request must carry a bearer token whose
// verified claims bind it to a user id. On success the user id is injected
// into the request context under contextkey.UserIDKey; otherwise the
// request is rejected with a 401 JSON body and never reaches the handler.
//
// The guard does not re-validate the user against storage; a user deleted
// mid-session surfaces as a not-found on the first lookup downstream.
func authGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			myhandlers.RespondError(w, http.StatusUnauthorized, "Please log in to access this page.")
			return
		}

		splitToken := strings.Split(authHeader, "Bearer ")
		if len(splitToken) != 2 {
			myhandlers.RespondError(w, http.StatusUnauthorized, "Invalid authorization header")
			return
		}

		userID, err := auth.ParseToken(splitToken[1])
		if err != nil {
			myhandlers.RespondError(w, http.StatusUnauthorized, "Token is expired or invalid")
			return
		}

		ctx := context.WithValue(r.Context(), contextkey.UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// recoveryMiddleware recovers from panics and provides a generic error message to the client.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Panic recovered: %s\n", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// NewRouter builds the full route table around the given handler set.
// Split out of Start so tests can drive the router directly.
func NewRouter(h *myhandlers.Handler) http.Handler {
	r := mux.NewRouter()

	// Public surface.
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/signup", h.SignUp).Methods("POST")
	r.HandleFunc("/login", h.SignIn).Methods("POST")
	r.HandleFunc("/logout", h.SignOut).Methods("GET", "POST")
	r.HandleFunc("/token/refresh", h.RefreshToken).Methods("POST")
	r.HandleFunc("/forgot-password", h.ForgotPassword).Methods("POST")
	r.HandleFunc("/reset-password", h.ResetPassword).Methods("POST")
	r.HandleFunc("/translations/{lang}", h.Translations).Methods("GET")

	// Everything below requires an authenticated user.
	protected := r.NewRoute().Subrouter()
	protected.Use(authGuard)

	// Tasks.
	protected.HandleFunc("/api/tasks", h.ListTasks).Methods("GET")
	protected.HandleFunc("/api/tasks", h.CreateTask).Methods("POST")
	protected.HandleFunc("/api/tasks/{id}", h.UpdateTask).Methods("PUT")
	protected.HandleFunc("/api/tasks/{id}", h.DeleteTask).Methods("DELETE")
	protected.HandleFunc("/tasks/toggle/{id}", h.ToggleTask).Methods("POST")
	protected.HandleFunc("/tasks/{category}", h.TasksByCategory).Methods("GET")

	// Dashboard and analytics.
	protected.HandleFunc("/api/dashboard", h.Dashboard).Methods("GET")
	protected.HandleFunc("/api/analytics", h.Analytics).Methods("GET")

	// Calendar events.
	protected.HandleFunc("/calendar/events", h.ListEvents).Methods("GET")
	protected.HandleFunc("/calendar/events", h.CreateEvent).Methods("POST")
	protected.HandleFunc("/calendar/events/{id}", h.UpdateEvent).Methods("PUT")
	protected.HandleFunc("/calendar/events/{id}", h.DeleteEvent).Methods("DELETE")

	// Daily routines.
	protected.HandleFunc("/routines", h.ListRoutines).Methods("GET")
	protected.HandleFunc("/routines/add", h.AddRoutine).Methods("POST")
	protected.HandleFunc("/routines/update/{id}", h.UpdateRoutine).Methods("PUT")
	protected.HandleFunc("/routines/delete/{id}", h.DeleteRoutine).Methods("DELETE")
	protected.HandleFunc("/routines/{date}", h.RoutinesByDate).Methods("GET")

	// Reminders.
	protected.HandleFunc("/reminders", h.ListReminders).Methods("GET")
	protected.HandleFunc("/reminders/add", h.AddReminder).Methods("POST")
	protected.HandleFunc("/reminders/delete/{id}", h.DeleteReminder).Methods("DELETE")

	// Habits.
	protected.HandleFunc("/api/habits", h.ListHabits).Methods("GET")
	protected.HandleFunc("/api/habits", h.CreateHabit).Methods("POST")
	protected.HandleFunc("/api/habits/toggle/{id}/{day}", h.ToggleHabitDay).Methods("POST")

	// Chat relay. Three paths, one behavior, kept for client compatibility.
	protected.HandleFunc("/api/chat", h.Chat).Methods("POST")
	protected.HandleFunc("/api/ai-suggestion", h.Chat).Methods("POST")
	protected.HandleFunc("/chatbot", h.Chatbot).Methods("POST")

	// Profile and settings.
	protected.HandleFunc("/profile", h.Profile).Methods("GET")
	protected.HandleFunc("/profile/update", h.UpdateProfile).Methods("POST")
	protected.HandleFunc("/profile/change-password", h.ChangePassword).Methods("POST")
	protected.HandleFunc("/profile/delete", h.DeleteAccount).Methods("POST")
	protected.HandleFunc("/profile/export", h.ExportProfile).Methods("GET")
	protected.HandleFunc("/update_settings", h.UpdateSettings).Methods("POST")

	// Data portability.
	protected.HandleFunc("/export_data", h.ExportTasks).Methods("GET")
	protected.HandleFunc("/import_data", h.ImportTasks).Methods("POST")

	return r
}

// Start initializes and starts the HTTP server.
// The function requires a serverURL (the URL where the server must be deployed)
// and the handler set serving the routes.
func Start(serverURL string, h *myhandlers.Handler) {
	router := NewRouter(h)

	// Apply the CORS middleware to the router
	corsOrigins := handlers.AllowedOrigins([]string{"*"})
	corsMethods := handlers.AllowedMethods([]string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS"})
	corsHeaders := handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization"})

	corsRouter := handlers.CORS(corsOrigins, corsMethods, corsHeaders)(recoveryMiddleware(router))

	// Apply the logging middleware
	loggingRouter := handlers.LoggingHandler(os.Stdout, corsRouter)

	u, err := url.Parse(serverURL)
	if err != nil {
		panic(err)
	}

	server := &http.Server{
		Handler:      loggingRouter,
		Addr:         u.Host,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	log.Fatal(server.ListenAndServe())
}
