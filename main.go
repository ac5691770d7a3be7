package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"momentumAPI/handlers"
	"momentumAPI/internal/database"
	"momentumAPI/internal/notification"
	"momentumAPI/middleware"
	"momentumAPI/services"
)

var (
	dbPool              *pgxpool.Pool
	userService         *services.UserService
	habitService        *services.HabitService
	taskService         *services.TaskService
	noteService         *services.NoteService
	notificationService *services.NotificationService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if err := database.Migrate(dbURL); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Println("Migrations applied")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	dbPool, err = database.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}
	log.Println("Successfully connected to database")

	notificationService = services.NewNotificationService(dbPool)
	userService = services.NewUserService(dbPool)
	habitService = services.NewHabitService(dbPool, notificationService)
	taskService = services.NewTaskService(dbPool)
	noteService = services.NewNoteService(dbPool)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	userHandler := handlers.NewUserHandler(userService)
	habitHandler := handlers.NewHabitHandler(habitService)
	taskHandler := handlers.NewTaskHandler(taskService)
	noteHandler := handlers.NewNoteHandler(noteService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "momentum-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/preferences", userHandler.UpdatePreferences).Methods("PUT")
	protected.HandleFunc("/user/delete-account", userHandler.DeleteAccount).Methods("DELETE")

	protected.HandleFunc("/habits", habitHandler.CreateHabit).Methods("POST")
	protected.HandleFunc("/habits", habitHandler.GetHabits).Methods("GET")
	protected.HandleFunc("/habits/today", habitHandler.GetTodayHabits).Methods("GET")
	protected.HandleFunc("/habits/streaks", habitHandler.GetStreaks).Methods("GET")
	protected.HandleFunc("/habits/stats", habitHandler.GetStats).Methods("GET")
	protected.HandleFunc("/habits/logs/range", habitHandler.GetLogsRange).Methods("GET")
	protected.HandleFunc("/habits/logs/{logID}", habitHandler.DeleteLog).Methods("DELETE")
	protected.HandleFunc("/habits/{id}", habitHandler.GetHabit).Methods("GET")
	protected.HandleFunc("/habits/{id}", habitHandler.UpdateHabit).Methods("PATCH")
	protected.HandleFunc("/habits/{id}", habitHandler.DeleteHabit).Methods("DELETE")
	protected.HandleFunc("/habits/{id}/archive", habitHandler.ArchiveHabit).Methods("POST")
	protected.HandleFunc("/habits/{id}/logs", habitHandler.LogHabit).Methods("POST")
	protected.HandleFunc("/habits/{id}/logs", habitHandler.GetHabitLogs).Methods("GET")

	protected.HandleFunc("/tasks", taskHandler.CreateTask).Methods("POST")
	protected.HandleFunc("/tasks", taskHandler.GetTasks).Methods("GET")
	protected.HandleFunc("/tasks/overdue", taskHandler.GetOverdueTasks).Methods("GET")
	protected.HandleFunc("/tasks/stats", taskHandler.GetStats).Methods("GET")
	protected.HandleFunc("/tasks/{id}", taskHandler.GetTask).Methods("GET")
	protected.HandleFunc("/tasks/{id}", taskHandler.UpdateTask).Methods("PATCH")
	protected.HandleFunc("/tasks/{id}", taskHandler.DeleteTask).Methods("DELETE")
	protected.HandleFunc("/tasks/{id}/complete", taskHandler.CompleteTask).Methods("POST")
	protected.HandleFunc("/tasks/{id}/subtasks", taskHandler.GetSubtasks).Methods("GET")

	protected.HandleFunc("/projects", taskHandler.CreateProject).Methods("POST")
	protected.HandleFunc("/projects", taskHandler.GetProjects).Methods("GET")
	protected.HandleFunc("/projects/{id}", taskHandler.GetProject).Methods("GET")
	protected.HandleFunc("/projects/{id}", taskHandler.UpdateProject).Methods("PATCH")
	protected.HandleFunc("/projects/{id}", taskHandler.DeleteProject).Methods("DELETE")
	protected.HandleFunc("/projects/{id}/tasks", taskHandler.GetProjectTasks).Methods("GET")

	protected.HandleFunc("/notes", noteHandler.CreateNote).Methods("POST")
	protected.HandleFunc("/notes", noteHandler.GetNotes).Methods("GET")
	protected.HandleFunc("/notes/stats", noteHandler.GetStats).Methods("GET")
	protected.HandleFunc("/notes/{id}", noteHandler.GetNote).Methods("GET")
	protected.HandleFunc("/notes/{id}", noteHandler.UpdateNote).Methods("PATCH")
	protected.HandleFunc("/notes/{id}", noteHandler.DeleteNote).Methods("DELETE")
	protected.HandleFunc("/notes/{id}/pin", noteHandler.TogglePin).Methods("POST")
	protected.HandleFunc("/notes/{id}/links", noteHandler.GetLinks).Methods("GET")
	protected.HandleFunc("/notes/{id}/links", noteHandler.AddLink).Methods("POST")
	protected.HandleFunc("/notes/{id}/links/{target}", noteHandler.RemoveLink).Methods("DELETE")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/unread-count", notificationHandler.GetUnreadCount).Methods("GET")
	protected.HandleFunc("/notifications/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/{id}", notificationHandler.DeleteNotification).Methods("DELETE")

	// CORS configuration
	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
