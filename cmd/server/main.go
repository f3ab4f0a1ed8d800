package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/notively/notively/internal/api"
	"github.com/notively/notively/internal/config"
	"github.com/notively/notively/internal/presence"
	"github.com/notively/notively/internal/relay"
	"github.com/notively/notively/internal/store"
)

func main() {
	cfg := config.FromEnv()

	notes, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize note store: %v", err)
	}
	defer notes.Close()

	hub := relay.NewHub(cfg, presence.NewRegistry())
	go hub.Run()

	apiHandler := api.New(hub, notes)

	// WebSocket endpoint
	http.HandleFunc("/ws", hub.ServeWs)

	http.HandleFunc("/health", apiHandler.HealthHandler)
	http.HandleFunc("/api/stats", apiHandler.StatsHandler)
	http.HandleFunc("/notes", apiHandler.NotesRouter)
	http.HandleFunc("/notes/", apiHandler.NotesRouter)

	// Apply CORS middleware
	handler := corsMiddleware(cfg, http.DefaultServeMux)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		notes.Close()
		os.Exit(0)
	}()

	log.Printf("Notively server starting on :%s", cfg.Port)
	log.Printf("Database: %s", cfg.DBPath)
	log.Println("Endpoints:")
	log.Println("  - WebSocket: /ws")
	log.Println("  - Health:    GET /health")
	log.Println("  - Stats:     GET /api/stats")
	log.Println("  - Notes:     POST /notes")
	log.Println("  - Note:      GET/PUT /notes/{id}")

	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}

func corsMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && cfg.OriginAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
