package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"vaultchat/internal/auth"
	"vaultchat/internal/handlers"
	"vaultchat/internal/middleware"
	"vaultchat/internal/store/docstore"
	"vaultchat/internal/ws"
)

var (
	addr          = flag.String("addr", ":8080", "http service address")
	dbFile        = flag.String("db", "chat_data.db", "encrypted store file")
	sessionMaxAge = flag.Duration("session-max-age", 24*time.Hour, "expire sessions idle longer than this")
	sweepInterval = flag.Duration("sweep-interval", time.Hour, "how often to sweep expired sessions")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	password := os.Getenv("VAULTCHAT_PASSWORD")
	if password == "" {
		log.Fatal("VAULTCHAT_PASSWORD must be set")
	}
	if secret := os.Getenv("VAULTCHAT_ADMIN_SECRET"); secret != "" {
		auth.SecretKey = []byte(secret)
	}

	// Open the encrypted store
	store, err := docstore.New(*dbFile, password)
	if err != nil {
		log.Fatal(err)
	}

	// Drop sessions left over from connections that never said goodbye,
	// then keep sweeping on a fixed interval. The sweep goes through the
	// same public method as everything else, so it takes the same
	// store-wide lock.
	sweep := func() {
		removed, err := store.CleanupExpiredSessions(*sessionMaxAge)
		if err != nil {
			log.Printf("session cleanup: %v", err)
			return
		}
		if removed > 0 {
			log.Printf("removed %d expired sessions", removed)
		}
	}
	sweep()
	go func() {
		for range time.Tick(*sweepInterval) {
			sweep()
		}
	}()

	// Initialize WebSocket Hub
	hub := ws.NewHub(store)
	go hub.Run()

	adminHandler := &handlers.AdminHandler{Store: store}

	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)

	// Admin endpoints
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminAuth)
	admin.HandleFunc("/stats", adminHandler.Stats).Methods("GET")
	admin.HandleFunc("/backup", adminHandler.CreateBackup).Methods("POST")

	// WebSocket Endpoint
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, w, r)
	})

	// Serve the chat client
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, "static/index.html")
	})

	// Serve static files with cache-busting headers for development
	r.PathPrefix("/").Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".css") || strings.HasSuffix(r.URL.Path, ".js") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		}
		http.FileServer(http.Dir("static")).ServeHTTP(w, r)
	}))

	log.Println("Starting server on", *addr)
	log.Fatal(http.ListenAndServe(*addr, r))
}
