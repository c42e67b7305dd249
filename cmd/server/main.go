package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/trackquiz/backend/internal/auth"
	"github.com/trackquiz/backend/internal/catalog"
	"github.com/trackquiz/backend/internal/database"
	"github.com/trackquiz/backend/internal/middleware"
	"github.com/trackquiz/backend/internal/quiz"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: no .env file loaded: %v", err)
	}

	// Validate Spotify credentials (fail fast)
	spotifyID := os.Getenv("SPOTIFY_ID")
	spotifySecret := os.Getenv("SPOTIFY_SECRET")
	if spotifyID == "" || spotifySecret == "" {
		log.Fatal("CRITICAL: SPOTIFY_ID and SPOTIFY_SECRET must be set in environment")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Long-lived Spotify client via client-credentials flow
	config := &clientcredentials.Config{
		ClientID:     spotifyID,
		ClientSecret: spotifySecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	httpClient := config.Client(context.Background())
	spotifyClient := spotify.New(httpClient)

	// Initialize handlers
	authHandler := auth.NewHandler(db)

	provider := catalog.NewSpotifyProvider(spotifyClient)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	quizService := quiz.NewService(quiz.NewStore(db), provider, quiz.DefaultConfig(), rng)
	quizHandler := quiz.NewHandler(quizService)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/quiz/playlist", quizHandler.LoadPlaylist).Methods("POST")
	protected.HandleFunc("/quiz/question", quizHandler.NextQuestion).Methods("GET")
	protected.HandleFunc("/quiz/guess", quizHandler.SubmitGuess).Methods("POST")
	protected.HandleFunc("/quiz/rank", quizHandler.NextRankingTask).Methods("GET")
	protected.HandleFunc("/quiz/rank", quizHandler.SubmitRanking).Methods("POST")
	protected.HandleFunc("/quiz/mistakes", quizHandler.MissedTracks).Methods("GET")
	protected.HandleFunc("/quiz/mistakes/rank", quizHandler.RankMistakes).Methods("POST")
	protected.HandleFunc("/quiz/stats", quizHandler.Stats).Methods("GET")
	protected.HandleFunc("/quiz/scoreboard", quizHandler.Scoreboard).Methods("GET")
	protected.HandleFunc("/quiz/preferences", quizHandler.SetPreferences).Methods("PUT")
	protected.HandleFunc("/quiz/settings", quizHandler.UpdateSettings).Methods("POST")
	protected.HandleFunc("/quiz/session", quizHandler.EndSession).Methods("DELETE")
	protected.HandleFunc("/quiz/autocomplete/{field}", quizHandler.Autocomplete).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
