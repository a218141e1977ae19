package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"personality-quiz-system/internal/auth"
	"personality-quiz-system/internal/models"
	"personality-quiz-system/internal/quiz"
	"personality-quiz-system/pkg/cache"
	"personality-quiz-system/pkg/database"
	"personality-quiz-system/pkg/websocket"

	"github.com/gorilla/mux"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	// Initialize database
	dbConfig := &database.Config{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
	}

	db, err := database.NewPostgresDB(dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.PersonalityType{},
		&models.Question{},
		&models.Option{},
		&models.QuizResult{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis cache
	redisCache := cache.NewRedisCache(os.Getenv("REDIS_ADDR"))

	// Initialize result feed hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize repositories
	authRepo := auth.NewRepository(db)
	quizRepo := quiz.NewRepository(db)

	// Initialize services
	jwtSecret := os.Getenv("JWT_SECRET")
	authService := auth.NewService(authRepo, jwtSecret)
	quizService := quiz.NewService(quizRepo, redisCache, hub)

	// Only a quiz's owner may watch its live result feed.
	guard := quiz.NewGuard(quizRepo)
	hub.SetAuthorizer(func(quizID, token string) (string, error) {
		userID, err := auth.ParseToken(jwtSecret, token)
		if err != nil {
			return "", err
		}
		if _, err := guard.ResolveOwned(quizID, userID); err != nil {
			return "", err
		}
		return userID, nil
	})

	// Initialize handlers
	authHandler := auth.NewHandler(authService)
	quizHandler := quiz.NewHandler(quizService)

	// Setup router
	router := mux.NewRouter()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	handler := corsMiddleware.Handler(router)

	// Auth routes - no JWT required
	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Quiz routes - JWT required
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(auth.JWTMiddleware(jwtSecret))

	apiRouter.HandleFunc("/quizzes", quizHandler.CreateQuiz).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/quizzes", quizHandler.ListMyQuizzes).Methods("GET")
	apiRouter.HandleFunc("/quizzes/{quizID}", quizHandler.GetQuizWithDetails).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/quizzes/{quizID}", quizHandler.UpdateQuiz).Methods("PUT")
	apiRouter.HandleFunc("/quizzes/{quizID}", quizHandler.ArchiveQuiz).Methods("DELETE")
	apiRouter.HandleFunc("/quizzes/{quizID}/types", quizHandler.UpsertType).Methods("PUT", "OPTIONS")
	apiRouter.HandleFunc("/quizzes/{quizID}/types/{typeID}", quizHandler.DeleteType).Methods("DELETE")
	apiRouter.HandleFunc("/quizzes/{quizID}/questions", quizHandler.UpsertQuestion).Methods("PUT", "OPTIONS")
	apiRouter.HandleFunc("/quizzes/{quizID}/questions/{questionID}", quizHandler.DeleteQuestion).Methods("DELETE")
	apiRouter.HandleFunc("/questions/{questionID}/options", quizHandler.UpsertOption).Methods("PUT", "OPTIONS")
	apiRouter.HandleFunc("/questions/{questionID}/options/{optionID}", quizHandler.DeleteOption).Methods("DELETE")
	apiRouter.HandleFunc("/quizzes/{quizID}/results", quizHandler.RecordResult).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/quizzes/{quizID}/results", quizHandler.ListResults).Methods("GET")

	// Live result feed for owner dashboards
	router.HandleFunc("/ws/quizzes/{quizID}/results", hub.HandleResultFeed)

	// Setup server with CORS handler
	srv := &http.Server{
		Addr:         ":8080",
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port 8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown setup
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server shutdown gracefully")
}
