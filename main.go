package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"cmfs/ai"
	"cmfs/cache"
	"cmfs/config"
	"cmfs/notification"
	"cmfs/repository"
	"cmfs/routes"
	"cmfs/schema"
	"cmfs/service"
	"cmfs/worker"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg := config.LoadConfig()

	// Initialize database connection (UTC for consistent timestamps)
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
	)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("Failed to open database connection: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Database connection established")

	schema.InitializeDatabase(db)

	// Embedding cache backend
	var store cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		redisStore := cache.NewRedisStore(cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
		if err := redisStore.Ping(context.Background()); err != nil {
			log.Fatalf("Failed to ping redis: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
		log.Printf("Embedding cache: redis (%s)", cfg.Cache.RedisAddr)
	default:
		store = cache.NewMemoryStore()
		log.Println("Embedding cache: in-memory")
	}

	embedder := ai.NewHTTPEmbedder(cfg.Embedding.ServiceURL, cfg.Embedding.Timeout)
	if cfg.Embedding.ServiceURL == "" {
		log.Println("Warning: EMBEDDING_SERVICE_URL not set, classification disabled")
	}

	// Initialize repositories
	institutionRepo := repository.NewInstitutionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	levelRepo := repository.NewResolverLevelRepository(db)
	resolverRepo := repository.NewCategoryResolverRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Initialize services
	notificationService := service.NewNotificationService(notificationRepo, userRepo, notification.NewEmailSender())
	aiService := service.NewAIService(
		embedder, store, cfg.Cache.TTL,
		categoryRepo, complaintRepo, levelRepo, resolverRepo, assignmentRepo,
	)
	escalationService := service.NewEscalationService(
		complaintRepo, levelRepo, resolverRepo, assignmentRepo, notificationService,
	)
	complaintService := service.NewComplaintService(
		complaintRepo, categoryRepo, levelRepo, assignmentRepo, commentRepo,
		aiService, notificationService,
	)
	categoryService := service.NewCategoryService(categoryRepo, levelRepo, resolverRepo)

	// Background workers
	escalationWorker := worker.NewEscalationWorker(escalationService, cfg.Worker.SweepInterval)
	escalationWorker.Start()
	defer escalationWorker.Stop()

	reminderWorker := worker.NewReminderWorker(escalationService, cfg.Worker.ReminderInterval, cfg.Worker.ReminderWindow)
	reminderWorker.Start()
	defer reminderWorker.Stop()

	router := routes.SetupRoutes(
		complaintService,
		escalationService,
		categoryService,
		notificationService,
		aiService,
		institutionRepo,
		cfg.JWTSecret,
	)

	// CORS middleware
	corsHandler := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Fatal(http.ListenAndServe(addr, corsHandler(router)))
}
