package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/thisnaeem/artigma/internal/api"
	"github.com/thisnaeem/artigma/internal/auth"
	"github.com/thisnaeem/artigma/internal/config"
	"github.com/thisnaeem/artigma/internal/events"
	"github.com/thisnaeem/artigma/internal/model"
	"github.com/thisnaeem/artigma/internal/repository"
	"github.com/thisnaeem/artigma/internal/service"
	"github.com/thisnaeem/artigma/internal/tracing"
	_ "github.com/thisnaeem/artigma/migrations"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables provided by Docker")
	}

	api.SetupGlobalHandler("artigma-server")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	shutdownTracer, err := tracing.InitTracerProvider("artigma-server")
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			handleMigrations(cfg)
			return
		case "create-admin":
			if len(os.Args) < 3 {
				log.Fatal("Usage: server create-admin <email>")
			}
			handleCreateAdmin(cfg, os.Args[2])
			return
		}
	}

	db := connectDB(cfg)
	defer db.Close()

	eventPublisher, err := events.NewNatsPublisher(cfg.NATSURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	log.Println("Successfully connected to NATS.")

	userRepo := repository.NewPostgresUserRepository(db)
	sessionRepo := repository.NewPostgresSessionRepository(db)

	hasher := auth.NewHasher(cfg.AuthSecret)
	codec := auth.NewTokenCodec(cfg.AuthSecret)

	authService := service.NewAuthService(userRepo, sessionRepo, hasher, codec, eventPublisher)
	userService := service.NewUserService(userRepo, eventPublisher)

	authHandler := api.NewAuthHandler(authService, cfg.Production())
	adminHandler := api.NewAdminHandler(userService)

	app := fiber.New()
	app.Use(otelfiber.Middleware())
	app.Use(api.PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "artigma-server"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/v1")

	authRoutes := v1.Group("/auth")
	authRoutes.Post("/signup", authHandler.SignUp)
	authRoutes.Post("/signin", authHandler.SignIn)
	authRoutes.Post("/signout", authHandler.SignOut)

	v1.Get("/me", api.Authenticate(authService), authHandler.Me)

	adminRoutes := v1.Group("/admin", api.Authenticate(authService), api.RequireApproved(), api.RequireAdmin())
	adminRoutes.Get("/users", adminHandler.ListUsers)
	adminRoutes.Patch("/users/:id", adminHandler.UpdateUser)
	adminRoutes.Delete("/users/:id", adminHandler.DeleteUser)

	generateRoutes := v1.Group("/generate", api.Authenticate(authService), api.RequireApproved())
	generateRoutes.Post("/image", api.ProxyModelRun(cfg.ModelAPIURL, cfg.ModelAPIKey, "/generate_image"))
	generateRoutes.Post("/chat", api.ProxyModelRun(cfg.ModelAPIURL, cfg.ModelAPIKey, "/chat"))
	generateRoutes.Post("/speech", api.ProxyModelRun(cfg.ModelAPIURL, cfg.ModelAPIKey, "/text-to-speech"))

	log.Printf("Listening artigma-server on port %s", cfg.AppPort)
	log.Fatal(app.Listen(":" + cfg.AppPort))
}

func connectDB(cfg *config.Config) *sqlx.DB {
	db, err := sqlx.Connect("pgx", cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Successfully connected to the database.")
	return db
}

func handleMigrations(cfg *config.Config) {
	fmt.Println("Running database migrations...")

	db, err := sql.Open("pgx", cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	fmt.Println("Migrations applied successfully!")
}

// handleCreateAdmin promotes an existing account to an approved admin.
// Bootstraps the first admin, who can then approve everyone else.
func handleCreateAdmin(cfg *config.Config, email string) {
	db := connectDB(cfg)
	defer db.Close()

	userRepo := repository.NewPostgresUserRepository(db)
	ctx := context.Background()

	user, err := userRepo.FindByEmail(ctx, email)
	if err != nil {
		log.Fatalf("failed to find user %q: %v", email, err)
	}

	if _, err := userRepo.UpdateStatus(ctx, user.ID, model.StatusApproved); err != nil {
		log.Fatalf("failed to approve user: %v", err)
	}
	if _, err := userRepo.UpdateRole(ctx, user.ID, model.RoleAdmin); err != nil {
		log.Fatalf("failed to promote user: %v", err)
	}

	fmt.Printf("User %s is now an approved admin.\n", email)
}
