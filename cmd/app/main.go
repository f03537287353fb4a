package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/wastraloka/batik-storefront/internal/backend"
	"github.com/wastraloka/batik-storefront/internal/cart"
	"github.com/wastraloka/batik-storefront/internal/chat"
	"github.com/wastraloka/batik-storefront/internal/checkout"
	"github.com/wastraloka/batik-storefront/internal/config"
	"github.com/wastraloka/batik-storefront/internal/confirm"
	"github.com/wastraloka/batik-storefront/internal/session"
	"github.com/wastraloka/batik-storefront/internal/snap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	app := fiber.New()
	setupCORS(app)
	app.Use(requestLogger)

	client := backend.NewClient(cfg.BackendBaseURL)

	var sessionRepo session.Repository = session.NewInMemoryRepository(nil)
	if cfg.DatabaseURL != "" {
		db := mustOpenDB(cfg.DatabaseURL)
		defer db.Close()

		pg := session.NewPostgresRepository(db)
		if err := pg.EnsureSchema(); err != nil {
			panic(err)
		}
		sessionRepo = pg
	}

	store := cart.NewStore(client)
	initiator := checkout.NewInitiator(client)
	bridge := snap.NewBridge(
		snap.NewLoader(cfg.MidtransEnv, cfg.MidtransClientKey),
		client,
		snap.DefaultNavDelay,
	)

	sessionHandler := session.NewHandler(sessionRepo, client, cfg.JWTSecret)
	cartHandler := cart.NewHandler(store)
	checkoutHandler := checkout.NewHandler(sessionRepo, store, initiator, bridge)
	snapHandler := snap.NewHandler(bridge)
	confirmHandler := confirm.NewHandler(client)
	chatHandler := chat.NewHandler(chat.NewService(chat.NewGenAIClient(cfg.ChatAPIURL, cfg.ChatAPIKey)))

	// public surface: sign-in, chat widget, snap bootstrap and the
	// confirmation route (the provider redirects there without our JWT)
	sessionHandler.RegisterPublicRoutes(app)
	snapHandler.RegisterPublicRoutes(app)
	confirmHandler.RegisterPublicRoutes(app)
	chatHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	sessionHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	checkoutHandler.RegisterProtectedRoutes(app)
	snapHandler.RegisterProtectedRoutes(app)

	log.Printf("storefront listening on %s (midtrans env: %s)", cfg.Addr, cfg.MidtransEnv)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func mustOpenDB(dbURL string) *sql.DB {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}
	if err := db.Ping(); err != nil {
		panic(err)
	}
	return db
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	fmt.Printf("URL = %s, Method = %s, Start Time = %v\n", c.OriginalURL(), c.Method(), start)
	return c.Next()
}
