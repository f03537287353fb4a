package config

import "os"

// Config carries every environment-driven setting the storefront needs.
// Values come from the process environment; cmd/app loads a .env file first
// so local development matches deployment.
type Config struct {
	Addr string

	// BackendBaseURL is the commerce backend this service fronts. All cart,
	// payment and stock calls go there.
	BackendBaseURL string

	// Midtrans Snap settings. Env selects the sandbox or production widget
	// script; the client key is handed to the page verbatim.
	MidtransClientKey string
	MidtransEnv       string

	JWTSecret string

	// DatabaseURL is optional; when empty the session store is in-memory.
	DatabaseURL string

	ChatAPIURL string
	ChatAPIKey string
}

func Load() Config {
	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	env := os.Getenv("MIDTRANS_ENV")
	if env == "" {
		env = "sandbox"
	}

	backend := os.Getenv("BACKEND_BASE_URL")
	if backend == "" {
		backend = "http://localhost:5000"
	}

	return Config{
		Addr:              addr,
		BackendBaseURL:    backend,
		MidtransClientKey: os.Getenv("MIDTRANS_CLIENT_KEY"),
		MidtransEnv:       env,
		JWTSecret:         os.Getenv("JWT_SECRET"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ChatAPIURL:        os.Getenv("CHAT_API_URL"),
		ChatAPIKey:        os.Getenv("CHAT_API_KEY"),
	}
}
