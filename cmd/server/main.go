package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"finfolio-backend/internal/config"
	httproutes "finfolio-backend/internal/http"
	"finfolio-backend/internal/http/handlers"
	"finfolio-backend/internal/http/middleware"
	"finfolio-backend/internal/services"
	"finfolio-backend/pkg/security"
)

func main() {
	if err := run(http.ListenAndServe, config.ConnectDB); err != nil {
		log.Fatal(err)
	}
}

func run(listen func(string, http.Handler) error, connectDB func()) error {
	_ = godotenv.Load(".env")

	connectDB()
	addr, handler, err := buildServer(os.Getenv, config.DB)
	if err != nil {
		return err
	}
	log.Println("Server running at http://localhost" + addr)
	return listen(addr, handler)
}

func buildServer(getEnv func(string) string, db *gorm.DB) (string, http.Handler, error) {
	authCfg, err := config.LoadAuth(getEnv)
	if err != nil {
		return "", nil, err
	}
	codec, err := security.NewTokenCodec(authCfg.AccessTokenSecret, authCfg.RefreshTokenSecret)
	if err != nil {
		return "", nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	svc := services.NewAuthService(db, codec, authCfg, logger)
	auth := middleware.NewAuthenticator(svc, codec, authCfg, logger)
	h := handlers.NewAuthHandler(svc, authCfg)

	return serverAddress(getEnv), httproutes.NewRouter(h, auth), nil
}

func serverAddress(getEnv func(string) string) string {
	port := strings.TrimSpace(getEnv("PORT"))
	if port == "" {
		port = "8080"
	}
	return ":" + port
}
