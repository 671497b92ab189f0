package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"mediadeck/internal/handlers"
	"mediadeck/internal/middleware"
)

func main() {
	InitializeLogger()
	InitializeDatabase()
	InitializeServices()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(Logger))
	r.Use(middleware.Gzip())
	r.Use(middleware.CORS())

	handlers.New(serviceContainer).RegisterRoutes(r)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serviceContainer.TMDB.StartCleanup(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	Logger.Infof("[App] starting HTTP server on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}
