package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/config"
	dbpkg "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/db"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/middleware"
	redispkg "github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/redis"
	"github.com/maichel1859-sys/ShivGorakkshaAshram-app-sub001/internal/routes"
)

func main() {

	_ = godotenv.Load()

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)
	rdb := redispkg.NewClient(cfg)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, rdb, cfg)

	log.Printf("Server running on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
