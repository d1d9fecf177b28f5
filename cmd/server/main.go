package main

import (
	"github.com/harimoradiya/rmspos/internal/database"
	"github.com/harimoradiya/rmspos/internal/notifications"
	"github.com/harimoradiya/rmspos/internal/router"
	"github.com/harimoradiya/rmspos/pkg/utils"

	"github.com/rs/zerolog/log"
)

func main() {
	utils.InitLogger()

	// Configuration from environment with development fallbacks.
	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "postgres")
	dbPassword := utils.Getenv("DB_PASSWORD", "postgres")
	dbName := utils.Getenv("DB_NAME", "rmspos")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
	schemaPath := utils.Getenv("DB_SCHEMA_PATH", "db_schema.sql")
	serverPort := utils.Getenv("SERVER_PORT", "8080")

	utils.SetJWTSecret(utils.Getenv("JWT_SECRET", ""))

	database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode, schemaPath)
	db := database.GetDB()
	defer db.Close()

	hub := notifications.NewHub()
	defer hub.Close()

	r := router.Setup(db, hub)

	utils.LogInfo("Starting server", map[string]interface{}{"port": serverPort})
	if err := r.Run(":" + serverPort); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
