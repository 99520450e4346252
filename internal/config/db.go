package config

import (
	"log"
	"os"
	"strings"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"finfolio-backend/internal/models"
)

var (
	DB   *gorm.DB
	once sync.Once
)

func ConnectDB() {
	once.Do(func() {
		db, err := ConnectAndMigrate(os.Getenv("DATABASE_URL"))
		if err != nil {
			log.Fatal("Error connecting database:", err)
		}
		DB = db
		log.Println("DB connected and migrated")
	})
}

// ConnectAndMigrate opens the database and runs automigration. sqlite DSNs
// (used by tests) are detected by shape; anything else is postgres.
func ConnectAndMigrate(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file::") {
		dialector = sqlite.Open(dsn)
	} else {
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserSession{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
