package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ctroy978/umadex-sub002/internal/models"
)

// ConnectPostgres opens the debate engine's primary store. Query logging
// stays at warn so slow rollup queries surface without per-turn noise, and
// timestamps are written in UTC because deadlines are compared against
// time.Now across nodes.
func ConnectPostgres(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn must not be empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the debate schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.DebateAssignment{},
		&models.StudentDebate{},
		&models.DebatePost{},
		&models.DebateChallenge{},
		&models.ContentFlag{},
		&models.DebateRoundFeedback{},
		&models.FallacyTemplate{},
		&models.OverrideCode{},
		&models.TeacherBypass{},
	)
}
