package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"staffops-backend/config"
	"staffops-backend/internal/model"
)

// Init initializes the database connection, runs migrations, and applies
// the store-level constraints the engine's invariants depend on.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Map dialect duplicate-key errors to gorm.ErrDuplicatedKey so the
		// store can classify unique-index violations.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	if err := ApplyConstraints(db); err != nil {
		return nil, fmt.Errorf("constraint DDL failed: %w", err)
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate runs the schema migrations for all engine tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Employee{},
		&model.EmployeeShift{},
		&model.EmployeeRate{},
		&model.AttendanceSession{},
		&model.Schedule{},
		&model.NotificationRecipient{},
		&model.NotificationLog{},
	)
}

// ApplyConstraints installs the conditional uniqueness rules AutoMigrate
// cannot express. The open-session rule in particular must live in the
// store: a check-then-insert in application code leaves a race window
// between two near-simultaneous clock-ins.
func ApplyConstraints(db *gorm.DB) error {
	ddls := []string{
		// At most one open session per employee.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_one_open_session_per_employee " +
			"ON attendance_sessions (employee_id) WHERE clock_out IS NULL;",

		// Month-range session listing.
		"CREATE INDEX IF NOT EXISTS idx_sessions_employee_clock_in " +
			"ON attendance_sessions (employee_id, clock_in);",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
