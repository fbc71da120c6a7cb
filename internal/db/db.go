package db

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"promptvault/internal/auth"
)

type Options struct {
	MaxConns int
	LogLevel logger.LogLevel
}

// Connect opens the pool shared by every store. TranslateError is required
// by the stores to detect unique violations.
func Connect(ctx context.Context, dsn string, opts Options) (*gorm.DB, error) {
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Silent
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(opts.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	maxConns := opts.MaxConns
	if maxConns <= 0 {
		maxConns = 10
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return gdb, nil
}

// Close releases the pool.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

const createPrompts = `
create table if not exists prompts (
	id uuid primary key,
	user_id uuid not null references users(id) on delete cascade,
	content text not null,
	title text not null,
	context text,
	description text,
	tags text[] default '{}',
	ai_tool text,
	use_case text,
	rating integer,
	from_image boolean not null default false,
	created_at timestamptz not null default now(),
	updated_at timestamptz not null default now()
)`

// Migrate brings the schema up to date. Every step is safe to rerun.
func Migrate(gdb *gorm.DB) error {
	m := gormigrate.New(gdb, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "001_users",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&auth.User{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("users")
			},
		},
		{
			// Prompts from before multi-user support have no owner and cannot
			// be attributed, so a legacy table is dropped and recreated.
			ID: "002_prompts_owned",
			Migrate: func(tx *gorm.DB) error {
				if tx.Migrator().HasTable("prompts") && !tx.Migrator().HasColumn("prompts", "user_id") {
					if err := tx.Migrator().DropTable("prompts"); err != nil {
						return fmt.Errorf("drop legacy prompts: %w", err)
					}
				}
				return tx.Exec(createPrompts).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("prompts")
			},
		},
		{
			ID: "003_prompts_indexes",
			Migrate: func(tx *gorm.DB) error {
				stmts := []string{
					`create index if not exists idx_prompts_user_id on prompts(user_id);`,
					`create index if not exists idx_prompts_user_updated on prompts(user_id, updated_at desc);`,
				}
				for _, s := range stmts {
					if err := tx.Exec(s).Error; err != nil {
						return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec(`drop index if exists idx_prompts_user_updated; drop index if exists idx_prompts_user_id;`).Error
			},
		},
	})
	return m.Migrate()
}
