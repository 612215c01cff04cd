package database

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"postboard/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

var requiredTables = []string{"users", "posts"}

type DB struct {
	*sqlx.DB
}

func DSN(cfg config.DB) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// ConnectDB opens a pool through lib/pq ("postgres") or pgx ("pgx") depending on
// cfg.DB.Driver, then migrates and verifies the schema when asked to.
func ConnectDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DB, error) {
	logger.Info("подключаемся к БД", "driver", cfg.DB.Driver, "host", cfg.DB.Host, "dbname", cfg.DB.Name)

	db, err := sqlx.ConnectContext(ctx, cfg.DB.Driver, DSN(cfg.DB))
	if err != nil {
		return nil, errors.Wrap(err, "не удалось подключиться к БД")
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	dbStruct := &DB{db}

	if cfg.RunMigrations {
		if err := dbStruct.RunMigrations(ctx); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("миграции успешно применены")
	}

	if err := dbStruct.VerifySchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("успешное подключение к PostgreSQL")
	return dbStruct, nil
}

func (db *DB) CloseDB() error {
	return db.DB.Close()
}

// RunMigrations applies every embedded migration in file name order. Each file is
// idempotent, so re-running on an existing database is harmless.
func (db *DB) RunMigrations(parentCtx context.Context) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return errors.Wrap(err, "ошибка при чтении каталога миграций")
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		migrationSQL, err := migrations.ReadFile("migrations/" + name)
		if err != nil {
			return errors.Wrapf(err, "ошибка при чтении файла миграций %s", name)
		}

		ctx, cancel := getQueryContext(parentCtx)
		_, err = db.ExecContext(ctx, string(migrationSQL))
		cancel()
		if err != nil {
			return errors.Wrapf(err, "ошибка при выполнении миграции %s", name)
		}
	}

	return nil
}

// VerifySchema fails when either of the users/posts tables is missing.
func (db *DB) VerifySchema(parentCtx context.Context) error {
	ctx, cancel := getQueryContext(parentCtx)
	defer cancel()

	query, args, err := sqlx.In(`
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name IN (?)
	`, requiredTables)
	if err != nil {
		return errors.Wrap(err, "ошибка при построении запроса схемы")
	}

	var count int
	if err := db.GetContext(ctx, &count, db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "ошибка при подсчёте таблиц базы данных")
	}

	if count != len(requiredTables) {
		return errors.Errorf("в базе найдено %d из %d таблиц", count, len(requiredTables))
	}

	return nil
}

func (db *DB) HealthCheck(parentCtx context.Context) error {
	if db == nil || db.DB == nil {
		return errors.New("подключение к БД не инициализировано")
	}

	ctx, cancel := getQueryContext(parentCtx)
	defer cancel()

	return db.PingContext(ctx)
}

// TruncateTables empties both tables and resets their id sequences.
func (db *DB) TruncateTables(parentCtx context.Context) error {
	ctx, cancel := getQueryContext(parentCtx)
	defer cancel()

	_, err := db.ExecContext(ctx, `TRUNCATE users, posts RESTART IDENTITY CASCADE`)
	if err != nil {
		return errors.Wrap(err, "ошибка при очистке таблиц")
	}

	return nil
}

func getQueryContext(parentCtx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parentCtx, 10*time.Second)
}
