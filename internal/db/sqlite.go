package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"

	"github.com/mattn/go-sqlite3"
)

// SQLiteStore хранит данные в файле SQLite. Используется для разработки и тестов.
type SQLiteStore struct {
	sqlStore
	sqlDB *sql.DB
}

var pgPlaceholder = regexp.MustCompile(`\$(\d+)`)

// sqliteRebind переводит $N в ?N: SQLite связывает ?N с N-м аргументом
func sqliteRebind(query string) string {
	return pgPlaceholder.ReplaceAllString(query, "?$1")
}

// NewSQLiteStore открывает (и при необходимости создаёт) файл базы данных.
// Если dbPath пуст, используется ./data/skillswap.db
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/skillswap.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// Одно соединение: SQLite сериализует запись, а транзакции не конкурируют за блокировку файла
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{sqlDB: db}
	s.sqlStore = sqlStore{
		db: sqlConn{q: db, rebind: sqliteRebind},
		begin: func(ctx context.Context) (txConn, error) {
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return nil, err
			}
			return sqlTx{sqlConn: sqlConn{q: tx, rebind: sqliteRebind}, tx: tx}, nil
		},
		isUniqueViolation: isSQLiteUniqueViolation,
	}
	return s, nil
}

// Close закрывает базу данных
func (s *SQLiteStore) Close() {
	s.sqlDB.Close()
}

// Ping проверяет соединение с базой данных
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Migrate создаёт таблицы, если их ещё нет
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.sqlDB.ExecContext(ctx, sqliteSchema)
	return err
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
