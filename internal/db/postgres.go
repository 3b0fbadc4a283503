package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore хранит данные в PostgreSQL через пул соединений pgx
type PostgresStore struct {
	sqlStore
	pool *pgxpool.Pool
}

// NewPostgresStore создаёт пул соединений и проверяет подключение
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка при разборе URL базы данных: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пула соединений: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка при проверке соединения: %w", err)
	}

	s := &PostgresStore{pool: pool}
	s.sqlStore = sqlStore{
		db: pgxConn{q: pool},
		begin: func(ctx context.Context) (txConn, error) {
			tx, err := pool.Begin(ctx)
			if err != nil {
				return nil, err
			}
			return pgxTx{pgxConn: pgxConn{q: tx}, tx: tx}, nil
		},
		isUniqueViolation: isPgUniqueViolation,
	}
	return s, nil
}

// Close закрывает пул соединений
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping проверяет соединение с базой данных
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate создаёт таблицы, если их ещё нет
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresSchema)
	return err
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
