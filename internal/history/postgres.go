package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/lsm5482-blip/my-coupang-bot/pkg/types"
)

const defaultPoolSize = 4

const (
	querySelectObservations = `
		SELECT product_id, price
		FROM price_observations
		ORDER BY product_id, seq`

	querySelectMaxSeq = `
		SELECT product_id, max(seq)
		FROM price_observations
		GROUP BY product_id`

	queryInsertObservation = `
		INSERT INTO price_observations (product_id, seq, price)
		VALUES (@product_id, @seq, @price)
		ON CONFLICT (product_id, seq) DO NOTHING`
)

// PostgresStore keeps price history as append-only rows in
// price_observations, one row per observed price.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to connString and verifies the connection.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// Load returns every product's prices ordered by observation sequence.
func (s *PostgresStore) Load(ctx context.Context) (map[string]*domain.PriceRecord, error) {
	rows, err := s.pool.Query(ctx, querySelectObservations)
	if err != nil {
		return nil, fmt.Errorf("%w: querying observations: %w", ErrPersistence, err)
	}
	defer rows.Close()

	records := make(map[string]*domain.PriceRecord)
	for rows.Next() {
		var (
			id    string
			price int64
		)
		if err := rows.Scan(&id, &price); err != nil {
			return nil, fmt.Errorf("%w: scanning observation: %w", ErrPersistence, err)
		}
		rec, ok := records[id]
		if !ok {
			rec = &domain.PriceRecord{}
			records[id] = rec
		}
		rec.Prices = append(rec.Prices, price)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating observations: %w", ErrPersistence, err)
	}
	return records, nil
}

// Persist inserts the observations in records that are not stored yet.
// Existing rows are never updated or deleted; a record shorter than what is
// stored adds nothing. All inserts commit in one transaction.
func (s *PostgresStore) Persist(ctx context.Context, records map[string]*domain.PriceRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stored, err := storedCounts(ctx, tx)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for id, rec := range records {
		if rec == nil {
			continue
		}
		for seq := stored[id]; seq < len(rec.Prices); seq++ {
			batch.Queue(queryInsertObservation, pgx.NamedArgs{
				"product_id": id,
				"seq":        seq,
				"price":      rec.Prices[seq],
			})
		}
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("%w: inserting observations: %w", ErrPersistence, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: committing observations: %w", ErrPersistence, err)
	}
	return nil
}

// storedCounts returns the number of stored observations per product.
func storedCounts(ctx context.Context, tx pgx.Tx) (map[string]int, error) {
	rows, err := tx.Query(ctx, querySelectMaxSeq)
	if err != nil {
		return nil, fmt.Errorf("%w: querying sequence numbers: %w", ErrPersistence, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			id     string
			maxSeq int
		)
		if err := rows.Scan(&id, &maxSeq); err != nil {
			return nil, fmt.Errorf("%w: scanning sequence number: %w", ErrPersistence, err)
		}
		counts[id] = maxSeq + 1
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sequence numbers: %w", ErrPersistence, err)
	}
	return counts, nil
}
