package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/erenulutas0/inventory-service/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Credentials holds postgres connection settings
type Credentials struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// PostgresStore implements InventoryStore on database/sql + lib/pq
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the connection pool and verifies it with a ping
func NewPostgresStore(cred *Credentials) (*PostgresStore, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &PostgresStore{db: db}, nil
}

// RunMigrations applies the embedded schema migrations
func (s *PostgresStore) RunMigrations() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not load embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(s.db, &postgres.Config{
		MigrationsTable: "inventory_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

const recordColumns = `id, product_id, quantity, reserved_quantity, min_stock_level, max_stock_level, location, status, created_at, updated_at`

func (s *PostgresStore) Find(ctx context.Context, id string) (*domain.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventories WHERE id = $1`
	return s.queryOne(ctx, query, id)
}

func (s *PostgresStore) FindByProductID(ctx context.Context, productID string) (*domain.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventories WHERE product_id = $1`
	return s.queryOne(ctx, query, productID)
}

func (s *PostgresStore) FindAll(ctx context.Context) ([]domain.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventories ORDER BY created_at`
	return s.queryMany(ctx, query)
}

func (s *PostgresStore) FindByStatus(ctx context.Context, status domain.InventoryStatus) ([]domain.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventories WHERE status = $1 ORDER BY created_at`
	return s.queryMany(ctx, query, string(status))
}

func (s *PostgresStore) FindByLocation(ctx context.Context, location domain.Location) ([]domain.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventories WHERE location = $1 ORDER BY created_at`
	return s.queryMany(ctx, query, string(location))
}

func (s *PostgresStore) ExistsByID(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM inventories WHERE id = $1)`, id)
}

func (s *PostgresStore) ExistsByProductID(ctx context.Context, productID string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM inventories WHERE product_id = $1)`, productID)
}

func (s *PostgresStore) Save(ctx context.Context, record *domain.InventoryRecord) (*domain.InventoryRecord, error) {
	query := `INSERT INTO inventories (` + recordColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	          ON CONFLICT (id) DO UPDATE SET
	              quantity = EXCLUDED.quantity,
	              reserved_quantity = EXCLUDED.reserved_quantity,
	              min_stock_level = EXCLUDED.min_stock_level,
	              max_stock_level = EXCLUDED.max_stock_level,
	              location = EXCLUDED.location,
	              status = EXCLUDED.status,
	              updated_at = NOW()
	          RETURNING ` + recordColumns

	row := s.db.QueryRowContext(ctx, query,
		record.ID,
		record.ProductID,
		record.Quantity,
		record.ReservedQuantity,
		record.MinStockLevel,
		record.MaxStockLevel,
		record.Location,
		record.Status)

	saved, err := scanRecord(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateProduct
		}
		return nil, fmt.Errorf("save inventory record: %w", err)
	}
	return saved, nil
}

func (s *PostgresStore) DeleteByID(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM inventories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inventory record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete inventory record: %w", err)
	}
	if affected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check inventory record existence: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) queryOne(ctx context.Context, query string, args ...any) (*domain.InventoryRecord, error) {
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory record: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) queryMany(ctx context.Context, query string, args ...any) ([]domain.InventoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query inventory records: %w", err)
	}
	defer rows.Close()

	result := make([]domain.InventoryRecord, 0)
	for rows.Next() {
		record, e2 := scanRecord(rows)
		if e2 != nil {
			return nil, fmt.Errorf("scan inventory record: %w", e2)
		}
		result = append(result, *record)
	}
	if e2 := rows.Err(); e2 != nil {
		return nil, fmt.Errorf("iterate inventory records: %w", e2)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.InventoryRecord, error) {
	var record domain.InventoryRecord
	var minLevel, maxLevel sql.NullInt64

	err := row.Scan(
		&record.ID,
		&record.ProductID,
		&record.Quantity,
		&record.ReservedQuantity,
		&minLevel,
		&maxLevel,
		&record.Location,
		&record.Status,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if minLevel.Valid {
		v := int(minLevel.Int64)
		record.MinStockLevel = &v
	}
	if maxLevel.Valid {
		v := int(maxLevel.Int64)
		record.MaxStockLevel = &v
	}
	return &record, nil
}
