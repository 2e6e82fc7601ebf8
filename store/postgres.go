// Package store persists finalized orders in postgres.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"freelance-checkout-system/models"
)

var ErrNotFound = errors.New("order not found")

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type Store struct {
	db *sql.DB
}

func New(cred *Credentials) (*Store, error) {
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

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RunMigrations applies the file migrations from the configured directory.
func (s *Store) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(s.db, &postgres.Config{
		MigrationsTable: "checkout_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// CreateOrder inserts a finalized order. An empty ID is assigned here; the
// returned order carries the assigned id and timestamps.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	docsJSON, err := json.Marshal(order.DocumentURLs)
	if err != nil {
		return fmt.Errorf("failed to marshal document urls: %w", err)
	}

	query := `INSERT INTO orders (
	            id, contact_name, contact_email, contact_phone, requirements,
	            service_title, quantity, unit_price_base, unit_price_display,
	            currency, total_base, total_display, resume_url, document_urls,
	            gateway_order_id, gateway_payment_id, status, user_id,
	            created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, insertErr := s.db.ExecContext(ctx, query,
		order.ID,
		order.ContactName,
		order.ContactEmail,
		order.ContactPhone,
		order.Requirements,
		order.ServiceTitle,
		order.Quantity,
		order.UnitPriceBase,
		order.UnitPriceDisplay,
		string(order.Currency),
		order.TotalBase,
		order.TotalDisplay,
		order.ResumeURL,
		docsJSON,
		order.GatewayOrderID,
		order.GatewayPaymentID,
		string(order.Status),
		order.UserID,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if insertErr != nil {
		return fmt.Errorf("failed to insert order: %w", insertErr)
	}
	return nil
}

// GetOrder fetches one order by id.
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT id, contact_name, contact_email, contact_phone, requirements,
	                 service_title, quantity, unit_price_base, unit_price_display,
	                 currency, total_base, total_display, resume_url, document_urls,
	                 gateway_order_id, gateway_payment_id, status, user_id,
	                 created_at, updated_at
	          FROM orders WHERE id = $1`

	var order models.Order
	var currencyStr, statusStr string
	var docsJSON []byte

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.ContactName,
		&order.ContactEmail,
		&order.ContactPhone,
		&order.Requirements,
		&order.ServiceTitle,
		&order.Quantity,
		&order.UnitPriceBase,
		&order.UnitPriceDisplay,
		&currencyStr,
		&order.TotalBase,
		&order.TotalDisplay,
		&order.ResumeURL,
		&docsJSON,
		&order.GatewayOrderID,
		&order.GatewayPaymentID,
		&statusStr,
		&order.UserID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	order.Currency = models.Currency(currencyStr)
	order.Status = models.OrderStatus(statusStr)
	if len(docsJSON) > 0 {
		if err := json.Unmarshal(docsJSON, &order.DocumentURLs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document urls: %w", err)
		}
	}
	return &order, nil
}

// UpdateStatus moves an order to a new status. Status transitions are
// server-authoritative.
func (s *Store) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
