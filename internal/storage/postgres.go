package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mselser95/restock-sniper/pkg/types"
)

// PostgresStorage implements Storage using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage creates a new PostgreSQL storage.
func NewPostgresStorage(cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStorage{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// StoreQualifiedOffer inserts a qualified offer row.
func (p *PostgresStorage) StoreQualifiedOffer(ctx context.Context, offer *types.QualifiedOffer) error {
	query := `
		INSERT INTO qualified_offers (
			id, item_id, listing_id, discovered_at
		) VALUES (
			$1, $2, $3, $4
		)
	`

	_, err := p.db.ExecContext(ctx, query,
		offer.ID,
		offer.ItemID,
		offer.ListingID,
		offer.DiscoveredAt,
	)

	if err != nil {
		return fmt.Errorf("insert qualified offer: %w", err)
	}

	p.logger.Debug("qualified-offer-stored",
		zap.String("offer-id", offer.ID),
		zap.String("item-id", offer.ItemID))

	return nil
}

// StorePurchase inserts a purchase attempt row.
func (p *PostgresStorage) StorePurchase(ctx context.Context, result *types.CheckoutResult) error {
	var errText string
	if result.Err != nil {
		errText = result.Err.Error()
	}

	query := `
		INSERT INTO purchases (
			offer_id, item_id, listing_id, purchase_id,
			outcome, status_code, executed_at, latency_ms, error
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := p.db.ExecContext(ctx, query,
		result.OfferID,
		result.ItemID,
		result.ListingID,
		result.PurchaseID,
		result.Outcome.String(),
		result.StatusCode,
		result.ExecutedAt,
		result.Latency.Milliseconds(),
		errText,
	)

	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}

	p.logger.Debug("purchase-stored",
		zap.String("offer-id", result.OfferID),
		zap.String("outcome", result.Outcome.String()))

	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
