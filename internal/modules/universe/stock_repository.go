// Package universe provides the investment universe: the stocks the
// scanning engine reads and the seeder writes.
package universe

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/edgehunter/edgehunter/internal/domain"
)

// stocksColumns is the explicit column list for the stocks table.
// Avoids SELECT * which breaks silently when the schema changes.
const stocksColumns = `symbol, name, price, change_amount, change_percent, volume, market_cap, sector, last_updated`

// StockRepository handles stock database operations
type StockRepository struct {
	marketDB *sql.DB
	log      zerolog.Logger
}

// NewStockRepository creates a new stock repository
func NewStockRepository(marketDB *sql.DB, log zerolog.Logger) *StockRepository {
	return &StockRepository{
		marketDB: marketDB,
		log:      log.With().Str("repo", "stocks").Logger(),
	}
}

// GetAll returns every stock in the universe. Ordering is not
// significant to the engine; detectors filter and re-sort themselves.
func (r *StockRepository) GetAll() ([]domain.Stock, error) {
	rows, err := r.marketDB.Query("SELECT " + stocksColumns + " FROM stocks")
	if err != nil {
		return nil, fmt.Errorf("failed to query stocks: %w", err)
	}
	defer rows.Close()

	var stocks []domain.Stock
	for rows.Next() {
		stock, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, stock)
	}

	return stocks, rows.Err()
}

// GetBySymbol returns a stock by symbol, nil when not found
func (r *StockRepository) GetBySymbol(symbol string) (*domain.Stock, error) {
	rows, err := r.marketDB.Query(
		"SELECT "+stocksColumns+" FROM stocks WHERE symbol = ?",
		strings.ToUpper(strings.TrimSpace(symbol)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock by symbol: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}

	stock, err := scanStock(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan stock: %w", err)
	}
	return &stock, nil
}

// Upsert inserts or updates a stock keyed by symbol
func (r *StockRepository) Upsert(stock domain.Stock) error {
	_, err := r.marketDB.Exec(
		`INSERT INTO stocks (symbol, name, price, change_amount, change_percent, volume, market_cap, sector, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(symbol) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			change_amount = excluded.change_amount,
			change_percent = excluded.change_percent,
			volume = excluded.volume,
			market_cap = excluded.market_cap,
			sector = excluded.sector,
			last_updated = excluded.last_updated`,
		strings.ToUpper(strings.TrimSpace(stock.Symbol)),
		stock.Name,
		stock.Price,
		stock.Change,
		stock.ChangePercent,
		stock.Volume,
		stock.MarketCap,
		stock.Sector,
		stock.LastUpdated.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert stock %s: %w", stock.Symbol, err)
	}
	return nil
}

func scanStock(rows *sql.Rows) (domain.Stock, error) {
	var stock domain.Stock
	var lastUpdated string

	err := rows.Scan(
		&stock.Symbol,
		&stock.Name,
		&stock.Price,
		&stock.Change,
		&stock.ChangePercent,
		&stock.Volume,
		&stock.MarketCap,
		&stock.Sector,
		&lastUpdated,
	)
	if err != nil {
		return domain.Stock{}, err
	}

	if t, err := time.Parse(time.RFC3339, lastUpdated); err == nil {
		stock.LastUpdated = t
	}
	return stock, nil
}
