package portfolio

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/foliolens/foliolens/internal/database"
)

// ErrNotFound is returned when a position does not exist
var ErrNotFound = errors.New("position not found")

// Repository handles position database operations
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates the repository and its backing table
func NewRepository(db *database.DB, log zerolog.Logger) (*Repository, error) {
	r := &Repository{
		db:  db,
		log: log.With().Str("repo", "portfolio").Logger(),
	}

	schema := `
		CREATE TABLE IF NOT EXISTS positions (
			symbol         TEXT PRIMARY KEY,
			name           TEXT NOT NULL DEFAULT '',
			shares         REAL NOT NULL,
			current_price  REAL NOT NULL,
			purchase_price REAL NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create positions table: %w", err)
	}

	return r, nil
}

// List returns all positions ordered by symbol
func (r *Repository) List() ([]Position, error) {
	rows, err := r.db.Query(
		"SELECT symbol, name, shares, current_price, purchase_price FROM positions ORDER BY symbol",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := []Position{}
	for rows.Next() {
		var pos Position
		if err := rows.Scan(&pos.Symbol, &pos.Name, &pos.Shares, &pos.CurrentPrice, &pos.PurchasePrice); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// GetBySymbol returns a position by symbol, or ErrNotFound
func (r *Repository) GetBySymbol(symbol string) (*Position, error) {
	symbol = normalizeSymbol(symbol)

	var pos Position
	err := r.db.QueryRow(
		"SELECT symbol, name, shares, current_price, purchase_price FROM positions WHERE symbol = ?",
		symbol,
	).Scan(&pos.Symbol, &pos.Name, &pos.Shares, &pos.CurrentPrice, &pos.PurchasePrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query position by symbol: %w", err)
	}

	return &pos, nil
}

// Upsert inserts or updates a position
func (r *Repository) Upsert(position Position) error {
	position.Symbol = normalizeSymbol(position.Symbol)
	if position.Symbol == "" {
		return fmt.Errorf("position symbol must not be empty")
	}
	if position.Shares <= 0 {
		return fmt.Errorf("position shares must be positive: %f", position.Shares)
	}

	_, err := r.db.Exec(`
		INSERT INTO positions (symbol, name, shares, current_price, purchase_price)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = excluded.name,
			shares = excluded.shares,
			current_price = excluded.current_price,
			purchase_price = excluded.purchase_price`,
		position.Symbol, position.Name, position.Shares, position.CurrentPrice, position.PurchasePrice,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert position: %w", err)
	}

	r.log.Info().Str("symbol", position.Symbol).Msg("Position upserted")
	return nil
}

// Delete removes a position, returning ErrNotFound when no row matched
func (r *Repository) Delete(symbol string) error {
	symbol = normalizeSymbol(symbol)

	result, err := r.db.Exec("DELETE FROM positions WHERE symbol = ?", symbol)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}

	r.log.Info().Str("symbol", symbol).Msg("Position deleted")
	return nil
}

// ReplaceAll atomically replaces the stored portfolio with the given
// positions. Used when a client submits a full portfolio snapshot.
func (r *Repository) ReplaceAll(positions []Position) error {
	err := database.WithTransaction(r.db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM positions"); err != nil {
			return fmt.Errorf("failed to clear positions: %w", err)
		}

		for _, pos := range positions {
			pos.Symbol = normalizeSymbol(pos.Symbol)
			if pos.Symbol == "" {
				return fmt.Errorf("position symbol must not be empty")
			}
			if pos.Shares <= 0 {
				return fmt.Errorf("position shares must be positive for %s: %f", pos.Symbol, pos.Shares)
			}

			_, err := tx.Exec(`
				INSERT INTO positions (symbol, name, shares, current_price, purchase_price)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(symbol) DO UPDATE SET
					name = excluded.name,
					shares = excluded.shares,
					current_price = excluded.current_price,
					purchase_price = excluded.purchase_price`,
				pos.Symbol, pos.Name, pos.Shares, pos.CurrentPrice, pos.PurchasePrice,
			)
			if err != nil {
				return fmt.Errorf("failed to insert position %s: %w", pos.Symbol, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	r.log.Info().Int("count", len(positions)).Msg("Portfolio replaced")
	return nil
}

// TotalValue returns the summed market value of all positions
func (r *Repository) TotalValue() (float64, error) {
	var total float64
	err := r.db.QueryRow("SELECT COALESCE(SUM(shares * current_price), 0) FROM positions").Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to get total value: %w", err)
	}
	return total, nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
