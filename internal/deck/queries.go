package deck

import (
	"context"
	"crypto/rand"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/pfncards/internal/card"
	"github.com/hpungsan/pfncards/internal/errors"
)

// Card is a stored card. ID is a ULID assigned at import.
type Card struct {
	ID   string `json:"id"`
	Easy string `json:"easy"`
	Hard string `json:"hard"`
}

// Summary describes one stored deck.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CardCount int    `json:"card_count"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Name    string // required, normalized for lookup
	Cards   []card.Card
	Replace bool // replace an existing deck with the same name
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Replaced bool   `json:"replaced"`
}

// Import stores cards as a deck in one transaction.
// Cards keep their order through the position column.
func Import(ctx context.Context, db *sql.DB, input ImportInput) (*ImportOutput, error) {
	nameNorm := card.NormalizeName(input.Name)
	if nameNorm == "" {
		return nil, errors.NewInvalidRequest("deck name is required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	replaced := false
	var existingID string
	err = tx.QueryRowContext(ctx, "SELECT id FROM decks WHERE name_norm = ?", nameNorm).Scan(&existingID)
	switch {
	case err == nil:
		if !input.Replace {
			return nil, errors.NewDeckAlreadyExists(nameNorm)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM cards WHERE deck_id = ?", existingID); err != nil {
			return nil, errors.NewInternal(err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM decks WHERE id = ?", existingID); err != nil {
			return nil, errors.NewInternal(err)
		}
		replaced = true
	case stderrors.Is(err, sql.ErrNoRows):
	default:
		return nil, errors.NewInternal(err)
	}

	now := time.Now()
	entropy := ulid.Monotonic(rand.Reader, 0)
	deckID := ulid.MustNew(ulid.Timestamp(now), entropy).String()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO decks (id, name_raw, name_norm, card_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		deckID, input.Name, nameNorm, len(input.Cards), now.Unix(), now.Unix())
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to insert deck: %w", err))
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO cards (id, deck_id, position, easy, hard) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer stmt.Close()

	for i, c := range input.Cards {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("import")
		default:
		}

		if !c.Valid() {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("card %d: easy and hard are required", i+1))
		}
		cardID := ulid.MustNew(ulid.Timestamp(now), entropy).String()
		if _, err := stmt.ExecContext(ctx, cardID, deckID, i, c.Easy, c.Hard); err != nil {
			return nil, errors.NewInternal(fmt.Errorf("failed to insert card %d: %w", i+1, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to commit import: %w", err))
	}

	return &ImportOutput{
		ID:       deckID,
		Name:     nameNorm,
		Count:    len(input.Cards),
		Replaced: replaced,
	}, nil
}

// List returns all decks ordered by name.
func List(ctx context.Context, db *sql.DB) ([]Summary, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, name_norm, card_count, created_at, updated_at FROM decks ORDER BY name_norm")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	decks := make([]Summary, 0)
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.CardCount, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		decks = append(decks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return decks, nil
}

// Sample draws up to n random cards from the named deck.
func Sample(ctx context.Context, db *sql.DB, name string, n int) ([]Card, error) {
	nameNorm := card.NormalizeName(name)
	if nameNorm == "" {
		return nil, errors.NewInvalidRequest("deck name is required")
	}
	if n <= 0 {
		return nil, errors.NewInvalidRequest("count must be positive")
	}

	var deckID string
	err := db.QueryRowContext(ctx, "SELECT id FROM decks WHERE name_norm = ?", nameNorm).Scan(&deckID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound(nameNorm)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	rows, err := db.QueryContext(ctx,
		"SELECT id, easy, hard FROM cards WHERE deck_id = ? ORDER BY RANDOM() LIMIT ?", deckID, n)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	cards := make([]Card, 0)
	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.ID, &c.Easy, &c.Hard); err != nil {
			return nil, errors.NewInternal(err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return cards, nil
}
