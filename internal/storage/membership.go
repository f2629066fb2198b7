package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"cardwatch/internal/core"
)

// GetCard returns a card row or ErrNotFound.
func (r *Repository) GetCard(ctx context.Context, card string) (core.Card, error) {
	var c core.Card
	var nickname sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT card, nickname FROM cards WHERE card = ?`, card,
	).Scan(&c.Card, &nickname)
	if err == sql.ErrNoRows {
		return c, fmt.Errorf("card %s: %w", card, ErrNotFound)
	}
	if err != nil {
		return c, fmt.Errorf("get card: %w", err)
	}
	c.Nickname = nickname.String
	return c, nil
}

// ListCards returns every known card in id order.
func (r *Repository) ListCards(ctx context.Context) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT card, nickname FROM cards ORDER BY card`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []core.Card
	for rows.Next() {
		var c core.Card
		var nickname sql.NullString
		if err := rows.Scan(&c.Card, &nickname); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		c.Nickname = nickname.String
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// SetCard creates or renames a card. Unlike the ingestion path, this is the
// operator surface and does overwrite the nickname.
func (r *Repository) SetCard(ctx context.Context, card, nickname string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cards (card, nickname) VALUES (?, ?)
         ON CONFLICT (card) DO UPDATE SET nickname = excluded.nickname`,
		card, nullString(nickname),
	)
	if err != nil {
		return fmt.Errorf("set card: %w", err)
	}
	slog.InfoContext(ctx, "Card saved", "card", card, "nickname", nickname)
	return nil
}

// DeleteCard removes a card and its category associations. Transactions
// referencing the card stay in the ledger.
func (r *Repository) DeleteCard(ctx context.Context, card string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete card: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM card_categories WHERE card = ?`, card); err != nil {
		return fmt.Errorf("delete card associations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE card = ?`, card); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return tx.Commit()
}

// CardDisplay resolves the human label for a card id, falling back to the
// raw id for unknown cards.
func (r *Repository) CardDisplay(ctx context.Context, card string) string {
	c, err := r.GetCard(ctx, card)
	if err != nil {
		return card
	}
	return c.Display()
}

// CreateCategory registers a label; creating an existing one is a no-op.
func (r *Repository) CreateCategory(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, created_at) VALUES (?, ?)
         ON CONFLICT (name) DO NOTHING`,
		name, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// DeleteCategory removes a label and cascades its associations.
func (r *Repository) DeleteCategory(ctx context.Context, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM card_categories WHERE category = ?`, name); err != nil {
		return fmt.Errorf("delete category associations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return tx.Commit()
}

// ListCategories returns all categories in name order.
func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		var createdAt string
		if err := rows.Scan(&c.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if c.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse category created_at: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// CardCategories returns the names of the categories a card belongs to, in
// name order.
func (r *Repository) CardCategories(ctx context.Context, card string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category FROM card_categories WHERE card = ? ORDER BY category`, card)
	if err != nil {
		return nil, fmt.Errorf("card categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CardsInCategory returns the member cards of a category in id order.
func (r *Repository) CardsInCategory(ctx context.Context, category string) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.card, c.nickname FROM cards c
         JOIN card_categories cc ON c.card = cc.card
         WHERE cc.category = ?
         ORDER BY c.card`, category)
	if err != nil {
		return nil, fmt.Errorf("cards in category: %w", err)
	}
	defer rows.Close()

	var cards []core.Card
	for rows.Next() {
		var c core.Card
		var nickname sql.NullString
		if err := rows.Scan(&c.Card, &nickname); err != nil {
			return nil, fmt.Errorf("scan member card: %w", err)
		}
		c.Nickname = nickname.String
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// AddCardToCategory associates a card with a category; adding an existing
// pair is a no-op.
func (r *Repository) AddCardToCategory(ctx context.Context, card, category string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO card_categories (card, category) VALUES (?, ?)
         ON CONFLICT DO NOTHING`,
		card, category,
	)
	if err != nil {
		return fmt.Errorf("add card to category: %w", err)
	}
	return nil
}

// RemoveCardFromCategory drops one association; removing a pair that does
// not exist is a no-op.
func (r *Repository) RemoveCardFromCategory(ctx context.Context, card, category string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM card_categories WHERE card = ? AND category = ?`,
		card, category,
	)
	if err != nil {
		return fmt.Errorf("remove card from category: %w", err)
	}
	return nil
}

// ReplaceCategoryCards atomically makes the category's member set exactly
// the given cards. Associations of other categories are untouched.
func (r *Repository) ReplaceCategoryCards(ctx context.Context, category string, cards []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace cards: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM card_categories WHERE category = ?`, category); err != nil {
		return fmt.Errorf("clear category: %w", err)
	}
	for _, card := range cards {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO card_categories (card, category) VALUES (?, ?)
             ON CONFLICT DO NOTHING`,
			card, category,
		); err != nil {
			return fmt.Errorf("assign card %s: %w", card, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace cards: %w", err)
	}
	slog.InfoContext(ctx, "Category membership replaced", "category", category, "cards", len(cards))
	return nil
}
