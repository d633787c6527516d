package db

import (
	"fmt"

	"github.com/philips413/liar-game/internal/wordbank"
)

// ListThemes loads every active theme for the word bank.
func (d *DB) ListThemes() ([]wordbank.Theme, error) {
	rows, err := d.conn.Query(`
		SELECT theme_group, word_a, word_b
		FROM theme
		WHERE is_active = TRUE
		ORDER BY theme_id`)
	if err != nil {
		return nil, fmt.Errorf("querying themes: %w", err)
	}
	defer rows.Close()

	var themes []wordbank.Theme
	for rows.Next() {
		var t wordbank.Theme
		if err := rows.Scan(&t.Group, &t.WordA, &t.WordB); err != nil {
			return nil, fmt.Errorf("scanning theme: %w", err)
		}
		themes = append(themes, t)
	}
	return themes, rows.Err()
}
