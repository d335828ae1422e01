package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
)

// Food is one row of the local nutrition table.
type Food struct {
	ID      int64
	Serving string
	domain.NutritionRecord
}

type FoodStore struct {
	db *sql.DB
}

func NewFoodStore(db *sql.DB) *FoodStore {
	return &FoodStore{db: db}
}

const foodColumns = `id, name, serving, calories, protein_g, carbs_g, fat_g`

func scanFood(row interface{ Scan(...any) error }) (*Food, error) {
	f := &Food{}
	err := row.Scan(&f.ID, &f.Name, &f.Serving, &f.Calories, &f.ProteinG, &f.CarbsG, &f.FatsG)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Upsert inserts a food or replaces the values of the food with the same
// case-insensitive name.
func (s *FoodStore) Upsert(ctx context.Context, rec domain.NutritionRecord, serving string) (*Food, error) {
	if serving == "" {
		serving = "1 serving"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO foods (name, serving, calories, protein_g, carbs_g, fat_g) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			serving = excluded.serving,
			calories = excluded.calories,
			protein_g = excluded.protein_g,
			carbs_g = excluded.carbs_g,
			fat_g = excluded.fat_g
	`, rec.Name, serving, rec.Calories, rec.ProteinG, rec.CarbsG, rec.FatsG)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert food: %w", err)
	}

	f, err := s.getByName(ctx, rec.Name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FoodStore) getByName(ctx context.Context, name string) (*Food, error) {
	f, err := scanFood(s.db.QueryRowContext(ctx,
		`SELECT `+foodColumns+` FROM foods WHERE name = ? COLLATE NOCASE`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get food: %w", err)
	}
	return f, nil
}

// FindByName returns the food whose name equals name ignoring case, or else
// the shortest food name containing it. It returns nil, nil when neither
// exists.
func (s *FoodStore) FindByName(ctx context.Context, name string) (*Food, error) {
	if name == "" {
		return nil, nil
	}

	f, err := s.getByName(ctx, name)
	if err != nil || f != nil {
		return f, err
	}

	f, err = scanFood(s.db.QueryRowContext(ctx, `
		SELECT `+foodColumns+` FROM foods
		WHERE instr(lower(name), lower(?)) > 0
		ORDER BY length(name) ASC, name ASC
		LIMIT 1
	`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search foods: %w", err)
	}
	return f, nil
}

func (s *FoodStore) List(ctx context.Context) ([]*Food, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+foodColumns+` FROM foods ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list foods: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var foods []*Food
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food: %w", err)
		}
		foods = append(foods, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating foods: %w", err)
	}

	return foods, nil
}
