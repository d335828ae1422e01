// Command foods lists or imports rows of the local nutrition table used by
// NUTRITION_BACKEND=local.
//
//	foods list
//	foods import foods.yaml
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/saxenaraghav20/nutritionist-ai/internal/config"
	"github.com/saxenaraghav20/nutritionist-ai/internal/db"
	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
	"github.com/saxenaraghav20/nutritionist-ai/internal/store"
)

const usage = "usage: foods list | foods import <file.yaml>"

// foodEntry is one item of an import file.
type foodEntry struct {
	Name     string  `yaml:"name"`
	Serving  string  `yaml:"serving"`
	Calories float64 `yaml:"calories"`
	ProteinG float64 `yaml:"protein_g"`
	CarbsG   float64 `yaml:"carbs_g"`
	FatG     float64 `yaml:"fat_g"`
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	code := run(context.Background(), os.Args[1:], database, os.Stdout, os.Stderr)
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close database: %v\n", err)
	}
	os.Exit(code)
}

func run(ctx context.Context, args []string, database *sql.DB, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return 2
	}
	foods := store.NewFoodStore(database)

	var err error
	switch {
	case args[0] == "list" && len(args) == 1:
		err = listFoods(ctx, foods, stdout)
	case args[0] == "import" && len(args) == 2:
		err = importFoods(ctx, foods, args[1], stdout)
	default:
		fmt.Fprintln(stderr, usage)
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s failed: %v\n", args[0], err)
		return 1
	}
	return 0
}

func listFoods(ctx context.Context, foods *store.FoodStore, out io.Writer) error {
	rows, err := foods.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSERVING\tKCAL\tPROTEIN\tCARBS\tFAT")
	for _, f := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%.0f\t%.1f\t%.1f\t%.1f\n",
			f.Name, f.Serving, f.Calories, f.ProteinG, f.CarbsG, f.FatsG)
	}
	return tw.Flush()
}

func importFoods(ctx context.Context, foods *store.FoodStore, path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	var entries []foodEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for i, e := range entries {
		if e.Name == "" {
			return fmt.Errorf("entry %d has no name", i+1)
		}
		rec := domain.NutritionRecord{
			Name:     e.Name,
			Calories: e.Calories,
			ProteinG: e.ProteinG,
			CarbsG:   e.CarbsG,
			FatsG:    e.FatG,
		}
		if _, err := foods.Upsert(ctx, rec, e.Serving); err != nil {
			return fmt.Errorf("entry %q: %w", e.Name, err)
		}
	}
	fmt.Fprintf(out, "imported %d foods\n", len(entries))
	return nil
}
