// Command migrate loads the bundled question bank into MongoDB, replacing
// whatever the questions collection held before.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"iqscalar-service/internal/config"
	"iqscalar-service/internal/dataset"
	"iqscalar-service/internal/db"
	"iqscalar-service/internal/models"
	"iqscalar-service/internal/repository"

	"github.com/joho/godotenv"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "print what would be imported without touching the database")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}

	if err := run(*dryRun); err != nil {
		fmt.Fprintln(os.Stderr, "migration failed:", err)
		os.Exit(1)
	}
}

func run(dryRun bool) error {
	bank, err := dataset.LoadDefault()
	if err != nil {
		return err
	}
	if bank.IsFallback() {
		return fmt.Errorf("no bundled question source could be loaded")
	}

	questions := bank.MigrationSet(time.Now())
	fmt.Printf("Loaded %d bank questions, %d unique by text\n", bank.Len(), len(questions))
	if dryRun {
		printCounts(questions)
		return nil
	}

	cfg := config.Load()
	database, err := db.InitMongo(cfg.MongoDB)
	if err != nil {
		return err
	}
	defer db.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repo := repository.NewQuestionRepository(database)
	inserted, err := repo.ReplaceAll(ctx, questions)
	if err != nil {
		return err
	}
	if err := repo.CreateIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create question indexes: %w", err)
	}

	fmt.Printf("Inserted %d questions\n", inserted)
	printCounts(questions)
	return nil
}

func printCounts(questions []models.Question) {
	counts := map[string]int{}
	for _, q := range questions {
		counts[q.Category]++
	}
	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, c := range categories {
		fmt.Printf("  %-24s %d\n", c, counts[c])
	}
}
