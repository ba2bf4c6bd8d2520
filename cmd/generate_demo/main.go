// Command generate_demo creates a demo database with a small catalog of
// public domain Brazilian classics and a week of sales.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/bookstore-assistant/internal/config"
	"github.com/mrlokans/bookstore-assistant/internal/entities"
	"github.com/mrlokans/bookstore-assistant/internal/entrypoint"
	"github.com/mrlokans/bookstore-assistant/internal/importers"
	"github.com/mrlokans/bookstore-assistant/internal/services"
)

const defaultDemoDatabasePath = "./demo/demo.db"

var demoCatalog = [][]string{
	{"ISBN", "Título", "Autor", "Gênero", "Preço", "Estoque"},
	{"9788573210452", "Dom Casmurro", "Machado de Assis", "Romance", "29,90", "12"},
	{"9788508133034", "Memórias Póstumas de Brás Cubas", "Machado de Assis", "Romance", "34,90", "8"},
	{"9788572327572", "Iracema", "José de Alencar", "Romance", "24,50", "5"},
	{"9788508171029", "O Cortiço", "Aluísio Azevedo", "Naturalismo", "27,00", "7"},
	{"9788535908770", "Os Sertões", "Euclides da Cunha", "Ensaio", "59,90", "3"},
	{"9788525406569", "Triste Fim de Policarpo Quaresma", "Lima Barreto", "Romance", "31,90", "4"},
	{"9788544001820", "A Moreninha", "Joaquim Manuel de Macedo", "Romance", "19,90", "9"},
}

// demoSales is the quantity sold per catalog row, one slice per day.
var demoSales = [][]int{
	{2, 1, 0, 1, 0, 0, 1},
	{1, 0, 1, 0, 0, 1, 2},
	{0, 2, 0, 1, 1, 0, 0},
	{3, 0, 1, 0, 0, 0, 1},
	{1, 1, 0, 2, 0, 1, 0},
	{0, 0, 1, 0, 1, 0, 2},
	{2, 1, 0, 0, 0, 1, 1},
}

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	cfg := &config.Config{
		Database: config.Database{Path: *dbPath},
		Store:    config.Store{Backend: config.StoreBackendSQLite},
		Import:   config.Import{DefaultSalesMode: string(entities.SalesModeReplace)},
	}
	stack, err := entrypoint.OpenStack(cfg, true)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer stack.Close()

	ctx := context.Background()
	result, err := stack.Inventory.ImportCatalog(ctx, services.ImportRequest{
		Sheet:    &importers.Sheet{Name: "demo", Rows: demoCatalog},
		Filename: "demo-catalog",
		Source:   services.SourceCLI,
	})
	if err != nil {
		log.Fatalf("Failed to import catalog: %v", err)
	}
	log.Println(result.Message)

	start := time.Now().AddDate(0, 0, -len(demoSales))
	for day, quantities := range demoSales {
		date := start.AddDate(0, 0, day).Format(entities.DateLayout)
		if err := recordDay(ctx, stack.Inventory, date, quantities); err != nil {
			log.Printf("Failed to record sales for %s: %v", date, err)
		}
	}

	log.Println("Demo database generated successfully!")
}

func recordDay(ctx context.Context, inventory *services.InventoryService, date string, quantities []int) error {
	rows := [][]string{{"ISBN", "Qtd"}}
	for i, qty := range quantities {
		if qty == 0 {
			continue
		}
		rows = append(rows, []string{demoCatalog[i+1][0], fmt.Sprint(qty)})
	}

	result, err := inventory.ImportSales(ctx, services.SalesImportRequest{
		ImportRequest: services.ImportRequest{
			Sheet:    &importers.Sheet{Name: "demo", Rows: rows},
			Filename: "demo-sales-" + date,
			Source:   services.SourceCLI,
		},
		Date: date,
	})
	if err != nil {
		return err
	}
	log.Println(result.Message)

	_, err = inventory.SetGoals(ctx, date, decimal.NewFromInt(100), decimal.NewFromInt(180))
	return err
}
