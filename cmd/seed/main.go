package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/e4rthen/storefront-backend/config"
	"github.com/e4rthen/storefront-backend/internal/app/repository"
	"github.com/e4rthen/storefront-backend/internal/db"
)

const batchSize = 500

func main() {
	yes := flag.Bool("y", false, "import without asking for confirmation")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: go run cmd/seed/main.go [-y] <xlsx_file_path>")
	}
	filePath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	result, err := readProducts(f)
	f.Close()
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Products to import: %d (skipped rows: %d)\n", len(result.Products), result.Skipped)
	for _, reason := range result.Problems {
		fmt.Println("  " + reason)
	}

	if !*yes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := productRepo.CreateInBatches(context.Background(), result.Products, batchSize); err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(result.Products))
}
