// Command datagen generates synthetic customer and order extracts for
// exercising the sales pipeline at scale. It writes customers.csv and
// orders.xml in the production feed formats with a configurable share of
// dirty records.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/salesintel/tools/datagen/internal/sample"
)

func main() {
	cfg := sample.DefaultConfig()

	var (
		outDir string
		dirty  float64
	)
	flag.IntVar(&cfg.Customers, "customers", cfg.Customers, "Number of customer rows to generate")
	flag.IntVar(&cfg.Orders, "orders", cfg.Orders, "Number of orders to generate")
	flag.IntVar(&cfg.MaxLineItems, "max-items", cfg.MaxLineItems, "Maximum line items per order")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed (same seed, same output)")
	flag.Float64Var(&dirty, "dirty", -1, "Override every dirty-record rate with this value (0 disables all)")
	flag.StringVar(&outDir, "out", "testdata", "Output directory")
	flag.Parse()

	if dirty >= 0 {
		cfg.DuplicateRate = dirty
		cfg.MissingMobileRate = dirty
		cfg.MissingNameRate = dirty
		cfg.MissingRegionRate = dirty
		cfg.ZeroSkuRate = dirty
		cfg.NegativeAmountRate = dirty
		cfg.MissingElementRate = dirty
		cfg.BadDateRate = dirty
		cfg.UnmatchedRate = dirty
	}

	gen, err := sample.NewGenerator(cfg)
	if err != nil {
		fatalf("invalid configuration: %v", err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fatalf("creating output directory: %v", err)
	}

	extract := gen.Generate()

	customersPath := filepath.Join(outDir, "customers.csv")
	if err := writeFile(customersPath, func(f *os.File) error {
		return sample.WriteCustomersCSV(f, extract.Customers)
	}); err != nil {
		fatalf("writing %s: %v", customersPath, err)
	}

	ordersPath := filepath.Join(outDir, "orders.xml")
	if err := writeFile(ordersPath, func(f *os.File) error {
		return sample.WriteOrdersXML(f, extract.Orders)
	}); err != nil {
		fatalf("writing %s: %v", ordersPath, err)
	}

	fmt.Printf("wrote %d customer rows to %s\n", len(extract.Customers), customersPath)
	fmt.Printf("wrote %d order records to %s\n", len(extract.Orders), ordersPath)
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
