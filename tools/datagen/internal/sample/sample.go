// Package sample generates synthetic CRM and order-system extracts for
// exercising the sales pipeline. Output mirrors the production feed formats,
// including a configurable share of every dirty-record kind the pipeline
// has to survive.
package sample

import (
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// Config controls the size and dirtiness of the generated extracts.
type Config struct {
	// Customers is the number of customer rows to generate, duplicates included
	Customers int

	// Orders is the number of orders to generate; each order expands into
	// one record per line item
	Orders int

	// MaxLineItems is the maximum number of line items per order (minimum 1)
	MaxLineItems int

	// Seed seeds the random source so runs are reproducible
	Seed int64

	// Start and End bound the generated order timestamps
	Start time.Time
	End   time.Time

	// DuplicateRate is the share of customer rows that repeat an earlier
	// customer_id with different attributes
	DuplicateRate float64

	// MissingMobileRate is the share of customer rows with a blank mobile number
	MissingMobileRate float64

	// MissingNameRate is the share of customer rows with a blank name
	MissingNameRate float64

	// MissingRegionRate is the share of customer rows with a blank region
	MissingRegionRate float64

	// ZeroSkuRate is the share of order records with a non-positive sku_count
	ZeroSkuRate float64

	// NegativeAmountRate is the share of order records with a negative total_amount
	NegativeAmountRate float64

	// MissingElementRate is the share of order records missing one required element
	MissingElementRate float64

	// BadDateRate is the share of orders with an unparseable order_date_time
	BadDateRate float64

	// UnmatchedRate is the share of orders whose mobile number matches no customer
	UnmatchedRate float64
}

// DefaultConfig returns a Config that yields mostly clean extracts with a
// small share of each dirty-record kind.
func DefaultConfig() Config {
	return Config{
		Customers:          1000,
		Orders:             5000,
		MaxLineItems:       4,
		Seed:               1,
		Start:              time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:                time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
		DuplicateRate:      0.02,
		MissingMobileRate:  0.02,
		MissingNameRate:    0.03,
		MissingRegionRate:  0.03,
		ZeroSkuRate:        0.02,
		NegativeAmountRate: 0.01,
		MissingElementRate: 0.01,
		BadDateRate:        0.02,
		UnmatchedRate:      0.03,
	}
}

// Validate reports the first problem with the configuration.
func (c Config) Validate() error {
	if c.Customers < 0 {
		return fmt.Errorf("customers must not be negative, got %d", c.Customers)
	}
	if c.Orders < 0 {
		return fmt.Errorf("orders must not be negative, got %d", c.Orders)
	}
	if c.MaxLineItems < 1 {
		return fmt.Errorf("max line items must be at least 1, got %d", c.MaxLineItems)
	}
	if !c.End.After(c.Start) {
		return fmt.Errorf("end %s must be after start %s", c.End.Format(time.RFC3339), c.Start.Format(time.RFC3339))
	}
	for _, r := range []struct {
		name string
		v    float64
	}{
		{"duplicate", c.DuplicateRate},
		{"missing mobile", c.MissingMobileRate},
		{"missing name", c.MissingNameRate},
		{"missing region", c.MissingRegionRate},
		{"zero sku", c.ZeroSkuRate},
		{"negative amount", c.NegativeAmountRate},
		{"missing element", c.MissingElementRate},
		{"bad date", c.BadDateRate},
		{"unmatched", c.UnmatchedRate},
	} {
		if r.v < 0 || r.v > 1 {
			return fmt.Errorf("%s rate must be in [0, 1], got %g", r.name, r.v)
		}
	}
	return nil
}

// CustomerRow is one record of the CRM extract in file column order.
type CustomerRow struct {
	CustomerID   string
	CustomerName string
	MobileNumber string
	Region       string
}

// OrderRecord is one <order> element of the order extract. Line items of the
// same order share every field except sku_id and sku_count, and total_amount
// carries the order total on each of them, the way the order system exports
// it. Omit names an element to drop from the encoded record; empty keeps all
// six.
type OrderRecord struct {
	OrderID       string
	MobileNumber  string
	SkuID         string
	SkuCount      string
	TotalAmount   string
	OrderDateTime string
	Omit          string
}

// Extract is one generated pair of input files.
type Extract struct {
	Customers []CustomerRow
	Orders    []OrderRecord
}

// Generator produces extract pairs whose order mobile numbers mostly resolve
// against the generated customers.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// NewGenerator creates a Generator for the given configuration.
func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

var (
	regions = []string{"north", "South", "EAST", "west", "north east", "Central"}

	givenNames  = []string{"Aarav", "Ananya", "Chen", "Diego", "Emeka", "Fatima", "Hana", "Ivan", "Lucia", "Mateo", "Noor", "Priya", "Ravi", "Sofia", "Wei", "Yuki"}
	familyNames = []string{"Adeyemi", "Brown", "Chen", "Garcia", "Ivanov", "Khan", "Kim", "Mehta", "Nguyen", "Okafor", "Sato", "Silva", "Singh", "Tanaka", "Wang", "Zhang"}

	badDates = []string{"15/03/2024 09:00", "not-a-date", "2024-13-45 99:99:99", "yesterday"}
)

const orderElementCount = 6

// Generate produces the full extract pair. Order mobile numbers are drawn
// from customers that survive cleaning, so the unmatched share stays close
// to UnmatchedRate; rows dropped as duplicates or for blank mobiles never
// reach the pool.
func (g *Generator) Generate() Extract {
	customers, pool := g.customers()
	return Extract{
		Customers: customers,
		Orders:    g.orders(pool),
	}
}

func (g *Generator) customers() ([]CustomerRow, []string) {
	rows := make([]CustomerRow, 0, g.cfg.Customers)
	pool := make([]string, 0, g.cfg.Customers)
	for i := 0; i < g.cfg.Customers; i++ {
		row := CustomerRow{
			CustomerID:   fmt.Sprintf("C%06d", i+1),
			CustomerName: g.pick(givenNames) + " " + g.pick(familyNames),
			MobileNumber: fmt.Sprintf("9%09d", i+1),
			Region:       g.pick(regions),
		}

		dropped := false
		if i > 0 && g.hit(g.cfg.DuplicateRate) {
			// Repeats an earlier id; the cleaner keeps the first occurrence.
			row.CustomerID = rows[g.rng.Intn(len(rows))].CustomerID
			dropped = true
		}
		if g.hit(g.cfg.MissingMobileRate) {
			row.MobileNumber = ""
			dropped = true
		}
		if g.hit(g.cfg.MissingNameRate) {
			row.CustomerName = ""
		}
		if g.hit(g.cfg.MissingRegionRate) {
			row.Region = ""
		}

		rows = append(rows, row)
		if !dropped {
			pool = append(pool, row.MobileNumber)
		}
	}
	return rows, pool
}

func (g *Generator) orders(pool []string) []OrderRecord {
	records := make([]OrderRecord, 0, g.cfg.Orders)
	for i := 0; i < g.cfg.Orders; i++ {
		mobile := g.orderMobile(pool)
		date := g.orderDate()
		total := g.amount()
		if g.hit(g.cfg.NegativeAmountRate) {
			total = "-" + total
		}

		items := 1 + g.rng.Intn(g.cfg.MaxLineItems)
		for j := 0; j < items; j++ {
			rec := OrderRecord{
				OrderID:       fmt.Sprintf("O%08d", i+1),
				MobileNumber:  mobile,
				SkuID:         fmt.Sprintf("SKU-%04d", 1+g.rng.Intn(500)),
				SkuCount:      fmt.Sprintf("%d", 1+g.rng.Intn(5)),
				TotalAmount:   total,
				OrderDateTime: date,
			}
			if g.hit(g.cfg.ZeroSkuRate) {
				rec.SkuCount = "0"
			}
			if g.hit(g.cfg.MissingElementRate) {
				rec.Omit = g.pick(elementNames)
			}
			records = append(records, rec)
		}
	}
	return records
}

func (g *Generator) orderMobile(pool []string) string {
	if len(pool) == 0 || g.hit(g.cfg.UnmatchedRate) {
		return fmt.Sprintf("8%09d", g.rng.Intn(1_000_000_000))
	}
	return pool[g.rng.Intn(len(pool))]
}

func (g *Generator) orderDate() string {
	if g.hit(g.cfg.BadDateRate) {
		return g.pick(badDates)
	}
	span := g.cfg.End.Sub(g.cfg.Start)
	at := g.cfg.Start.Add(time.Duration(g.rng.Int63n(int64(span))))
	return at.Format("2006-01-02 15:04:05")
}

func (g *Generator) amount() string {
	cents := 10_00 + g.rng.Intn(5000_00)
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func (g *Generator) pick(values []string) string {
	return values[g.rng.Intn(len(values))]
}

func (g *Generator) hit(rate float64) bool {
	return rate > 0 && g.rng.Float64() < rate
}

// WriteCustomersCSV writes the CRM extract with its header row.
func WriteCustomersCSV(w io.Writer, rows []CustomerRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"customer_id", "customer_name", "mobile_number", "region"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.CustomerID, row.CustomerName, row.MobileNumber, row.Region}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

var elementNames = []string{"order_id", "mobile_number", "sku_id", "sku_count", "total_amount", "order_date_time"}

// orderElement is the encoded form of one record. Nil fields are left out of
// the output entirely, mirroring feeds that drop elements rather than emit
// empty ones.
type orderElement struct {
	XMLName       xml.Name `xml:"order"`
	OrderID       *string  `xml:"order_id"`
	MobileNumber  *string  `xml:"mobile_number"`
	SkuID         *string  `xml:"sku_id"`
	SkuCount      *string  `xml:"sku_count"`
	TotalAmount   *string  `xml:"total_amount"`
	OrderDateTime *string  `xml:"order_date_time"`
}

func toElement(rec OrderRecord) orderElement {
	el := orderElement{}
	fields := []struct {
		name  string
		dst   **string
		value string
	}{
		{"order_id", &el.OrderID, rec.OrderID},
		{"mobile_number", &el.MobileNumber, rec.MobileNumber},
		{"sku_id", &el.SkuID, rec.SkuID},
		{"sku_count", &el.SkuCount, rec.SkuCount},
		{"total_amount", &el.TotalAmount, rec.TotalAmount},
		{"order_date_time", &el.OrderDateTime, rec.OrderDateTime},
	}
	for _, f := range fields {
		if f.name == rec.Omit {
			continue
		}
		v := f.value
		*f.dst = &v
	}
	return el
}

// WriteOrdersXML writes the order extract as an <orders> document, streaming
// one element at a time.
func WriteOrdersXML(w io.Writer, records []OrderRecord) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "orders"}}
	if err := enc.EncodeToken(root); err != nil {
		return fmt.Errorf("encode root: %w", err)
	}
	for _, rec := range records {
		if err := enc.Encode(toElement(rec)); err != nil {
			return fmt.Errorf("encode order %s: %w", rec.OrderID, err)
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return fmt.Errorf("encode root end: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
