package export

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/salesintel/pipeline/internal/application/cleaning"
	"github.com/salesintel/pipeline/internal/domain/analytics"
)

// KPIDocument is the report envelope written as JSON: the full KPI report
// plus enough run metadata to trace the artifact back to its inputs.
type KPIDocument struct {
	RunID              string                 `json:"run_id"`
	GeneratedAt        time.Time              `json:"generated_at"`
	CustomerStats      cleaning.CustomerStats `json:"customer_stats"`
	OrderStats         cleaning.OrderStats    `json:"order_stats"`
	UnmatchedLineItems int                    `json:"unmatched_line_items"`
	Report             *analytics.Report      `json:"report"`
}

// WriteKPIReport writes the KPI document as indented JSON. Decimal values
// serialize as strings, so no precision is lost to float rounding.
func (e *Exporter) WriteKPIReport(doc KPIDocument) (string, error) {
	name := e.filename("kpi_report", "json")
	path, f, err := e.createFile(name)
	if err != nil {
		return "", err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		f.Close()
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	e.logger.Info("artifact written", zap.String("path", path))

	return path, nil
}
