package model

// Severity ranks validation issues. Errors would make ingestion fail;
// warnings and infos are advisory.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ValidationIssue is a single finding from the pre-flight file check.
type ValidationIssue struct {
	Severity      Severity
	Category      string // duplicate | date | amount | missing | format
	Message       string
	TransactionID string
	RowNumber     int // 1-based data row, 0 when not row-specific
}

// ValidationReport summarizes a pre-flight check of a bank export.
type ValidationReport struct {
	Valid    bool
	Errors   int
	Warnings int
	Infos    int
	Issues   []ValidationIssue
}

// Recommendation renders a short human verdict for the report.
func (r ValidationReport) Recommendation() string {
	switch {
	case r.Errors > 0:
		return "fix errors before processing; ingestion will fail"
	case r.Warnings > 10:
		return "many warnings; review data quality before processing"
	case r.Warnings > 0:
		return "warnings found; consider reviewing before processing"
	default:
		return "validation passed"
	}
}
