// Package records owns the persisted financial record model and its storage.
package records

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is a financial record persisted from the ETL pipeline.
// SourceID is the business key from the source document (INV-YYYY-NNN) and is
// unique; ID is the storage-assigned surrogate.
type Record struct {
	ID          int64
	SourceID    string
	Date        time.Time
	Category    string
	Amount      decimal.Decimal
	Status      string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
