package interfaces

import (
	"context"
	"time"

	vtlmodels "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models"
)

type MeasurementRepository interface {
	// Insert appends one measurement. There is no update path.
	Insert(ctx context.Context, measurement vtlmodels.Measurement) (*vtlmodels.Measurement, error)

	// ListByAccountBetween returns the account's measurements with
	// from <= timestamp < to, sorted ascending by timestamp.
	ListByAccountBetween(ctx context.Context, accountID string, from, to time.Time) ([]vtlmodels.Measurement, error)

	// SummarizeSince computes avg/min/max heart rate over the account's
	// measurements with timestamp >= from. (nil, nil) when the window is
	// empty.
	SummarizeSince(ctx context.Context, accountID string, from time.Time) (*vtlmodels.WeeklySummary, error)

	// DeleteByDevice removes every measurement recorded by a device.
	// Returns the number of documents removed.
	DeleteByDevice(ctx context.Context, deviceID string) (int64, error)
}
