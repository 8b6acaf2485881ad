package telemetry

import (
	"context"
	"time"

	registry "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/implementation/registry"
	logger "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Logger"
	vtlmodels "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models"
	api_models "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models/api"
	interfaces "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Repository/Interfaces"
)

// Service ingests wearable readings and serves the two derived views: the
// ordered single-day list and the trailing-seven-day heart-rate summary.
type Service struct {
	registry        *registry.Service
	measurementRepo interfaces.MeasurementRepository
	logger          *logger.Logger
}

// NewService creates a new telemetry service
func NewService(registry *registry.Service, measurementRepo interfaces.MeasurementRepository, logger *logger.Logger) *Service {
	return &Service{
		registry:        registry,
		measurementRepo: measurementRepo,
		logger:          logger,
	}
}

// Ingest appends one reading. The owning account is copied from the device's
// registration at write time; values are recorded as sent, with no range
// judgment. A zero `at` means the device sent no timestamp and the receipt
// time is used.
func (s *Service) Ingest(ctx context.Context, deviceID string, heartRate, spo2 float64, at time.Time) (*vtlmodels.Measurement, error) {
	device, err := s.registry.Resolve(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if at.IsZero() {
		at = time.Now().UTC()
	}

	measurement := vtlmodels.Measurement{
		DeviceID:  device.DeviceID,
		AccountID: device.AccountID,
		HeartRate: heartRate,
		SpO2:      spo2,
		Timestamp: at.UTC(),
	}

	stored, err := s.measurementRepo.Insert(ctx, measurement)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"device_id":  device.DeviceID,
		"account_id": device.AccountID,
	}).Debug("measurement ingested")

	return stored, nil
}

// Daily returns an account's measurements for one UTC calendar day, sorted
// ascending by timestamp. The date is "YYYY-MM-DD"; the window is half-open
// [00:00:00Z, next day 00:00:00Z).
func (s *Service) Daily(ctx context.Context, accountID, date string) ([]vtlmodels.Measurement, error) {
	if date == "" {
		return nil, api_models.Validation("a 'date' query parameter is required")
	}

	from, to, err := DayWindowUTC(date)
	if err != nil {
		return nil, api_models.Validation("date must be formatted YYYY-MM-DD")
	}

	return s.measurementRepo.ListByAccountBetween(ctx, accountID, from, to)
}

// Weekly computes avg/min/max heart rate over the trailing seven calendar
// days. The window opens at the start of day now-7d, not seven rolling
// 24-hour periods back from the current instant. An empty window yields the
// all-zero summary, not an error.
func (s *Service) Weekly(ctx context.Context, accountID string, now time.Time) (*vtlmodels.WeeklySummary, error) {
	summary, err := s.measurementRepo.SummarizeSince(ctx, accountID, TrailingWeekStart(now))
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return &vtlmodels.WeeklySummary{}, nil
	}
	return summary, nil
}

// DayWindowUTC parses a "YYYY-MM-DD" date and returns the half-open UTC
// window [start of that day, start of the next day).
func DayWindowUTC(date string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return day, day.AddDate(0, 0, 1), nil
}

// TrailingWeekStart returns 00:00:00 UTC seven calendar days before now's
// day. A call at 23:00 on day N still opens the window at the start of day
// N-7.
func TrailingWeekStart(now time.Time) time.Time {
	d := now.UTC()
	startOfDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return startOfDay.AddDate(0, 0, -7)
}
