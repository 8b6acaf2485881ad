package telemetry

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	registry "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/implementation/registry"
	logger "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Logger"
	vtlmodels "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models"
	api_models "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models/api"
	interfaces "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/mongo"
)

type memDeviceRepo struct {
	devices map[string]vtlmodels.Device
}

func (r *memDeviceRepo) Create(_ context.Context, device vtlmodels.Device) error {
	if _, ok := r.devices[device.DeviceID]; ok {
		return &interfaces.DuplicateDeviceError{DeviceID: device.DeviceID}
	}
	r.devices[device.DeviceID] = device
	return nil
}

func (r *memDeviceRepo) GetByDeviceID(_ context.Context, deviceID string) (*vtlmodels.Device, error) {
	device, ok := r.devices[deviceID]
	if !ok {
		return nil, nil
	}
	return &device, nil
}

func (r *memDeviceRepo) ListByAccount(_ context.Context, accountID string) ([]vtlmodels.Device, error) {
	var out []vtlmodels.Device
	for _, d := range r.devices {
		if d.AccountID == accountID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memDeviceRepo) UpdateName(_ context.Context, deviceID, name string) error {
	device, ok := r.devices[deviceID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	device.Name = name
	r.devices[deviceID] = device
	return nil
}

func (r *memDeviceRepo) Delete(_ context.Context, deviceID string) error {
	if _, ok := r.devices[deviceID]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(r.devices, deviceID)
	return nil
}

type memMeasurementRepo struct {
	measurements []vtlmodels.Measurement
}

func (r *memMeasurementRepo) Insert(_ context.Context, m vtlmodels.Measurement) (*vtlmodels.Measurement, error) {
	r.measurements = append(r.measurements, m)
	return &m, nil
}

func (r *memMeasurementRepo) ListByAccountBetween(_ context.Context, accountID string, from, to time.Time) ([]vtlmodels.Measurement, error) {
	out := make([]vtlmodels.Measurement, 0)
	for _, m := range r.measurements {
		if m.AccountID != accountID {
			continue
		}
		if m.Timestamp.Before(from) || !m.Timestamp.Before(to) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (r *memMeasurementRepo) SummarizeSince(_ context.Context, accountID string, from time.Time) (*vtlmodels.WeeklySummary, error) {
	var summary vtlmodels.WeeklySummary
	var sum float64
	count := 0
	for _, m := range r.measurements {
		if m.AccountID != accountID || m.Timestamp.Before(from) {
			continue
		}
		if count == 0 || m.HeartRate < summary.MinHeartRate {
			summary.MinHeartRate = m.HeartRate
		}
		if count == 0 || m.HeartRate > summary.MaxHeartRate {
			summary.MaxHeartRate = m.HeartRate
		}
		sum += m.HeartRate
		count++
	}
	if count == 0 {
		return nil, nil
	}
	summary.AvgHeartRate = sum / float64(count)
	return &summary, nil
}

func (r *memMeasurementRepo) DeleteByDevice(_ context.Context, deviceID string) (int64, error) {
	kept := r.measurements[:0]
	var deleted int64
	for _, m := range r.measurements {
		if m.DeviceID == deviceID {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	r.measurements = kept
	return deleted, nil
}

func newTelemetryService(t *testing.T) (*Service, *registry.Service, *memMeasurementRepo) {
	t.Helper()
	deviceRepo := &memDeviceRepo{devices: make(map[string]vtlmodels.Device)}
	measurementRepo := &memMeasurementRepo{}
	reg := registry.NewService(deviceRepo, measurementRepo, logger.GetGlobalLogger())
	return NewService(reg, measurementRepo, logger.GetGlobalLogger()), reg, measurementRepo
}

func mustKind(t *testing.T, err error, kind api_models.Kind) {
	t.Helper()
	var apiErr *api_models.Error
	require.True(t, errors.As(err, &apiErr), "expected an api error, got %v", err)
	require.Equal(t, kind, apiErr.Kind)
}

func TestIngestAttributesReadingToOwner(t *testing.T) {
	svc, reg, _ := newTelemetryService(t)

	_, err := reg.Register(context.Background(), "u1", "A1B2C3", "Wrist Monitor")
	require.NoError(t, err)

	at := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)
	stored, err := svc.Ingest(context.Background(), "A1B2C3", 72, 98, at)
	require.NoError(t, err)

	require.Equal(t, "u1", stored.AccountID)
	require.Equal(t, "A1B2C3", stored.DeviceID)
	require.Equal(t, 72.0, stored.HeartRate)
	require.Equal(t, 98.0, stored.SpO2)
	require.True(t, stored.Timestamp.Equal(at))
}

func TestIngestUnknownDeviceWritesNothing(t *testing.T) {
	svc, _, measurementRepo := newTelemetryService(t)

	_, err := svc.Ingest(context.Background(), "GHOST", 72, 98, time.Now().UTC())
	mustKind(t, err, api_models.KindNotFound)
	require.Empty(t, measurementRepo.measurements)
}

func TestIngestDefaultsMissingTimestampToNow(t *testing.T) {
	svc, reg, _ := newTelemetryService(t)

	_, err := reg.Register(context.Background(), "u1", "A1B2C3", "Wrist Monitor")
	require.NoError(t, err)

	before := time.Now().UTC()
	stored, err := svc.Ingest(context.Background(), "A1B2C3", 72, 98, time.Time{})
	require.NoError(t, err)
	after := time.Now().UTC()

	require.False(t, stored.Timestamp.Before(before))
	require.False(t, stored.Timestamp.After(after))
}

func TestIngestRecordsOutOfRangeValuesAsSent(t *testing.T) {
	svc, reg, _ := newTelemetryService(t)

	_, err := reg.Register(context.Background(), "u1", "A1B2C3", "Wrist Monitor")
	require.NoError(t, err)

	// Physiologically absurd values are stored as sent; sanity judgment is
	// a consumer concern.
	stored, err := svc.Ingest(context.Background(), "A1B2C3", 300, 150, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, 300.0, stored.HeartRate)
	require.Equal(t, 150.0, stored.SpO2)
}

func TestDailyWindowBoundaries(t *testing.T) {
	svc, reg, _ := newTelemetryService(t)

	_, err := reg.Register(context.Background(), "u1", "A1B2C3", "Wrist Monitor")
	require.NoError(t, err)

	times := []time.Time{
		time.Date(2024, 3, 9, 23, 59, 59, 0, time.UTC),  // previous day
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),    // inclusive lower edge
		time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC), // last instant inside
		time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),    // exclusive upper edge
	}
	for _, at := range times {
		_, err := svc.Ingest(context.Background(), "A1B2C3", 70, 98, at)
		require.NoError(t, err)
	}

	got, err := svc.Daily(context.Background(), "u1", "2024-03-10")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.True(t, got[0].Timestamp.Equal(times[1]))
	require.True(t, got[1].Timestamp.Equal(times[2]))
}

func TestDailySortsAscending(t *testing.T) {
	svc, reg, _ := newTelemetryService(t)

	_, err := reg.Register(context.Background(), "u1", "A1B2C3", "Wrist Monitor")
	require.NoError(t, err)

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, hour := range []int{18, 6, 12} {
		_, err := svc.Ingest(context.Background(), "A1B2C3", 70, 98, day.Add(time.Duration(hour)*time.Hour))
		require.NoError(t, err)
	}

	got, err := svc.Daily(context.Background(), "u1", "2024-03-10")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		require.True(t, got[i-1].Timestamp.Before(got[i].Timestamp), "results must be sorted ascending")
	}
}

func TestDailyValidatesDateParameter(t *testing.T) {
	svc, _, _ := newTelemetryService(t)

	_, err := svc.Daily(context.Background(), "u1", "")
	mustKind(t, err, api_models.KindValidation)

	_, err = svc.Daily(context.Background(), "u1", "10-03-2024")
	mustKind(t, err, api_models.KindValidation)
}

func TestDailyEmptyDayIsEmptyListNotError(t *testing.T) {
	svc, _, _ := newTelemetryService(t)

	got, err := svc.Daily(context.Background(), "u1", "2024-03-10")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestWeeklySummaryStats(t *testing.T) {
	svc, reg, _ := newTelemetryService(t)

	_, err := reg.Register(context.Background(), "u1", "A1B2C3", "Wrist Monitor")
	require.NoError(t, err)

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	readings := []struct {
		hr, spo2 float64
	}{
		{72, 98},
		{88, 96},
		{65, 99},
	}
	for i, r := range readings {
		_, err := svc.Ingest(context.Background(), "A1B2C3", r.hr, r.spo2, now.Add(-time.Duration(i)*24*time.Hour))
		require.NoError(t, err)
	}

	summary, err := svc.Weekly(context.Background(), "u1", now)
	require.NoError(t, err)
	require.InDelta(t, 75.0, summary.AvgHeartRate, 1e-9)
	require.Equal(t, 65.0, summary.MinHeartRate)
	require.Equal(t, 88.0, summary.MaxHeartRate)
}

func TestWeeklyExcludesReadingsBeforeWindow(t *testing.T) {
	svc, reg, _ := newTelemetryService(t)

	_, err := reg.Register(context.Background(), "u1", "A1B2C3", "Wrist Monitor")
	require.NoError(t, err)

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	// Last instant before the window opens on March 8 00:00.
	_, err = svc.Ingest(context.Background(), "A1B2C3", 200, 98, time.Date(2024, 3, 7, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	// First instant inside.
	_, err = svc.Ingest(context.Background(), "A1B2C3", 60, 98, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	summary, err := svc.Weekly(context.Background(), "u1", now)
	require.NoError(t, err)
	require.Equal(t, 60.0, summary.AvgHeartRate)
	require.Equal(t, 60.0, summary.MaxHeartRate)
}

func TestWeeklyEmptyWindowIsZeroSummary(t *testing.T) {
	svc, _, _ := newTelemetryService(t)

	summary, err := svc.Weekly(context.Background(), "u1", time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, &vtlmodels.WeeklySummary{}, summary)
}

func TestWeeklyIsScopedToAccount(t *testing.T) {
	svc, reg, _ := newTelemetryService(t)

	_, err := reg.Register(context.Background(), "u1", "A1B2C3", "Wrist Monitor")
	require.NoError(t, err)
	_, err = reg.Register(context.Background(), "u2", "D4E5F6", "Wrist Monitor")
	require.NoError(t, err)

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	_, err = svc.Ingest(context.Background(), "A1B2C3", 70, 98, now)
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), "D4E5F6", 120, 95, now)
	require.NoError(t, err)

	summary, err := svc.Weekly(context.Background(), "u1", now)
	require.NoError(t, err)
	require.Equal(t, 70.0, summary.AvgHeartRate)
	require.Equal(t, 70.0, summary.MaxHeartRate)
}
