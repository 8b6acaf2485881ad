package interfaces

import (
	"context"

	vtlmodels "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models"
)

// DuplicateDeviceError is returned by Create when the device_id is already
// registered, to any account. Enforced by the unique index.
type DuplicateDeviceError struct {
	DeviceID string
}

func (e *DuplicateDeviceError) Error() string {
	return "device already registered: " + e.DeviceID
}

type DeviceRepository interface {
	// Create device. Fails with *DuplicateDeviceError on a device_id clash.
	Create(ctx context.Context, device vtlmodels.Device) error

	// Read devices. A missing device is (nil, nil), not an error.
	GetByDeviceID(ctx context.Context, deviceID string) (*vtlmodels.Device, error)
	ListByAccount(ctx context.Context, accountID string) ([]vtlmodels.Device, error)

	// Update friendly name
	UpdateName(ctx context.Context, deviceID, name string) error

	// Delete device record. Measurements are the caller's concern; they
	// must be removed before the device record goes away.
	Delete(ctx context.Context, deviceID string) error
}
