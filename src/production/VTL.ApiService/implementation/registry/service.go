package registry

import (
	"context"
	"errors"
	"strings"
	"time"

	logger "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Logger"
	vtlmodels "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models"
	api_models "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models/api"
	interfaces "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Repository/Interfaces"
)

// Service owns the device registry: who owns which physical unit, and the
// lifecycle operations an account may perform on its own devices.
type Service struct {
	deviceRepo      interfaces.DeviceRepository
	measurementRepo interfaces.MeasurementRepository
	logger          *logger.Logger
}

// NewService creates a new registry service
func NewService(deviceRepo interfaces.DeviceRepository, measurementRepo interfaces.MeasurementRepository, logger *logger.Logger) *Service {
	return &Service{
		deviceRepo:      deviceRepo,
		measurementRepo: measurementRepo,
		logger:          logger,
	}
}

// Register claims a physical device for an account. DeviceID uniqueness is
// system-wide and case-sensitive; the friendly name only has to be unique
// within the account, case-insensitively.
func (s *Service) Register(ctx context.Context, accountID, deviceID, name string) (*vtlmodels.Device, error) {
	if deviceID == "" || name == "" {
		return nil, api_models.Validation("deviceId and name are required")
	}

	if err := s.checkNameAvailable(ctx, accountID, name, ""); err != nil {
		return nil, err
	}

	device := vtlmodels.Device{
		DeviceID:  deviceID,
		AccountID: accountID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.deviceRepo.Create(ctx, device); err != nil {
		var dup *interfaces.DuplicateDeviceError
		if errors.As(err, &dup) {
			return nil, api_models.Conflict("device ID already registered")
		}
		return nil, err
	}

	return &device, nil
}

// Resolve maps a physical device identifier to its registration. Used by
// ingestion to attribute an incoming reading to an owner.
func (s *Service) Resolve(ctx context.Context, deviceID string) (*vtlmodels.Device, error) {
	device, err := s.deviceRepo.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, api_models.NotFound("device not registered")
	}
	return device, nil
}

// ListForAccount returns the devices owned by an account
func (s *Service) ListForAccount(ctx context.Context, accountID string) ([]vtlmodels.Device, error) {
	devices, err := s.deviceRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if devices == nil {
		devices = []vtlmodels.Device{}
	}
	return devices, nil
}

// Rename changes a device's friendly name. Ownership is re-checked against
// the requesting account, never inferred from the device identifier.
func (s *Service) Rename(ctx context.Context, accountID, deviceID, name string) (*vtlmodels.Device, error) {
	if name == "" {
		return nil, api_models.Validation("name is required")
	}

	device, err := s.requireOwned(ctx, accountID, deviceID)
	if err != nil {
		return nil, err
	}

	if err := s.checkNameAvailable(ctx, accountID, name, deviceID); err != nil {
		return nil, err
	}

	if err := s.deviceRepo.UpdateName(ctx, deviceID, name); err != nil {
		return nil, err
	}

	device.Name = name
	return device, nil
}

// Remove deletes a device and every measurement it ever recorded.
// Measurements go first: a concurrent ingestion that loses the race then
// fails to resolve the device instead of writing an orphan.
func (s *Service) Remove(ctx context.Context, accountID, deviceID string) error {
	if _, err := s.requireOwned(ctx, accountID, deviceID); err != nil {
		return err
	}

	deleted, err := s.measurementRepo.DeleteByDevice(ctx, deviceID)
	if err != nil {
		return err
	}

	if err := s.deviceRepo.Delete(ctx, deviceID); err != nil {
		// Measurements are already gone; losing the device record too is
		// the one acceptable partial state, but it still needs eyes on it.
		s.logger.WithError(err).WithField("device_id", deviceID).Error("device delete failed after measurement cascade")
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"device_id":            deviceID,
		"account_id":           accountID,
		"measurements_deleted": deleted,
	}).Info("device removed")

	return nil
}

func (s *Service) requireOwned(ctx context.Context, accountID, deviceID string) (*vtlmodels.Device, error) {
	device, err := s.deviceRepo.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, api_models.NotFound("device not found")
	}
	if device.AccountID != accountID {
		return nil, api_models.Forbidden("not authorized for this device")
	}
	return device, nil
}

func (s *Service) checkNameAvailable(ctx context.Context, accountID, name, excludeDeviceID string) error {
	devices, err := s.deviceRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	for _, d := range devices {
		if d.DeviceID == excludeDeviceID {
			continue
		}
		if strings.EqualFold(d.Name, name) {
			return api_models.Conflict("a device with this name already exists")
		}
	}
	return nil
}
