package implementation

import (
	"context"
	"time"

	vtlmodels "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models"
	interfaces "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoDeviceRepository struct {
	coll *mongo.Collection
}

func NewMongoDeviceRepository(db *mongo.Database) *MongoDeviceRepository {
	return &MongoDeviceRepository{coll: db.Collection("devices")}
}

// Create device
func (r *MongoDeviceRepository) Create(ctx context.Context, device vtlmodels.Device) error {
	if device.CreatedAt.IsZero() {
		device.CreatedAt = time.Now().UTC()
	}

	_, err := r.coll.InsertOne(ctx, device)
	if err != nil {
		// The unique device_id index is the system-wide uniqueness
		// guarantee; a duplicate key here means the physical unit is
		// already claimed, possibly by another account.
		if mongo.IsDuplicateKeyError(err) {
			return &interfaces.DuplicateDeviceError{DeviceID: device.DeviceID}
		}
		return err
	}
	return nil
}

// Read devices
func (r *MongoDeviceRepository) GetByDeviceID(ctx context.Context, deviceID string) (*vtlmodels.Device, error) {
	var device vtlmodels.Device
	err := r.coll.FindOne(ctx, bson.M{"device_id": deviceID}).Decode(&device)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &device, nil
}

func (r *MongoDeviceRepository) ListByAccount(ctx context.Context, accountID string) ([]vtlmodels.Device, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"account_id": accountID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var devices []vtlmodels.Device
	if err := cursor.All(ctx, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// Update friendly name
func (r *MongoDeviceRepository) UpdateName(ctx context.Context, deviceID, name string) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"device_id": deviceID}, bson.M{"$set": bson.M{"name": name}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete device
func (r *MongoDeviceRepository) Delete(ctx context.Context, deviceID string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"device_id": deviceID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
