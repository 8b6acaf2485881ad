package implementation

import (
	"context"
	"time"

	vtlmodels "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoMeasurementRepository struct {
	coll *mongo.Collection
}

func NewMongoMeasurementRepository(db *mongo.Database) *MongoMeasurementRepository {
	return &MongoMeasurementRepository{coll: db.Collection("measurements")}
}

// Insert appends one measurement
func (r *MongoMeasurementRepository) Insert(ctx context.Context, measurement vtlmodels.Measurement) (*vtlmodels.Measurement, error) {
	result, err := r.coll.InsertOne(ctx, measurement)
	if err != nil {
		return nil, err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		measurement.ID = oid
	}
	return &measurement, nil
}

func (r *MongoMeasurementRepository) ListByAccountBetween(ctx context.Context, accountID string, from, to time.Time) ([]vtlmodels.Measurement, error) {
	filter := bson.M{
		"account_id": accountID,
		"timestamp":  bson.M{"$gte": from, "$lt": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	measurements := make([]vtlmodels.Measurement, 0)
	if err := cursor.All(ctx, &measurements); err != nil {
		return nil, err
	}
	return measurements, nil
}

func (r *MongoMeasurementRepository) SummarizeSince(ctx context.Context, accountID string, from time.Time) (*vtlmodels.WeeklySummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"account_id": accountID,
			"timestamp":  bson.M{"$gte": from},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"avg_heart_rate": bson.M{"$avg": "$heart_rate"},
			"min_heart_rate": bson.M{"$min": "$heart_rate"},
			"max_heart_rate": bson.M{"$max": "$heart_rate"},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var summaries []vtlmodels.WeeklySummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, nil
	}
	return &summaries[0], nil
}

// DeleteByDevice removes every measurement recorded by a device
func (r *MongoMeasurementRepository) DeleteByDevice(ctx context.Context, deviceID string) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{"device_id": deviceID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
