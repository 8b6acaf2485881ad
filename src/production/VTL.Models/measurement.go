package vtlmodels

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Measurement is one heart-rate/SpO2 reading taken by a device. AccountID is
// the owner of the device at write time; a future ownership transfer must not
// rewrite it.
type Measurement struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	DeviceID  string             `bson:"device_id" json:"device_id"`
	AccountID string             `bson:"account_id" json:"account_id"`
	HeartRate float64            `bson:"heart_rate" json:"heartRate"`
	SpO2      float64            `bson:"spo2" json:"spo2"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// WeeklySummary holds heart-rate statistics over the trailing seven calendar
// days. All zeros means no data in the window.
type WeeklySummary struct {
	AvgHeartRate float64 `bson:"avg_heart_rate" json:"avgHeartRate"`
	MinHeartRate float64 `bson:"min_heart_rate" json:"minHeartRate"`
	MaxHeartRate float64 `bson:"max_heart_rate" json:"maxHeartRate"`
}
