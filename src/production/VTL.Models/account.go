package vtlmodels

import "time"

// Account represents an end user of the vitals platform
type Account struct {
	AccountID string            `bson:"account_id" json:"account_id"`
	Email     string            `bson:"email" json:"email"`
	Password  string            `bson:"password" json:"-"`
	Name      string            `bson:"name" json:"name"`
	Config    MeasurementConfig `bson:"config" json:"config"`
	CreatedAt time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time         `bson:"updated_at" json:"updated_at"`
}

// MeasurementConfig is the per-account polling schedule. It is stored with
// the account and surfaced to the wearable scheduler; the API itself does
// not enforce it.
type MeasurementConfig struct {
	FrequencyMinutes int    `bson:"frequency_minutes" json:"frequency"`
	StartTime        string `bson:"start_time" json:"startTime"` // "HH:MM"
	EndTime          string `bson:"end_time" json:"endTime"`     // "HH:MM"
}

// DefaultMeasurementConfig returns the schedule applied to new accounts.
func DefaultMeasurementConfig() MeasurementConfig {
	return MeasurementConfig{
		FrequencyMinutes: 30,
		StartTime:        "08:00",
		EndTime:          "22:00",
	}
}
