package vtlmodels

import "time"

// Device represents a registered wearable unit. DeviceID is the physical
// identifier printed on the unit and is unique across the whole system, not
// per account. The owning account is fixed at registration.
type Device struct {
	DeviceID  string    `bson:"device_id" json:"device_id"`
	AccountID string    `bson:"account_id" json:"account_id"`
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
