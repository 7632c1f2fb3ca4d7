package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location is a venue a user saved as a favorite. Documents live in the
// `locations` collection and are never updated after insert.
type Location struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NameE     string             `bson:"namee" json:"namee"`
	NameC     string             `bson:"namec" json:"namec"`
	Latitude  *float64           `bson:"latitude" json:"latitude"`
	Longitude *float64           `bson:"longitude" json:"longitude"`
	CreatedBy uint64             `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
