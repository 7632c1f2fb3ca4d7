package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/venuehub/venuehub/internal/model"
)

// LocationsCollection is the MongoDB collection holding favorites.
const LocationsCollection = "locations"

// LocationRepo stores favorite locations in MongoDB.
type LocationRepo struct{ Coll *mongo.Collection }

func NewLocationRepo(db *mongo.Database) *LocationRepo {
	return &LocationRepo{Coll: db.Collection(LocationsCollection)}
}

// InsertMany stores every location in one round trip. Duplicates are allowed.
// Ordered inserts stop at the first failure, which is returned.
func (r *LocationRepo) InsertMany(ctx context.Context, locs []model.Location) (int, error) {
	if len(locs) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, len(locs))
	for i := range locs {
		docs[i] = locs[i]
	}
	res, err := r.Coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert locations: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// List returns up to limit locations, newest first.
func (r *LocationRepo) List(ctx context.Context, limit int64) ([]model.Location, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cur, err := r.Coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find locations: %w", err)
	}
	defer cur.Close(ctx)

	out := []model.Location{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}
	return out, nil
}
