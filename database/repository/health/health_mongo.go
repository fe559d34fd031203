package healthRepo

import (
	"context"
	"fmt"
	"time"

	"carhire/database"
	"carhire/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoHealthRepo is the MongoDB-backed source-health repository.
type MongoHealthRepo struct {
	coll *mongo.Collection
}

func NewMongoHealthRepo() *MongoHealthRepo {
	return &MongoHealthRepo{
		coll: database.MongoClient.Database("carhire").Collection("source_health"),
	}
}

// Upsert stores the snapshot for its source id.
func (repo *MongoHealthRepo) Upsert(sh *models.SourceHealth) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{"sourceId": sh.SourceID}
	update := bson.M{"$set": sh}
	opts := options.Update().SetUpsert(true)
	_, err := repo.coll.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("error upserting health for source %s: %w", sh.SourceID, err)
	}
	return nil
}

// GetBySourceID retrieves the stored snapshot for a source.
func (repo *MongoHealthRepo) GetBySourceID(sourceID string) (*models.SourceHealth, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var sh models.SourceHealth
	err := repo.coll.FindOne(ctx, bson.M{"sourceId": sourceID}).Decode(&sh)
	if err != nil {
		return nil, fmt.Errorf("health for source %s not found: %w", sourceID, err)
	}
	return &sh, nil
}
