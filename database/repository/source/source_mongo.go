package sourceRepo

import (
	"context"
	"fmt"
	"time"

	"carhire/database"
	"carhire/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoSourceRepo is the MongoDB-backed source repository.
type MongoSourceRepo struct {
	coll *mongo.Collection
}

func NewMongoSourceRepo() *MongoSourceRepo {
	return &MongoSourceRepo{
		coll: database.MongoClient.Database("carhire").Collection("sources"),
	}
}

// GetByID retrieves a source configuration by id.
func (repo *MongoSourceRepo) GetByID(id string) (*models.Source, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var src models.Source
	err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&src)
	if err != nil {
		return nil, fmt.Errorf("source %s not found: %w", id, err)
	}
	return &src, nil
}

// List retrieves all configured sources.
func (repo *MongoSourceRepo) List() ([]models.Source, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error listing sources: %w", err)
	}
	defer cursor.Close(ctx)

	var sources []models.Source
	if err := cursor.All(ctx, &sources); err != nil {
		return nil, fmt.Errorf("error decoding sources: %w", err)
	}
	return sources, nil
}
