package agreementRepo

import (
	"context"
	"fmt"
	"time"

	"carhire/database"
	"carhire/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoAgreementRepo is the MongoDB-backed agreement repository.
type MongoAgreementRepo struct {
	coll *mongo.Collection
}

// NewMongoAgreementRepo constructs the repository over the global client.
func NewMongoAgreementRepo() *MongoAgreementRepo {
	return &MongoAgreementRepo{
		coll: database.MongoClient.Database("carhire").Collection("agreements"),
	}
}

// GetByRef retrieves an agreement by its reference.
func (repo *MongoAgreementRepo) GetByRef(ref string) (*models.Agreement, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var agr models.Agreement
	err := repo.coll.FindOne(ctx, bson.M{"ref": ref}).Decode(&agr)
	if err != nil {
		return nil, fmt.Errorf("agreement %s not found: %w", ref, err)
	}
	return &agr, nil
}

// ListByAgent retrieves all agreements owned by an agent.
func (repo *MongoAgreementRepo) ListByAgent(agentID string) ([]models.Agreement, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, bson.M{"agentId": agentID})
	if err != nil {
		return nil, fmt.Errorf("error listing agreements for agent %s: %w", agentID, err)
	}
	defer cursor.Close(ctx)

	var agreements []models.Agreement
	if err := cursor.All(ctx, &agreements); err != nil {
		return nil, fmt.Errorf("error decoding agreements: %w", err)
	}
	return agreements, nil
}
