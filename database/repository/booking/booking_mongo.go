package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"carhire/database"
	"carhire/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingRepo is the MongoDB-backed booking repository.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

func NewMongoBookingRepo() *MongoBookingRepo {
	return &MongoBookingRepo{
		coll: database.MongoClient.Database("carhire").Collection("bookings"),
	}
}

// Create inserts a new booking document.
func (repo *MongoBookingRepo) Create(rec *models.BookingRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := repo.coll.InsertOne(ctx, rec)
	if err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// GetByRef retrieves a booking by its supplier booking reference.
func (repo *MongoBookingRepo) GetByRef(supplierBookingRef string) (*models.BookingRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var rec models.BookingRecord
	err := repo.coll.FindOne(ctx, bson.M{"supplierBookingRef": supplierBookingRef}).Decode(&rec)
	if err != nil {
		return nil, fmt.Errorf("booking %s not found: %w", supplierBookingRef, err)
	}
	return &rec, nil
}

// GetByIdempotencyKey retrieves the booking created under (agent, key).
func (repo *MongoBookingRepo) GetByIdempotencyKey(agentID, key string) (*models.BookingRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var rec models.BookingRecord
	err := repo.coll.FindOne(ctx, bson.M{"agentId": agentID, "idempotencyKey": key}).Decode(&rec)
	if err != nil {
		return nil, fmt.Errorf("no booking for idempotency key: %w", err)
	}
	return &rec, nil
}

// Update replaces the stored record for its supplier booking reference.
func (repo *MongoBookingRepo) Update(rec *models.BookingRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{"supplierBookingRef": rec.SupplierBookingRef}
	update := bson.M{"$set": rec}
	_, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating booking %s: %w", rec.SupplierBookingRef, err)
	}
	return nil
}
