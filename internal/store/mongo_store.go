package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erenulutas0/inventory-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements InventoryStore on a mongo collection
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to mongo and ensures the unique product_id index
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if e2 := client.Ping(ctx, nil); e2 != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", e2)
	}

	collection := client.Database(database).Collection("inventories")

	// Unique index backs the one-record-per-product invariant
	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "product_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product_id index: %w", err)
	}

	return &MongoStore{client: client, collection: collection}, nil
}

func (s *MongoStore) Find(ctx context.Context, id string) (*domain.InventoryRecord, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindByProductID(ctx context.Context, productID string) (*domain.InventoryRecord, error) {
	return s.findOne(ctx, bson.M{"product_id": productID})
}

func (s *MongoStore) FindAll(ctx context.Context) ([]domain.InventoryRecord, error) {
	return s.findMany(ctx, bson.M{})
}

func (s *MongoStore) FindByStatus(ctx context.Context, status domain.InventoryStatus) ([]domain.InventoryRecord, error) {
	return s.findMany(ctx, bson.M{"status": status})
}

func (s *MongoStore) FindByLocation(ctx context.Context, location domain.Location) ([]domain.InventoryRecord, error) {
	return s.findMany(ctx, bson.M{"location": location})
}

func (s *MongoStore) ExistsByID(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, bson.M{"_id": id})
}

func (s *MongoStore) ExistsByProductID(ctx context.Context, productID string) (bool, error) {
	return s.exists(ctx, bson.M{"product_id": productID})
}

func (s *MongoStore) Save(ctx context.Context, record *domain.InventoryRecord) (*domain.InventoryRecord, error) {
	now := time.Now()
	saved := *record
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now

	filter := bson.M{"_id": saved.ID}
	update := bson.M{"$set": saved}
	opts := options.Update().SetUpsert(true)

	_, err := s.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateProduct
		}
		return nil, fmt.Errorf("failed to save inventory record: %w", err)
	}
	return &saved, nil
}

func (s *MongoStore) DeleteByID(ctx context.Context, id string) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete inventory record: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*domain.InventoryRecord, error) {
	var record domain.InventoryRecord
	err := s.collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get inventory record: %w", err)
	}
	return &record, nil
}

func (s *MongoStore) findMany(ctx context.Context, filter bson.M) ([]domain.InventoryRecord, error) {
	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory records: %w", err)
	}
	defer cursor.Close(ctx)

	result := make([]domain.InventoryRecord, 0)
	if e2 := cursor.All(ctx, &result); e2 != nil {
		return nil, fmt.Errorf("failed to decode inventory records: %w", e2)
	}
	return result, nil
}

func (s *MongoStore) exists(ctx context.Context, filter bson.M) (bool, error) {
	count, err := s.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check inventory record existence: %w", err)
	}
	return count > 0, nil
}
