package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	filecrud "github.com/Yashchauhan008/file-crud"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	indexUploadedAt = "uploaded_at_desc"
	indexBlobID     = "blob_id"
)

// DB is a MongoDB metadata backend.
type DB struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect opens a client to the MongoDB deployment at uri and selects the
// resource collection. The driver connects lazily; use Ping to check.
func Connect(ctx context.Context, uri, dbName, collection string) (*DB, error) {
	if dbName == "" {
		return nil, errors.New("connect mongo: database name is required")
	}
	if collection == "" {
		return nil, errors.New("connect mongo: collection name is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	return &DB{
		client:     client,
		collection: client.Database(dbName).Collection(collection),
	}, nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

// Migrate creates the indexes List and Reconcile rely on. Collections are
// created implicitly on first insert.
func (d *DB) Migrate(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "uploaded_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName(indexUploadedAt),
		},
		{
			Keys:    bson.D{{Key: "blob_id", Value: 1}},
			Options: options.Index().SetName(indexBlobID),
		},
	}

	if _, err := d.collection.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("migrate: create indexes: %w", err)
	}
	return nil
}

// Validate checks that Migrate has been run against the collection.
func (d *DB) Validate(ctx context.Context) error {
	cur, err := d.collection.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("validate: list indexes: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	found := map[string]bool{}
	for cur.Next(ctx) {
		var idx struct {
			Name string `bson:"name"`
		}
		if err := cur.Decode(&idx); err != nil {
			return fmt.Errorf("validate: decode index: %w", err)
		}
		found[idx.Name] = true
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	for _, name := range []string{indexUploadedAt, indexBlobID} {
		if !found[name] {
			return fmt.Errorf("validate: collection %s is missing index %s", d.collection.Name(), name)
		}
	}
	return nil
}

func (d *DB) GetRepo() filecrud.ResourceRepo {
	return &repo{collection: d.collection}
}

// Close disconnects the client, waiting at most ten seconds for in-flight
// operations.
func (d *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}

// Drop removes the resource collection and its indexes.
func (d *DB) Drop(ctx context.Context) error {
	return d.collection.Drop(ctx)
}
