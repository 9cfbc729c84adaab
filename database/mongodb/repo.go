// Package mongodb implements filecrud.ResourceRepo using MongoDB.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	filecrud "github.com/Yashchauhan008/file-crud"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// document is the stored shape of a resource.
type document struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Topic       string             `bson:"topic"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	FileName    string             `bson:"file_name"`
	FileURL     string             `bson:"file_url"`
	BlobID      string             `bson:"blob_id"`
	FileType    string             `bson:"file_type"`
	Size        int64              `bson:"size"`
	UploadedAt  time.Time          `bson:"uploaded_at"`
}

func fromResource(r filecrud.Resource) document {
	return document{
		Topic:       r.Topic,
		Title:       r.Title,
		Description: r.Description,
		FileName:    r.FileName,
		FileURL:     r.FileURL,
		BlobID:      r.BlobID,
		FileType:    r.FileType,
		Size:        r.Size,
		UploadedAt:  r.UploadedAt.UTC(),
	}
}

func (d document) toResource() filecrud.Resource {
	return filecrud.Resource{
		ID:          d.ID.Hex(),
		Topic:       d.Topic,
		Title:       d.Title,
		Description: d.Description,
		FileName:    d.FileName,
		FileURL:     d.FileURL,
		BlobID:      d.BlobID,
		FileType:    d.FileType,
		Size:        d.Size,
		UploadedAt:  d.UploadedAt.UTC(),
	}
}

type repo struct {
	collection *mongo.Collection
}

func (r *repo) Insert(ctx context.Context, res filecrud.Resource) (filecrud.Resource, error) {
	doc := fromResource(res)
	doc.ID = primitive.NewObjectID()
	// BSON datetimes carry milliseconds.
	doc.UploadedAt = doc.UploadedAt.Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return filecrud.Resource{}, fmt.Errorf("insert: %w", err)
	}

	return doc.toResource(), nil
}

func (r *repo) Get(ctx context.Context, id string) (filecrud.Resource, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return filecrud.Resource{}, filecrud.ErrNotFound
	}

	var doc document
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return filecrud.Resource{}, filecrud.ErrNotFound
		}
		return filecrud.Resource{}, fmt.Errorf("get: %w", err)
	}

	return doc.toResource(), nil
}

func (r *repo) List(ctx context.Context) ([]filecrud.Resource, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}, {Key: "_id", Value: -1}})

	cur, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	resources := []filecrud.Resource{}
	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("list: decode: %w", err)
		}
		resources = append(resources, doc.toResource())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	return resources, nil
}

func (r *repo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return filecrud.ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return filecrud.ErrNotFound
	}
	return nil
}
