// Package mongostore backs the store.DocumentStore contract with MongoDB.
// Each logical collection maps to a Mongo collection of the same name within
// one database; merge writes use $set upserts so partial updates keep the
// untouched keys.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vstopensource/formfill/pkg/store"
)

// Store implements store.DocumentStore on a Mongo database.
type Store struct {
	db *mongo.Database
}

// New wraps an existing database handle.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Connect dials the given URI and returns a store over the named database
// along with a disconnect func.
func Connect(ctx context.Context, uri, database string) (*Store, func(context.Context) error, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongostore: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("mongostore: ping: %w", err)
	}
	return New(client.Database(database)), client.Disconnect, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Document, error) {
	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongostore: get %s/%s: %w", collection, id, err)
	}
	delete(doc, "_id")
	return store.Document(doc), nil
}

func (s *Store) Set(ctx context.Context, collection, id string, doc store.Document) error {
	payload := bson.M{"_id": id}
	for key, value := range doc {
		payload[key] = value
	}
	_, err := s.db.Collection(collection).ReplaceOne(
		ctx,
		bson.M{"_id": id},
		payload,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongostore: set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Merge(ctx context.Context, collection, id string, doc store.Document) error {
	if len(doc) == 0 {
		return nil
	}
	_, err := s.db.Collection(collection).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M(doc)},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongostore: merge %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, q store.Query) ([]store.Entry, error) {
	filter := bson.M{}
	for key, value := range q.Filters {
		filter[key] = value
	}

	opts := options.Find()
	if q.OrderBy != "" {
		direction := 1
		if q.Desc {
			direction = -1
		}
		opts.SetSort(bson.D{{Key: q.OrderBy, Value: direction}})
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var out []store.Entry
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongostore: decode %s: %w", collection, err)
		}
		id, _ := doc["_id"].(string)
		delete(doc, "_id")
		out = append(out, store.Entry{ID: id, Data: store.Document(doc)})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongostore: query %s: %w", collection, err)
	}
	return out, nil
}
