package docstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const mongoDatabase = "mentorq"

type mongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func newMongoStore(uri string) (*mongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	log.Println("Connected to MongoDB")
	return &mongoStore{client: client, db: client.Database(mongoDatabase)}, nil
}

func (s *mongoStore) Add(ctx context.Context, collection string, doc any) (string, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (s *mongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		// A malformed identifier cannot name an existing document.
		return nil, ErrNotFound
	}

	var raw bson.M
	err = s.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return normalizeID(raw), nil
}

func (s *mongoStore) QueryByField(ctx context.Context, collection, field string, value any) ([]Document, error) {
	return s.find(ctx, collection, bson.M{field: value})
}

func (s *mongoStore) ListAll(ctx context.Context, collection string) ([]Document, error) {
	return s.find(ctx, collection, bson.M{})
}

func (s *mongoStore) find(ctx context.Context, collection string, filter bson.M) ([]Document, error) {
	cur, err := s.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []Document
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, err
		}
		docs = append(docs, normalizeID(raw))
	}
	return docs, cur.Err()
}

func (s *mongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// normalizeID rewrites the driver's _id into the store-wide "id"
// string key.
func normalizeID(raw bson.M) Document {
	doc := Document(raw)
	if oid, ok := doc["_id"].(bson.ObjectID); ok {
		doc["id"] = oid.Hex()
		delete(doc, "_id")
	}
	return doc
}
