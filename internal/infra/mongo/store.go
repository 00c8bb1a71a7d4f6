// Package mongo backs the docstore contract with MongoDB, the closest
// production analog to the document collections the engines expect.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizdeck/internal/docstore"
)

// Connect dials and pings a MongoDB deployment.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// Store is a MongoDB-backed docstore.Store. Generated ids are ObjectID hex;
// Set accepts caller-chosen string ids (auth uses its own uids).
type Store struct {
	db    *mongo.Database
	clock func() time.Time
}

func NewStore(db *mongo.Database) *Store {
	return &Store{db: db, clock: time.Now}
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	var data bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": storedID(id)}).Decode(&data)
	if err == mongo.ErrNoDocuments {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	delete(data, "_id")
	return docstore.Document{ID: id, Data: normalize(data)}, nil
}

func (s *Store) Query(ctx context.Context, collection string, constraints ...docstore.Constraint) ([]docstore.Document, error) {
	filter := bson.M{}
	findOpts := options.Find()
	var sortKeys bson.D

	for _, c := range constraints {
		switch c := c.(type) {
		case docstore.Where:
			op, err := mongoOp(c.Op)
			if err != nil {
				return nil, err
			}
			filter[c.Field] = bson.M{op: c.Value}
		case docstore.OrderBy:
			dir := 1
			if c.Desc {
				dir = -1
			}
			sortKeys = append(sortKeys, bson.E{Key: c.Field, Value: dir})
		case docstore.Limit:
			findOpts.SetLimit(int64(c.N))
		}
	}
	if len(sortKeys) > 0 {
		findOpts.SetSort(sortKeys)
	}

	cur, err := s.db.Collection(collection).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var docs []docstore.Document
	for cur.Next(ctx) {
		var data bson.M
		if err := cur.Decode(&data); err != nil {
			return nil, err
		}
		id := documentID(data["_id"])
		delete(data, "_id")
		docs = append(docs, docstore.Document{ID: id, Data: normalize(data)})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return docs, nil
}

func (s *Store) Add(ctx context.Context, collection string, data map[string]any) (docstore.Document, error) {
	clean := docstore.Sanitize(data, true, s.clock())
	res, err := s.db.Collection(collection).InsertOne(ctx, bson.M(clean))
	if err != nil {
		return docstore.Document{}, fmt.Errorf("add to %s: %w", collection, err)
	}
	return docstore.Document{ID: documentID(res.InsertedID), Data: clean}, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, data map[string]any) (docstore.Document, error) {
	clean := docstore.Sanitize(data, true, s.clock())
	_, err := s.db.Collection(collection).ReplaceOne(
		ctx,
		bson.M{"_id": storedID(id)},
		bson.M(clean),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return docstore.Document{ID: id, Data: clean}, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	clean := docstore.Sanitize(partial, false, s.clock())
	res, err := s.db.Collection(collection).UpdateOne(
		ctx,
		bson.M{"_id": storedID(id)},
		bson.M{"$set": bson.M(clean)},
	)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) (bool, error) {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": storedID(id)})
	if err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return res.DeletedCount > 0, nil
}

func mongoOp(op string) (string, error) {
	switch op {
	case docstore.OpEqual, "":
		return "$eq", nil
	case docstore.OpNotEqual:
		return "$ne", nil
	case docstore.OpLess:
		return "$lt", nil
	case docstore.OpLessOrEqual:
		return "$lte", nil
	case docstore.OpGreater:
		return "$gt", nil
	case docstore.OpGreaterEqual:
		return "$gte", nil
	default:
		return "", fmt.Errorf("unsupported operator %q", op)
	}
}

// storedID maps external ids back to their stored form: ObjectID hex for
// generated ids, the raw string for caller-chosen ones.
func storedID(id string) any {
	if objID, err := primitive.ObjectIDFromHex(id); err == nil {
		return objID
	}
	return id
}

func documentID(raw any) string {
	switch v := raw.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// normalize rewrites BSON-specific values into the plain Go forms the
// docstore codec understands.
func normalize(data bson.M) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch v := v.(type) {
	case primitive.DateTime:
		return v.Time()
	case primitive.A:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = normalizeValue(item)
		}
		return items
	case bson.M:
		return normalize(v)
	default:
		return v
	}
}
