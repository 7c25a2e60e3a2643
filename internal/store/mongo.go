// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// mongo.go implements the Store over a MongoDB collection. Nodes are stored
// as plain documents keyed by their string _id, so the query predicates map
// one-to-one onto bson filters.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"courseforge/internal/models"
)

const mongoCollection = "content_nodes"

// Mongo is a Store backed by a MongoDB collection.
type Mongo struct {
	coll *mongo.Collection
}

// ConnectMongo dials MongoDB, verifies the connection with a ping, and
// returns a store over the content_nodes collection of the given database.
func ConnectMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Mongo{coll: client.Database(dbName).Collection(mongoCollection)}, nil
}

// NewMongo wraps an existing collection. Used by integration tests.
func NewMongo(coll *mongo.Collection) *Mongo {
	return &Mongo{coll: coll}
}

func (s *Mongo) Find(ctx context.Context, q Query) ([]*models.ContentNode, error) {
	cursor, err := s.coll.Find(ctx, bsonFilter(q),
		options.Find().SetSort(bson.D{{Key: models.FieldSortOrder, Value: 1}, {Key: models.FieldCreatedAt, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find content nodes: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*models.ContentNode
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode content node: %w", err)
		}
		n, err := nodeFromBSON(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, cursor.Err()
}

func (s *Mongo) Get(ctx context.Context, id uuid.UUID) (*models.ContentNode, error) {
	var doc bson.M
	err := s.coll.FindOne(ctx, bson.M{models.FieldID: id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get content node: %w", err)
	}
	return nodeFromBSON(doc)
}

func (s *Mongo) Insert(ctx context.Context, n *models.ContentNode) (*models.ContentNode, error) {
	stored := n.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, bson.M(stored.Map())); err != nil {
		return nil, fmt.Errorf("insert content node: %w", err)
	}
	return stored, nil
}

func (s *Mongo) Update(ctx context.Context, id uuid.UUID, delta map[string]any) (*models.ContentNode, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	merged, err := existing.ApplyDelta(delta)
	if err != nil {
		return nil, fmt.Errorf("update content node: merge: %w", err)
	}
	merged.ID = id
	merged.UpdatedAt = time.Now().UTC()

	_, err = s.coll.ReplaceOne(ctx, bson.M{models.FieldID: id.String()}, bson.M(merged.Map()))
	if err != nil {
		return nil, fmt.Errorf("update content node: %w", err)
	}
	return merged, nil
}

func (s *Mongo) Delete(ctx context.Context, q Query) error {
	if q.Empty() {
		return ErrEmptyQuery
	}
	if _, err := s.coll.DeleteMany(ctx, bsonFilter(q)); err != nil {
		return fmt.Errorf("delete content nodes: %w", err)
	}
	return nil
}

// bsonFilter renders a Query as a bson filter document.
func bsonFilter(q Query) bson.M {
	filter := bson.M{}
	for k, v := range q.Eq {
		filter[k] = normalizeBSON(v)
	}
	for k, v := range q.Ne {
		filter[k] = bson.M{"$ne": normalizeBSON(v)}
	}
	for k, vs := range q.In {
		vals := make(bson.A, len(vs))
		for i, v := range vs {
			vals[i] = normalizeBSON(v)
		}
		filter[k] = bson.M{"$in": vals}
	}
	if len(q.Or) > 0 {
		or := make(bson.A, len(q.Or))
		for i, sub := range q.Or {
			or[i] = bsonFilter(sub)
		}
		filter["$or"] = or
	}
	return filter
}

// normalizeBSON keeps numbers numeric (sort order must sort numerically in
// Mongo) and folds ids and typed strings into plain strings.
func normalizeBSON(v any) any {
	switch t := v.(type) {
	case int, int32, int64, float64, bool:
		return t
	}
	return normalize(v)
}

// nodeFromBSON converts a decoded bson document into a node, stripping the
// driver-specific container types so extension fields stay plain maps and
// slices.
func nodeFromBSON(doc bson.M) (*models.ContentNode, error) {
	m := make(map[string]any, len(doc))
	for k, v := range doc {
		m[k] = debson(v)
	}
	return models.FromMap(m)
}

func debson(v any) any {
	switch t := v.(type) {
	case bson.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = debson(e)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = debson(e.Value)
		}
		return m
	case bson.A:
		a := make([]any, len(t))
		for i, e := range t {
			a[i] = debson(e)
		}
		return a
	case bson.DateTime:
		return t.Time().UTC().Format(time.RFC3339Nano)
	case int32:
		return int(t)
	case int64:
		return int(t)
	}
	return v
}
