package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo implements Tables with one MongoDB collection per table. The row id
// is a UUID string stored in _id and exposed as "id".
type Mongo struct {
	db  *mongo.Database
	now func() time.Time
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db, now: time.Now}
}

// EnsureIndexes creates the lookup indexes used by per-user and per-date queries.
func (m *Mongo) EnsureIndexes(ctx context.Context, tables map[string][]string) error {
	for table, fields := range tables {
		for _, f := range fields {
			idx := mongo.IndexModel{Keys: bson.D{{Key: f, Value: 1}}}
			if _, err := m.db.Collection(table).Indexes().CreateOne(ctx, idx); err != nil {
				return fmt.Errorf("index %s.%s: %w", table, f, err)
			}
		}
	}
	return nil
}

func (m *Mongo) Select(ctx context.Context, table string, q Query) ([]Record, error) {
	opts := options.Find()
	if q.Order != nil {
		dir := 1
		if q.Order.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: mongoField(q.Order.Field), Value: dir}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	cur, err := m.db.Collection(table).Find(ctx, mongoFilter(q.Filter), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", table, err)
	}
	defer cur.Close(ctx)
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode %s: %w", table, err)
	}
	out := make([]Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDoc(d))
	}
	return out, nil
}

func (m *Mongo) Insert(ctx context.Context, table string, rec Record) (Record, error) {
	doc := bson.M{}
	for k, v := range rec {
		if k == FieldID {
			continue
		}
		doc[k] = v
	}
	id := uuid.NewString()
	doc["_id"] = id
	doc[FieldCreatedAt] = Timestamp(m.now())
	if _, err := m.db.Collection(table).InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("mongo insert %s: %w", table, err)
	}
	return fromDoc(doc), nil
}

func (m *Mongo) Update(ctx context.Context, table string, f Filter, patch Record) (int64, error) {
	set := bson.M{}
	for k, v := range patch {
		if k == FieldID || k == FieldCreatedAt {
			continue
		}
		set[k] = v
	}
	if len(set) == 0 {
		n, err := m.db.Collection(table).CountDocuments(ctx, mongoFilter(f))
		if err != nil {
			return 0, fmt.Errorf("mongo count %s: %w", table, err)
		}
		return n, nil
	}
	res, err := m.db.Collection(table).UpdateMany(ctx, mongoFilter(f), bson.M{"$set": set})
	if err != nil {
		return 0, fmt.Errorf("mongo update %s: %w", table, err)
	}
	return res.MatchedCount, nil
}

func (m *Mongo) Delete(ctx context.Context, table string, f Filter) error {
	if _, err := m.db.Collection(table).DeleteMany(ctx, mongoFilter(f)); err != nil {
		return fmt.Errorf("mongo delete %s: %w", table, err)
	}
	return nil
}

func mongoField(f string) string {
	if f == FieldID {
		return "_id"
	}
	return f
}

func mongoFilter(f Filter) bson.M {
	out := bson.M{}
	for _, c := range f {
		v := c.Value
		if s, ok := toString(v); ok {
			v = s
		}
		out[mongoField(c.Field)] = v
	}
	return out
}

func fromDoc(d bson.M) Record {
	r := make(Record, len(d))
	for k, v := range d {
		if k == "_id" {
			r[FieldID] = fmt.Sprint(v)
			continue
		}
		r[k] = v
	}
	return r
}
