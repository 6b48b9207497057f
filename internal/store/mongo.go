package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/mo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo is the MongoDB backend. One client is shared by every request; the
// driver pools connections internally.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to uri and pings the primary before returning.
func OpenMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	if dbName == "" {
		return nil, errors.New("mongo database name is empty")
	}

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	// Validate connectivity immediately.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &Mongo{client: client, db: client.Database(dbName)}, nil
}

func (m *Mongo) Collection(name string) Collection {
	return &mongoCollection{c: m.db.Collection(name)}
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

type mongoCollection struct {
	c *mongo.Collection
}

func (mc *mongoCollection) Find(ctx context.Context, filter Filter) ([]Document, error) {
	f, err := toBSONFilter(filter)
	if err != nil {
		return nil, err
	}

	cur, err := mc.c.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", mc.c.Name(), err)
	}

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("read %s: %w", mc.c.Name(), err)
	}

	docs := make([]Document, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, fromBSON(m))
	}
	return docs, nil
}

func (mc *mongoCollection) FindOne(ctx context.Context, filter Filter) (mo.Option[Document], error) {
	f, err := toBSONFilter(filter)
	if err != nil {
		return mo.None[Document](), err
	}

	var raw bson.M
	err = mc.c.FindOne(ctx, f).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return mo.None[Document](), nil
	}
	if err != nil {
		return mo.None[Document](), fmt.Errorf("find one %s: %w", mc.c.Name(), err)
	}
	return mo.Some(fromBSON(raw)), nil
}

func (mc *mongoCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	res, err := mc.c.InsertOne(ctx, bson.M(withoutID(doc)))
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", mc.c.Name(), err)
	}
	return insertedID(res.InsertedID)
}

func (mc *mongoCollection) InsertMany(ctx context.Context, docs []Document) ([]string, error) {
	if len(docs) == 0 {
		return []string{}, nil
	}

	in := make([]interface{}, 0, len(docs))
	for _, d := range docs {
		in = append(in, bson.M(withoutID(d)))
	}

	res, err := mc.c.InsertMany(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("insert many %s: %w", mc.c.Name(), err)
	}

	ids := make([]string, 0, len(res.InsertedIDs))
	for _, raw := range res.InsertedIDs {
		id, err := insertedID(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (mc *mongoCollection) UpdateByID(ctx context.Context, id string, set Document) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	_, err = mc.c.UpdateOne(ctx, bson.M{IDField: oid}, bson.M{"$set": bson.M(withoutID(set))})
	if err != nil {
		return fmt.Errorf("update %s %s: %w", mc.c.Name(), id, err)
	}
	return nil
}

func (mc *mongoCollection) DeleteByID(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	if _, err := mc.c.DeleteOne(ctx, bson.M{IDField: oid}); err != nil {
		return fmt.Errorf("delete %s %s: %w", mc.c.Name(), id, err)
	}
	return nil
}

func (mc *mongoCollection) DeleteAll(ctx context.Context) error {
	if _, err := mc.c.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear %s: %w", mc.c.Name(), err)
	}
	return nil
}

func toBSONFilter(filter Filter) (bson.M, error) {
	id, hasID, fields, err := splitFilter(filter)
	if err != nil {
		return nil, err
	}
	out := bson.M{}
	for k, v := range fields {
		out[k] = v
	}
	if hasID {
		oid, _ := primitive.ObjectIDFromHex(id)
		out[IDField] = oid
	}
	return out, nil
}

func insertedID(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case primitive.ObjectID:
		return v.Hex(), nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("unexpected inserted id type %T", raw)
	}
}

// fromBSON converts driver types into plain Go values so documents encode to
// the same JSON on every backend.
func fromBSON(m bson.M) Document {
	doc := make(Document, len(m))
	for k, v := range m {
		doc[k] = normaliseBSON(v)
	}
	return doc
}

func normaliseBSON(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case bson.M:
		return fromBSON(t)
	case bson.D:
		doc := make(Document, len(t))
		for _, e := range t {
			doc[e.Key] = normaliseBSON(e.Value)
		}
		return doc
	case bson.A:
		out := make([]interface{}, 0, len(t))
		for _, e := range t {
			out = append(out, normaliseBSON(e))
		}
		return out
	default:
		return v
	}
}
