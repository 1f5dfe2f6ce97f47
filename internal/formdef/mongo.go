package formdef

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores form definitions in a MongoDB collection. IDs are
// allocated from a counters document so they stay compatible with the
// numeric ids of the SQL backend.
type MongoRepo struct {
	Client   *mongo.Client
	Database string
}

func (r *MongoRepo) forms() *mongo.Collection {
	return r.Client.Database(r.Database).Collection("forms")
}

func (r *MongoRepo) counters() *mongo.Collection {
	return r.Client.Database(r.Database).Collection("counters")
}

type formDoc struct {
	ID            int64     `bson:"_id"`
	Title         string    `bson:"title"`
	Method        string    `bson:"method"`
	Action        string    `bson:"action"`
	Fields        string    `bson:"fields"`
	Configuration string    `bson:"configuration,omitempty"`
	IsActive      bool      `bson:"is_active"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func (d formDoc) toDefinition() (FormDefinition, error) {
	def := FormDefinition{
		ID:        d.ID,
		Title:     d.Title,
		Method:    d.Method,
		Action:    d.Action,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Fields != "" {
		if err := json.Unmarshal([]byte(d.Fields), &def.Fields); err != nil {
			return def, err
		}
	}
	if d.Configuration != "" {
		def.Configuration = json.RawMessage(d.Configuration)
	}
	return def, nil
}

func (r *MongoRepo) nextID(ctx context.Context) (int64, error) {
	var out struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters().FindOneAndUpdate(ctx,
		bson.M{"_id": "forms"},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return 0, err
	}
	return out.Seq, nil
}

func (r *MongoRepo) Create(ctx context.Context, def FormDefinition) (FormDefinition, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return FormDefinition{}, err
	}
	fields, err := json.Marshal(def.Fields)
	if err != nil {
		return FormDefinition{}, err
	}
	now := time.Now()
	doc := formDoc{
		ID:        id,
		Title:     def.Title,
		Method:    def.Method,
		Action:    def.Action,
		Fields:    string(fields),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.forms().InsertOne(ctx, doc); err != nil {
		return FormDefinition{}, err
	}
	return r.Get(ctx, id)
}

func (r *MongoRepo) Get(ctx context.Context, id int64) (FormDefinition, error) {
	var doc formDoc
	err := r.forms().FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return FormDefinition{}, ErrNotFound
	}
	if err != nil {
		return FormDefinition{}, err
	}
	return doc.toDefinition()
}

func (r *MongoRepo) List(ctx context.Context) ([]FormDefinition, error) {
	cur, err := r.forms().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var defs []FormDefinition
	for cur.Next(ctx) {
		var doc formDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		def, err := doc.toDefinition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, cur.Err()
}

func (r *MongoRepo) Update(ctx context.Context, id int64, def FormDefinition) (FormDefinition, error) {
	fields, err := json.Marshal(def.Fields)
	if err != nil {
		return FormDefinition{}, err
	}
	res, err := r.forms().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"title":      def.Title,
		"method":     def.Method,
		"action":     def.Action,
		"fields":     string(fields),
		"updated_at": time.Now(),
	}})
	if err != nil {
		return FormDefinition{}, err
	}
	if res.MatchedCount == 0 {
		return FormDefinition{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *MongoRepo) UpdateConfiguration(ctx context.Context, id int64, cfg json.RawMessage) error {
	res, err := r.forms().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"configuration": string(cfg),
		"updated_at":    time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.forms().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) CountForms(ctx context.Context) (int, error) {
	n, err := r.forms().CountDocuments(ctx, bson.M{})
	return int(n), err
}
