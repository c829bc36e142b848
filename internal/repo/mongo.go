package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BuzzLyutic/task-crud-api/internal/model"
)

const (
	tasksCollection = "tasks"

	codeNamespaceExists          = 48
	codeDocumentValidationFailed = 121
)

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d taskDocument) toModel() model.Task {
	return model.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      model.Status(d.Status),
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

// MongoTaskRepo stores tasks as documents in a MongoDB collection.
type MongoTaskRepo struct {
	db   *mongo.Database
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoTaskRepo(db *mongo.Database) *MongoTaskRepo {
	return &MongoTaskRepo{
		db:   db,
		coll: db.Collection(tasksCollection),
		now:  time.Now,
	}
}

// taskValidator mirrors checkDocument so writes that bypass this package are
// held to the same schema.
func taskValidator() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "status", "createdAt"},
			"properties": bson.M{
				"title":       bson.M{"bsonType": "string", "minLength": 1},
				"description": bson.M{"bsonType": "string"},
				"status": bson.M{"enum": bson.A{
					string(model.StatusPending),
					string(model.StatusInProgress),
					string(model.StatusCompleted),
				}},
				"createdAt": bson.M{"bsonType": "date"},
			},
		},
	}
}

// EnsureSchema creates the tasks collection with its validator and the
// indexes used by List. It is safe to run repeatedly.
func (r *MongoTaskRepo) EnsureSchema(ctx context.Context) error {
	err := r.db.CreateCollection(ctx, tasksCollection, options.CreateCollection().SetValidator(taskValidator()))
	if err != nil {
		var se mongo.ServerError
		if !errors.As(err, &se) || !se.HasErrorCode(codeNamespaceExists) {
			return fmt.Errorf("create collection: %w", err)
		}
		cmd := bson.D{{Key: "collMod", Value: tasksCollection}, {Key: "validator", Value: taskValidator()}}
		if err := r.db.RunCommand(ctx, cmd).Err(); err != nil {
			return fmt.Errorf("update collection validator: %w", err)
		}
	}

	_, err = r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (r *MongoTaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	t = applyDefaults(t)
	if err := checkDocument(t); err != nil {
		return model.Task{}, err
	}

	doc := taskDocument{
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		// BSON dates carry millisecond precision.
		CreatedAt: r.now().UTC().Truncate(time.Millisecond),
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return model.Task{}, mapMongoError(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toModel(), nil
}

// buildMongoFilter translates a TaskFilter into a query document. The keyword
// is used as a case-insensitive regular expression, not a literal.
func buildMongoFilter(filter model.TaskFilter) bson.M {
	query := bson.M{}
	if filter.Keyword != "" {
		re := primitive.Regex{Pattern: filter.Keyword, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
		}
	}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}
	return query
}

func buildMongoFindOptions(filter model.TaskFilter) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(filter.Skip())).
		SetLimit(int64(filter.Limit))
}

func (r *MongoTaskRepo) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	cur, err := r.coll.Find(ctx, buildMongoFilter(filter), buildMongoFindOptions(filter))
	if err != nil {
		return nil, err
	}

	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toModel())
	}
	return tasks, nil
}

// buildMongoUpdate returns the $set document for the fields a patch sets.
func buildMongoUpdate(patch model.TaskPatch) bson.M {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	return bson.M{"$set": set}
}

func (r *MongoTaskRepo) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	if err := checkPatch(patch); err != nil {
		return model.Task{}, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Task{}, ErrorNotFound
	}

	var doc taskDocument
	if patch.Empty() {
		// An empty $set is rejected by the server.
		err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, buildMongoUpdate(patch), opts).Decode(&doc)
	}
	if err != nil {
		return model.Task{}, mapMongoError(err)
	}
	return doc.toModel(), nil
}

func (r *MongoTaskRepo) Delete(ctx context.Context, id string) (model.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Task{}, ErrorNotFound
	}

	var doc taskDocument
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return model.Task{}, mapMongoError(err)
	}
	return doc.toModel(), nil
}

func mapMongoError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrorNotFound
	}
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(codeDocumentValidationFailed) {
		return &SchemaError{Message: "Document failed validation"}
	}
	return err
}
