package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// MongoTaskStore implements store.TaskStore on the tasks collection.
type MongoTaskStore struct {
	db     *mongo.Database
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongoTaskStore creates a task store backed by db. If logger is nil the
// default logger is used.
func NewMongoTaskStore(db *mongo.Database, logger *slog.Logger) *MongoTaskStore {
	if db == nil {
		panic("db cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &MongoTaskStore{
		db:     db,
		coll:   db.Collection(TasksCollection),
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var (
	_ store.TaskStore = (*MongoTaskStore)(nil)
	_ store.Pinger    = (*MongoTaskStore)(nil)
)

// Create implements store.TaskStore.Create
func (s *MongoTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.coll.InsertOne(ctx, newTaskDocument(task)); err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return store.NewStoreError("task", "create", "failed to insert task", MapError(err))
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()))
	return nil
}

// listResult is the single document produced by the listing $facet stage.
type listResult struct {
	Total []struct {
		N int64 `bson:"n"`
	} `bson:"total"`
	Items []taskDocument `bson:"items"`
}

// List implements store.TaskStore.List. The count and the page come from a
// single aggregation so both observe the same snapshot of the collection.
func (s *MongoTaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter domain.TaskFilter,
	page domain.Page,
) ([]*domain.Task, int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: buildTaskFilter(ownerID, filter)}},
		{{Key: "$facet", Value: bson.M{
			"total": bson.A{bson.M{"$count": "n"}},
			"items": bson.A{
				bson.M{"$sort": bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
				bson.M{"$skip": int64(page.Offset())},
				bson.M{"$limit": int64(page.Limit)},
			},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, 0, store.NewStoreError("task", "list", "failed to aggregate tasks", MapError(err))
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []listResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, store.NewStoreError("task", "list", "failed to decode tasks", MapError(err))
	}

	tasks := make([]*domain.Task, 0)
	if len(results) == 0 {
		return tasks, 0, nil
	}

	var total int64
	if len(results[0].Total) > 0 {
		total = results[0].Total[0].N
	}
	for _, doc := range results[0].Items {
		task, err := doc.toDomain()
		if err != nil {
			return nil, 0, store.NewStoreError("task", "list", "failed to decode task", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, total, nil
}

// Get implements store.TaskStore.Get
func (s *MongoTaskStore) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var doc taskDocument
	if err := s.coll.FindOne(ctx, ownedBy(ownerID, taskID)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, store.NewStoreError("task", "get", "failed to query task", MapError(err))
	}
	return doc.toDomain()
}

// Update implements store.TaskStore.Update
func (s *MongoTaskStore) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	patch domain.TaskPatch,
	updatedAt time.Time,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": buildTaskPatch(patch, updatedAt)}

	var doc taskDocument
	if err := s.coll.FindOneAndUpdate(ctx, ownedBy(ownerID, taskID), update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, store.NewStoreError("task", "update", "failed to update task", MapError(err))
	}

	log.Debug("task updated", slog.String("task_id", taskID.String()))
	return doc.toDomain()
}

// Delete implements store.TaskStore.Delete
func (s *MongoTaskStore) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.coll.DeleteOne(ctx, ownedBy(ownerID, taskID))
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return store.NewStoreError("task", "delete", "failed to delete task", MapError(err))
	}
	if result.DeletedCount == 0 {
		return store.ErrTaskNotFound
	}

	log.Debug("task deleted", slog.String("task_id", taskID.String()))
	return nil
}

type statsGroup struct {
	ID struct {
		Status   string `bson:"status"`
		Priority string `bson:"priority"`
	} `bson:"_id"`
	Count int64 `bson:"count"`
}

// Stats implements store.TaskStore.Stats
func (s *MongoTaskStore) Stats(ctx context.Context, ownerID uuid.UUID) (domain.TaskStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": ownerID.String()}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"status": "$status", "priority": "$priority"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		log.Error("failed to aggregate task stats",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return domain.TaskStats{}, store.NewStoreError("task", "stats", "failed to aggregate stats", MapError(err))
	}
	defer func() { _ = cursor.Close(ctx) }()

	var groups []statsGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return domain.TaskStats{}, store.NewStoreError("task", "stats", "failed to decode stats", MapError(err))
	}

	stats := domain.NewTaskStats()
	for _, g := range groups {
		stats.Add(domain.TaskStatus(g.ID.Status), domain.TaskPriority(g.ID.Priority), g.Count)
	}
	return stats, nil
}

// Ping implements store.Pinger
func (s *MongoTaskStore) Ping(ctx context.Context) error {
	return Ping(ctx, s.db)
}

func ownedBy(ownerID, taskID uuid.UUID) bson.M {
	return bson.M{"_id": taskID.String(), "user_id": ownerID.String()}
}

func buildTaskFilter(ownerID uuid.UUID, filter domain.TaskFilter) bson.M {
	query := bson.M{"user_id": ownerID.String()}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}
	if filter.Priority != nil {
		query["priority"] = string(*filter.Priority)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	return query
}

func buildTaskPatch(patch domain.TaskPatch, updatedAt time.Time) bson.M {
	set := bson.M{"updated_at": domain.Stamp(updatedAt)}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.Priority != nil {
		set["priority"] = string(*patch.Priority)
	}
	switch {
	case patch.ClearDueDate:
		set["due_date"] = nil
	case patch.DueDate != nil:
		set["due_date"] = patch.DueDate.UTC()
	}
	return set
}
