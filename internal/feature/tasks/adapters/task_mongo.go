package adapters

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/feature/tasks/usecase"
)

// TasksCollection is the collection that stores task documents.
const TasksCollection = "tasks"

type taskDocument struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	UserID      bson.ObjectID `bson:"userId"`
	Title       string        `bson:"title"`
	Description string        `bson:"description"`
	Completed   bool          `bson:"completed"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
}

func (d *taskDocument) toEntity() entity.Task {
	return entity.Task{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type taskMongo struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ usecase.TaskRepository = (*taskMongo)(nil)

// NewTaskMongo は指定されたデータベースのtasksコレクションを使うリポジトリを生成します。
func NewTaskMongo(db *mongo.Database) *taskMongo {
	return &taskMongo{coll: db.Collection(TasksCollection), now: time.Now}
}

// EnsureTaskIndexes は所有者ごとの新しい順一覧に使う複合インデックスを作成します。
func EnsureTaskIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(TasksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("userId_createdAt"),
	})
	return err
}

// ownerFilter builds the (id, owner) filter. ok is false when either ID is not an ObjectID.
func ownerFilter(userID, id string) (bson.D, bool) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, false
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.D{{Key: "_id", Value: oid}, {Key: "userId", Value: uid}}, true
}

// searchFilter builds the list filter. The term is quoted so it matches literally.
func searchFilter(uid bson.ObjectID, search string) bson.D {
	filter := bson.D{{Key: "userId", Value: uid}}
	if search != "" {
		filter = append(filter, bson.E{Key: "title", Value: bson.Regex{
			Pattern: regexp.QuoteMeta(search),
			Options: "i",
		}})
	}
	return filter
}

func (r *taskMongo) List(ctx context.Context, userID, search string, limit int) ([]entity.Task, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return []entity.Task{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.coll.Find(ctx, searchFilter(uid, search), opts)
	if err != nil {
		return nil, err
	}
	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.Task, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toEntity())
	}
	return out, nil
}

func (r *taskMongo) Create(ctx context.Context, task *entity.Task) error {
	uid, err := bson.ObjectIDFromHex(task.UserID)
	if err != nil {
		return errors.New("task owner is not a valid ObjectID")
	}
	now := r.now().UTC().Truncate(time.Millisecond)
	created := task.CreatedAt
	if created.IsZero() {
		created = now
	}
	doc := taskDocument{
		ID:          bson.NewObjectID(),
		UserID:      uid,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   created,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	*task = doc.toEntity()
	return nil
}

func (r *taskMongo) FindByID(ctx context.Context, userID, id string) (*entity.Task, error) {
	filter, ok := ownerFilter(userID, id)
	if !ok {
		return nil, usecase.ErrTaskNotFound
	}
	var doc taskDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrTaskNotFound
		}
		return nil, err
	}
	t := doc.toEntity()
	return &t, nil
}

// Update は単一ドキュメントのfindOneAndUpdateで原子的に更新します。
func (r *taskMongo) Update(ctx context.Context, userID, id string, patch usecase.TaskPatch) (*entity.Task, error) {
	filter, ok := ownerFilter(userID, id)
	if !ok {
		return nil, usecase.ErrTaskNotFound
	}
	set := bson.D{{Key: "updatedAt", Value: r.now().UTC().Truncate(time.Millisecond)}}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	if patch.Completed != nil {
		set = append(set, bson.E{Key: "completed", Value: *patch.Completed})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc taskDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrTaskNotFound
		}
		return nil, err
	}
	t := doc.toEntity()
	return &t, nil
}

func (r *taskMongo) Delete(ctx context.Context, userID, id string) error {
	filter, ok := ownerFilter(userID, id)
	if !ok {
		return usecase.ErrTaskNotFound
	}
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return usecase.ErrTaskNotFound
	}
	return nil
}
