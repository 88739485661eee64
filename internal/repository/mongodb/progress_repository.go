package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/anatomyflash/internal/logger"
	"github.com/vytor/anatomyflash/internal/models"
	"github.com/vytor/anatomyflash/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const progressCollection = "progress"

// progressDocument is one user's record, keyed by user id.
type progressDocument struct {
	UserID         string                 `bson:"_id"`
	QuizHistory    []attemptDocument      `bson:"quiz_history"`
	ViewedSections map[string][]time.Time `bson:"viewed_sections"`
	MasteryLevels  map[string]int         `bson:"mastery_levels"`
}

type attemptDocument struct {
	Timestamp     time.Time `bson:"timestamp"`
	Category      string    `bson:"category"`
	Difficulty    string    `bson:"difficulty"`
	Score         int       `bson:"score"`
	Total         int       `bson:"total"`
	QuestionTypes []string  `bson:"question_types"`
}

func toAttemptDocument(a models.QuizAttempt) attemptDocument {
	types := make([]string, 0, len(a.QuestionTypes))
	for _, t := range a.QuestionTypes {
		types = append(types, string(t))
	}
	return attemptDocument{
		Timestamp:     a.Timestamp.UTC(),
		Category:      string(a.Category),
		Difficulty:    string(a.Difficulty),
		Score:         a.Score,
		Total:         a.Total,
		QuestionTypes: types,
	}
}

func (d attemptDocument) model() models.QuizAttempt {
	types := make([]models.QuestionType, 0, len(d.QuestionTypes))
	for _, t := range d.QuestionTypes {
		types = append(types, models.QuestionType(t))
	}
	return models.QuizAttempt{
		Timestamp:     d.Timestamp,
		Category:      models.Topic(d.Category),
		Difficulty:    models.Difficulty(d.Difficulty),
		Score:         d.Score,
		Total:         d.Total,
		QuestionTypes: types,
	}
}

func (d progressDocument) model() *models.UserProgress {
	p := &models.UserProgress{
		UserID:         d.UserID,
		QuizHistory:    make([]models.QuizAttempt, 0, len(d.QuizHistory)),
		ViewedSections: make(map[models.Topic][]time.Time, len(d.ViewedSections)),
		MasteryLevels:  make(map[models.Topic]models.MasteryLevel, len(d.MasteryLevels)),
	}
	for _, a := range d.QuizHistory {
		p.QuizHistory = append(p.QuizHistory, a.model())
	}
	for topic, views := range d.ViewedSections {
		p.ViewedSections[models.Topic(topic)] = views
	}
	for topic, level := range d.MasteryLevels {
		p.MasteryLevels[models.Topic(topic)] = models.MasteryLevel(level)
	}
	p.FillTopics()
	return p
}

type progressRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewProgressRepository creates a ProgressRepository storing one document
// per user in the progress collection of database.
func NewProgressRepository(client *mongo.Client, database string) repository.ProgressRepository {
	return &progressRepository{
		client:     client,
		collection: client.Database(database).Collection(progressCollection),
	}
}

func (r *progressRepository) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_mongo")
	log.Debug("getting progress: user_id=%s", userID)

	var doc progressDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get progress: %v", err)
		return nil, err
	}
	return doc.model(), nil
}

func (r *progressRepository) Create(ctx context.Context, p *models.UserProgress) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_mongo")
	log.Debug("creating progress: user_id=%s", p.UserID)

	history := make([]attemptDocument, 0, len(p.QuizHistory))
	for _, a := range p.QuizHistory {
		history = append(history, toAttemptDocument(a))
	}
	views := make(map[string][]time.Time, len(models.Topics))
	levels := make(map[string]int, len(models.Topics))
	for _, t := range models.Topics {
		v := p.ViewedSections[t]
		if v == nil {
			v = []time.Time{}
		}
		views[string(t)] = v
		levels[string(t)] = int(p.MasteryLevels[t])
	}

	// $setOnInsert leaves an existing document untouched.
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": p.UserID},
		bson.M{"$setOnInsert": bson.M{
			"quiz_history":    history,
			"viewed_sections": views,
			"mastery_levels":  levels,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Error("failed to create progress: %v", err)
		return false, err
	}
	return res.UpsertedCount == 1, nil
}

func (r *progressRepository) AppendQuizAttempt(ctx context.Context, userID string, attempt models.QuizAttempt, level models.MasteryLevel) error {
	log := logger.FromContext(ctx).WithPrefix("progress_mongo")
	log.Debug("appending quiz attempt: user_id=%s, category=%s, level=%d", userID, attempt.Category, level)

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$push": bson.M{"quiz_history": toAttemptDocument(attempt)},
			"$set":  bson.M{"mastery_levels." + string(attempt.Category): int(level)},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Error("failed to append quiz attempt: %v", err)
	}
	return err
}

func (r *progressRepository) AppendSectionView(ctx context.Context, userID string, topic models.Topic, at time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("progress_mongo")
	log.Debug("appending section view: user_id=%s, topic=%s", userID, topic)

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{"viewed_sections." + string(topic): at.UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Error("failed to append section view: %v", err)
	}
	return err
}

func (r *progressRepository) History(ctx context.Context, filter models.HistoryFilter) ([]models.QuizAttempt, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_mongo")
	log.Debug("listing history with filter: user_id=%s, category=%s, difficulty=%s",
		filter.UserID, filter.Category, filter.Difficulty)

	match := bson.D{}
	if filter.Category != "" {
		match = append(match, bson.E{Key: "quiz_history.category", Value: string(filter.Category)})
	}
	if filter.Difficulty != "" {
		match = append(match, bson.E{Key: "quiz_history.difficulty", Value: string(filter.Difficulty)})
	}
	limit, offset := filter.Page()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": filter.UserID}}},
		{{Key: "$unwind", Value: bson.M{"path": "$quiz_history", "includeArrayIndex": "position"}}},
	}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.M{"position": -1}}},
		bson.D{{Key: "$skip", Value: int64(offset)}},
		bson.D{{Key: "$limit", Value: int64(limit)}},
		bson.D{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$quiz_history"}}},
	)

	cur, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		log.Error("failed to aggregate history: %v", err)
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []attemptDocument
	if err := cur.All(ctx, &docs); err != nil {
		log.Error("failed to decode history: %v", err)
		return nil, err
	}
	out := make([]models.QuizAttempt, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *progressRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}
