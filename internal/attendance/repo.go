package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mark is one presence record for a student on a calendar day.
type Mark struct {
	ID     string    `bson:"_id" json:"_id"`
	RollNo string    `bson:"rollNo" json:"rollNo"`
	Status string    `bson:"status" json:"status"`
	Date   time.Time `bson:"date" json:"date"`
}

// SummaryRow is one aggregate row of the per-student mark count.
type SummaryRow struct {
	RollNo      string `bson:"_id" json:"_id"`
	DaysPresent int    `bson:"daysPresent" json:"daysPresent"`
}

// DuplicateGroup collects the ids of all marks sharing a (rollNo, day) key.
// IDs are in the order the grouping returned them, not sorted by timestamp.
type DuplicateGroup struct {
	RollNo string
	Day    int
	Year   int
	IDs    []string
}

// Ledger is the persistence contract for attendance marks.
type Ledger interface {
	FindInWindow(ctx context.Context, rollNo string, start, end time.Time) (*Mark, error)
	Insert(ctx context.Context, m Mark) (Mark, error)
	ListAll(ctx context.Context) ([]Mark, error)
	ListByRoll(ctx context.Context, rollNo string) ([]Mark, error)
	ListInWindow(ctx context.Context, start, end time.Time) ([]Mark, error)
	Summary(ctx context.Context) ([]SummaryRow, error)
	DuplicateGroups(ctx context.Context) ([]DuplicateGroup, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

// DayWindow returns the [00:00:00.000, 23:59:59.999] interval of t's calendar
// day in t's location.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
	return start, end
}

// Repository persists marks in the "attendance" collection.
type Repository struct {
	col *mongo.Collection
}

var _ Ledger = (*Repository)(nil)

// NewRepository creates a repo over the given database.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{col: db.Collection("attendance")}
}

// FindInWindow returns one mark for rollNo dated within [start, end], or nil.
func (r *Repository) FindInWindow(ctx context.Context, rollNo string, start, end time.Time) (*Mark, error) {
	filter := bson.M{
		"rollNo": rollNo,
		"date":   bson.M{"$gte": start, "$lte": end},
	}
	var m Mark
	if err := r.col.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// Insert writes a new mark, defaulting status and timestamp.
func (r *Repository) Insert(ctx context.Context, m Mark) (Mark, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = "Present"
	}
	if m.Date.IsZero() {
		m.Date = time.Now()
	}
	if _, err := r.col.InsertOne(ctx, m); err != nil {
		return Mark{}, err
	}
	return m, nil
}

// ListAll returns every mark, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]Mark, error) {
	return r.find(ctx, bson.M{})
}

// ListByRoll returns all marks for one roll number, newest first.
func (r *Repository) ListByRoll(ctx context.Context, rollNo string) ([]Mark, error) {
	return r.find(ctx, bson.M{"rollNo": rollNo})
}

// ListInWindow returns all marks dated within [start, end], newest first.
func (r *Repository) ListInWindow(ctx context.Context, start, end time.Time) ([]Mark, error) {
	return r.find(ctx, bson.M{"date": bson.M{"$gte": start, "$lte": end}})
}

func (r *Repository) find(ctx context.Context, filter bson.M) ([]Mark, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var marks []Mark
	if err := cursor.All(ctx, &marks); err != nil {
		return nil, err
	}
	return marks, nil
}

// Summary groups marks by roll number and counts them, ascending by roll number.
// Counts are raw; run duplicate cleanup first for an accurate days-present figure.
func (r *Repository) Summary(ctx context.Context) ([]SummaryRow, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$rollNo"},
			{Key: "daysPresent", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []SummaryRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DuplicateGroups finds (rollNo, day-of-year, year) groups with more than one
// mark. Day arithmetic runs in UTC, which is what $dayOfYear and $year do
// without a timezone argument.
func (r *Repository) DuplicateGroups(ctx context.Context) ([]DuplicateGroup, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "rollNo", Value: "$rollNo"},
				{Key: "day", Value: bson.D{{Key: "$dayOfYear", Value: "$date"}}},
				{Key: "year", Value: bson.D{{Key: "$year", Value: "$date"}}},
			}},
			{Key: "ids", Value: bson.D{{Key: "$push", Value: "$_id"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "count", Value: bson.D{{Key: "$gt", Value: 1}}},
		}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Key struct {
			RollNo string `bson:"rollNo"`
			Day    int    `bson:"day"`
			Year   int    `bson:"year"`
		} `bson:"_id"`
		IDs []string `bson:"ids"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	groups := make([]DuplicateGroup, 0, len(docs))
	for _, d := range docs {
		groups = append(groups, DuplicateGroup{
			RollNo: d.Key.RollNo,
			Day:    d.Key.Day,
			Year:   d.Key.Year,
			IDs:    d.IDs,
		})
	}
	return groups, nil
}

// DeleteByIDs removes the given marks and returns how many went away.
func (r *Repository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
