package student

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Student is a directory entry keyed by roll number.
type Student struct {
	ID           string `bson:"_id" json:"_id"`
	Name         string `bson:"name" json:"name"`
	RollNo       string `bson:"rollNo" json:"rollNo"`
	Phone        string `bson:"phone,omitempty" json:"phone,omitempty"`
	StudentEmail string `bson:"studentEmail" json:"studentEmail"`
	ParentEmail  string `bson:"parentEmail,omitempty" json:"parentEmail,omitempty"`
	QRCodeData   string `bson:"qrCodeData,omitempty" json:"qrCodeData,omitempty"`
}

// Directory is the persistence contract for registered students.
type Directory interface {
	FindByRoll(ctx context.Context, rollNo string) (*Student, error)
	Insert(ctx context.Context, st Student) (Student, error)
	ListAll(ctx context.Context) ([]Student, error)
}

// Repository persists students in the "students" collection.
type Repository struct {
	col *mongo.Collection
}

var _ Directory = (*Repository)(nil)

// NewRepository creates a repo over the given database.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{col: db.Collection("students")}
}

// FindByRoll returns the student with the given roll number, or nil when absent.
func (r *Repository) FindByRoll(ctx context.Context, rollNo string) (*Student, error) {
	var st Student
	err := r.col.FindOne(ctx, bson.M{"rollNo": rollNo}).Decode(&st)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

// Insert writes a new student document.
func (r *Repository) Insert(ctx context.Context, st Student) (Student, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if _, err := r.col.InsertOne(ctx, st); err != nil {
		return Student{}, err
	}
	return st, nil
}

// ListAll returns every registered student ordered by roll number.
func (r *Repository) ListAll(ctx context.Context) ([]Student, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rollNo", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var students []Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}
