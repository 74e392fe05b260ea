package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/staffhub/staffhub/internal/app/system/normalize"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	ErrBadRole        = errors.New(`role must be "engineer" or "manager"`)
	ErrBadSeniority   = errors.New(`seniority must be "junior"|"mid"|"senior"`)
	ErrBadCapacity    = errors.New("max capacity must be between 0 and 100")
)

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
// The caller supplies PasswordHash; plaintext passwords never reach this layer.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	// Normalize core fields
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	u.Seniority = normalize.Seniority(u.Seniority)
	u.Skills = normalize.Skills(u.Skills)

	// Defaults matching registration semantics: a bare signup is a junior
	// engineer at full capacity.
	if u.Role == "" {
		u.Role = models.RoleEngineer
	}
	if u.Seniority == "" {
		u.Seniority = models.SeniorityJunior
	}

	// Validate role
	switch u.Role {
	case models.RoleEngineer, models.RoleManager:
		// ok
	default:
		return models.User{}, ErrBadRole
	}

	// Validate seniority
	switch u.Seniority {
	case models.SeniorityJunior, models.SeniorityMid, models.SenioritySenior:
		// ok
	default:
		return models.User{}, ErrBadSeniority
	}

	if u.MaxCapacity < 0 || u.MaxCapacity > 100 {
		return models.User{}, ErrBadCapacity
	}

	// Timestamps
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	// Insert
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// List returns all users ordered by folded name. Role filters the result
// when non-empty.
func (s *Store) List(ctx context.Context, role string) ([]models.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = normalize.Role(role)
	}

	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
