package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateEngineer creates an engineer with the given name, email, and max
// capacity. Returns the created user with its generated ID.
func (f *Fixtures) CreateEngineer(ctx context.Context, name, email string, maxCapacity int) models.User {
	f.t.Helper()
	return f.createUser(ctx, name, email, models.RoleEngineer, maxCapacity)
}

// CreateManager creates a manager with the given name and email.
func (f *Fixtures) CreateManager(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.createUser(ctx, name, email, models.RoleManager, 100)
}

func (f *Fixtures) createUser(ctx context.Context, name, email, role string, maxCapacity int) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:          primitive.NewObjectID(),
		Email:       email,
		Name:        name,
		NameCI:      text.Fold(name),
		// bcrypt hash of "password" with the default cost; tests that log in use it.
		PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		Role:         role,
		Skills:       []string{"Go"},
		Seniority:    models.SeniorityMid,
		MaxCapacity:  maxCapacity,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateProject creates an active project with the given name.
func (f *Fixtures) CreateProject(ctx context.Context, name string) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	project := models.Project{
		ID:             primitive.NewObjectID(),
		Name:           name,
		NameCI:         text.Fold(name),
		Description:    "Test project",
		RequiredSkills: []string{"Go"},
		TeamSize:       3,
		StartDate:      now,
		EndDate:        now.AddDate(0, 6, 0),
		Status:         "active",
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := f.db.Collection("projects").InsertOne(ctx, project); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return project
}

// CreateAssignment inserts an assignment document directly, bypassing the
// capacity check. Useful for seeding states the store would reject.
func (f *Fixtures) CreateAssignment(ctx context.Context, engineerID, projectID primitive.ObjectID, allocation int, start, end time.Time) models.Assignment {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.Assignment{
		ID:                   primitive.NewObjectID(),
		EngineerID:           engineerID,
		ProjectID:            projectID,
		AllocationPercentage: allocation,
		StartDate:            start,
		EndDate:              end,
		Role:                 "Developer",
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if _, err := f.db.Collection("assignments").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test assignment: %v", err)
	}
	return a
}
