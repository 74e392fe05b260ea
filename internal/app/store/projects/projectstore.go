package projectstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/staffhub/staffhub/internal/app/system/htmlsanitize"
	"github.com/staffhub/staffhub/internal/app/system/normalize"
	"github.com/staffhub/staffhub/internal/app/system/status"
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
	return &Store{c: db.Collection("projects")}
}

var (
	ErrBadStatus   = errors.New(`status must be "planning"|"active"|"completed"`)
	ErrBadTeamSize = errors.New("team size must be at least 1")
)

// GetByID loads a project by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new project after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	p.ID = primitive.NewObjectID()
	p.Name = normalize.Name(p.Name)
	p.NameCI = text.Fold(p.Name)
	p.Description = htmlsanitize.Sanitize(p.Description)
	p.RequiredSkills = normalize.Skills(p.RequiredSkills)

	if p.Status == "" {
		p.Status = status.Planning
	}
	p.Status = normalize.Status(p.Status)
	if !status.IsValid(p.Status) {
		return models.Project{}, ErrBadStatus
	}
	if p.TeamSize < 1 {
		return models.Project{}, ErrBadTeamSize
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// Update holds the mutable project fields for a full update.
type Update struct {
	Name           string
	Description    string
	RequiredSkills []string
	TeamSize       int
	StartDate      time.Time
	EndDate        time.Time
	Status         string
}

// Update replaces a project's mutable fields and returns the updated
// record. Returns mongo.ErrNoDocuments when the id does not resolve.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Project, error) {
	st := normalize.Status(upd.Status)
	if !status.IsValid(st) {
		return nil, ErrBadStatus
	}
	if upd.TeamSize < 1 {
		return nil, ErrBadTeamSize
	}

	name := normalize.Name(upd.Name)
	set := bson.M{
		"name":            name,
		"name_ci":         text.Fold(name),
		"description":     htmlsanitize.Sanitize(upd.Description),
		"required_skills": normalize.Skills(upd.RequiredSkills),
		"team_size":       upd.TeamSize,
		"start_date":      upd.StartDate,
		"end_date":        upd.EndDate,
		"status":          st,
		"updated_at":      time.Now().UTC(),
	}

	var p models.Project
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a project by id. Returns mongo.ErrNoDocuments when no
// document matched.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// List returns projects sorted by folded name, optionally filtered by
// status. An empty status returns everything.
func (s *Store) List(ctx context.Context, st string) ([]models.Project, error) {
	filter := bson.M{}
	if st != "" {
		filter["status"] = normalize.Status(st)
	}

	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBySkills returns projects whose required skills intersect the given
// set.
func (s *Store) ListBySkills(ctx context.Context, skills []string) ([]models.Project, error) {
	skills = normalize.Skills(skills)
	if len(skills) == 0 {
		return nil, nil
	}

	cur, err := s.c.Find(ctx, bson.M{"required_skills": bson.M{"$in": skills}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
