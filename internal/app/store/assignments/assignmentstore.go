// Package assignmentstore owns the assignments collection and the
// capacity rule that guards it: an engineer's active allocations may
// never sum above their max capacity.
//
// Capacity is never stored. Every check recomputes the sum from the raw
// assignment documents, so there is no counter to drift. An assignment
// counts as active while its end_date has not passed; assignments that
// have not started yet still count, which deliberately prevents
// over-booking future committed weeks.
//
// The check-then-write sequence here is not transactional: two
// concurrent creates for the same engineer can both pass the check
// before either insert lands. Serial callers always see the invariant
// hold.
package assignmentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c        *mongo.Collection
	users    *mongo.Collection
	projects *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("assignments"),
		users:    db.Collection("users"),
		projects: db.Collection("projects"),
	}
}

var (
	// ErrNotAnEngineer is returned when the target user exists but cannot hold assignments.
	ErrNotAnEngineer = errors.New("can only assign engineers to projects")
	// ErrEngineerNotFound is returned when the engineer id does not resolve to a user.
	ErrEngineerNotFound = errors.New("engineer not found")
	// ErrProjectNotFound is returned when the project id does not resolve.
	ErrProjectNotFound = errors.New("project not found")
	// ErrAssignmentNotFound is returned when the assignment id does not resolve.
	ErrAssignmentNotFound = errors.New("assignment not found")

	ErrBadAllocation = errors.New("allocation percentage must be between 0 and 100")
)

// CapacityError reports a rejected write that would push an engineer
// over their max capacity. Available is the headroom at check time and
// may differ from what the caller last saw.
type CapacityError struct {
	Available int
	Requested int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("engineer only has %d%% capacity available (requested %d%%)", e.Available, e.Requested)
}

// AvailableCapacity returns the engineer's max capacity minus the sum of
// allocations across assignments whose end_date is at or after asOf. The
// result is not clamped: data that is already over-committed yields a
// negative number rather than hiding the problem.
func (s *Store) AvailableCapacity(ctx context.Context, engineerID primitive.ObjectID, asOf time.Time) (int, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": engineerID}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, ErrEngineerNotFound
		}
		return 0, err
	}

	allocated, err := s.activeAllocation(ctx, engineerID, asOf, primitive.NilObjectID)
	if err != nil {
		return 0, err
	}
	return u.MaxCapacity - allocated, nil
}

// activeAllocation sums allocation percentages over the engineer's
// assignments with end_date >= asOf. A non-zero excludeID leaves that
// assignment out of the sum (used when re-checking an update against the
// engineer's *other* assignments).
func (s *Store) activeAllocation(ctx context.Context, engineerID primitive.ObjectID, asOf time.Time, excludeID primitive.ObjectID) (int, error) {
	filter := bson.M{
		"engineer_id": engineerID,
		"end_date":    bson.M{"$gte": asOf},
	}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var rows []models.Assignment
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}

	total := 0
	for _, a := range rows {
		total += a.AllocationPercentage
	}
	return total, nil
}

// CreateParams carries the fields for a new assignment.
type CreateParams struct {
	EngineerID           primitive.ObjectID
	ProjectID            primitive.ObjectID
	AllocationPercentage int
	StartDate            time.Time
	EndDate              time.Time
	Role                 string
}

// Create validates the engineer, the project, and the capacity invariant,
// then inserts the assignment. The returned detail has the engineer and
// project references resolved.
func (s *Store) Create(ctx context.Context, p CreateParams) (*models.AssignmentDetail, error) {
	if p.AllocationPercentage < 0 || p.AllocationPercentage > 100 {
		return nil, ErrBadAllocation
	}

	// The target user must exist and be an engineer; managers hold no capacity.
	var engineer models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": p.EngineerID}).Decode(&engineer); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrEngineerNotFound
		}
		return nil, err
	}
	if !engineer.IsEngineer() {
		return nil, ErrNotAnEngineer
	}

	var project models.Project
	if err := s.projects.FindOne(ctx, bson.M{"_id": p.ProjectID}).Decode(&project); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	allocated, err := s.activeAllocation(ctx, p.EngineerID, time.Now().UTC(), primitive.NilObjectID)
	if err != nil {
		return nil, err
	}
	available := engineer.MaxCapacity - allocated
	if p.AllocationPercentage > available {
		return nil, &CapacityError{Available: available, Requested: p.AllocationPercentage}
	}

	now := time.Now().UTC()
	a := models.Assignment{
		ID:                   primitive.NewObjectID(),
		EngineerID:           p.EngineerID,
		ProjectID:            p.ProjectID,
		AllocationPercentage: p.AllocationPercentage,
		StartDate:            p.StartDate,
		EndDate:              p.EndDate,
		Role:                 p.Role,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return nil, err
	}

	return &models.AssignmentDetail{
		Assignment: a,
		Engineer:   engineer.Summary(),
		Project:    project.Summary(),
	}, nil
}

// Patch holds the mutable assignment fields for a partial update. Nil
// fields are left unchanged. EngineerID and ProjectID are immutable, so
// they have no place here.
//
// AllocationPercentage is a pointer precisely so that an explicit zero is
// distinguishable from an omitted field: setting an allocation to 0 still
// goes through the capacity re-check.
type Patch struct {
	Role                 *string
	AllocationPercentage *int
	StartDate            *time.Time
	EndDate              *time.Time
}

// Update applies a partial update, re-checking capacity whenever the
// allocation is being changed. The re-check sums the engineer's other
// active assignments (excluding the one being updated) so that lowering
// an allocation is always permitted.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, patch Patch) (*models.AssignmentDetail, error) {
	var current models.Assignment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&current); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	if patch.AllocationPercentage != nil {
		requested := *patch.AllocationPercentage
		if requested < 0 || requested > 100 {
			return nil, ErrBadAllocation
		}

		var engineer models.User
		if err := s.users.FindOne(ctx, bson.M{"_id": current.EngineerID}).Decode(&engineer); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrEngineerNotFound
			}
			return nil, err
		}

		others, err := s.activeAllocation(ctx, current.EngineerID, time.Now().UTC(), id)
		if err != nil {
			return nil, err
		}
		if others+requested > engineer.MaxCapacity {
			return nil, &CapacityError{Available: engineer.MaxCapacity - others, Requested: requested}
		}
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	if patch.AllocationPercentage != nil {
		set["allocation_percentage"] = *patch.AllocationPercentage
	}
	if patch.StartDate != nil {
		set["start_date"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		set["end_date"] = *patch.EndDate
	}

	var updated models.Assignment
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	return s.resolve(ctx, updated)
}

// Delete removes an assignment. The freed allocation is visible to the
// very next capacity check since nothing is cached.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// GetByID returns a single assignment with references resolved.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.AssignmentDetail, error) {
	var a models.Assignment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return s.resolve(ctx, a)
}

// ListAll returns every assignment with references resolved.
func (s *Store) ListAll(ctx context.Context) ([]models.AssignmentDetail, error) {
	return s.list(ctx, bson.M{})
}

// ListByEngineer returns one engineer's assignments with references resolved.
func (s *Store) ListByEngineer(ctx context.Context, engineerID primitive.ObjectID) ([]models.AssignmentDetail, error) {
	return s.list(ctx, bson.M{"engineer_id": engineerID})
}

// list runs the lookup pipeline joining users and projects onto the
// matched assignments. Dangling references (a deleted user or project)
// leave the summary zero-valued rather than dropping the assignment.
func (s *Store) list(ctx context.Context, match bson.M) ([]models.AssignmentDetail, error) {
	pipeline := []bson.M{
		{"$match": match},
		{"$sort": bson.M{"start_date": 1, "_id": 1}},
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   "engineer_id",
			"foreignField": "_id",
			"as":           "engineer",
		}},
		{"$unwind": bson.M{"path": "$engineer", "preserveNullAndEmptyArrays": true}},
		{"$lookup": bson.M{
			"from":         "projects",
			"localField":   "project_id",
			"foreignField": "_id",
			"as":           "project",
		}},
		{"$unwind": bson.M{"path": "$project", "preserveNullAndEmptyArrays": true}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.AssignmentDetail
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// resolve attaches the engineer and project summaries to a single
// assignment document.
func (s *Store) resolve(ctx context.Context, a models.Assignment) (*models.AssignmentDetail, error) {
	detail := models.AssignmentDetail{Assignment: a}

	var u models.User
	switch err := s.users.FindOne(ctx, bson.M{"_id": a.EngineerID}).Decode(&u); err {
	case nil:
		detail.Engineer = u.Summary()
	case mongo.ErrNoDocuments:
		// Deleting a user does not cascade to assignments; leave the summary empty.
	default:
		return nil, err
	}

	var p models.Project
	switch err := s.projects.FindOne(ctx, bson.M{"_id": a.ProjectID}).Decode(&p); err {
	case nil:
		detail.Project = p.Summary()
	case mongo.ErrNoDocuments:
		// Same for projects.
	default:
		return nil, err
	}

	return &detail, nil
}
