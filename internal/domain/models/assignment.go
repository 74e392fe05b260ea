// internal/domain/models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment commits a share of an engineer's capacity to a project for
// an interval.
//
// Invariant: for every engineer the sum of AllocationPercentage over
// assignments whose end_date has not passed must not exceed the
// engineer's MaxCapacity. The sum is recomputed from these documents on
// every check; no running total is stored anywhere.
//
// EngineerID and ProjectID are immutable after creation.
type Assignment struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EngineerID           primitive.ObjectID `bson:"engineer_id" json:"engineerId"`
	ProjectID            primitive.ObjectID `bson:"project_id" json:"projectId"`
	AllocationPercentage int                `bson:"allocation_percentage" json:"allocationPercentage"`
	StartDate            time.Time          `bson:"start_date" json:"startDate"`
	EndDate              time.Time          `bson:"end_date" json:"endDate"`
	Role                 string             `bson:"role" json:"role"` // e.g. Developer, Tech Lead

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsActiveAt reports whether the assignment still counts against the
// engineer's capacity at t. Assignments that have not started yet are
// deliberately counted; only a passed end date frees the allocation.
func (a *Assignment) IsActiveAt(t time.Time) bool {
	return !a.EndDate.Before(t)
}

// AssignmentDetail is an Assignment with its engineer and project
// references resolved, returned by read and write paths so callers don't
// need a second round trip.
type AssignmentDetail struct {
	Assignment `bson:",inline"`

	Engineer UserSummary    `bson:"engineer" json:"engineer"`
	Project  ProjectSummary `bson:"project" json:"project"`
}
