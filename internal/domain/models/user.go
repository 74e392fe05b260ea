// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleEngineer = "engineer"
	RoleManager  = "manager"
)

// Seniority levels for engineers.
const (
	SeniorityJunior = "junior"
	SeniorityMid    = "mid"
	SenioritySenior = "senior"
)

// User represents engineers and managers.
//
// MaxCapacity is the engineer's total working capacity as a percentage
// (0-100). Available capacity is never stored on the user; it is derived
// from the assignments collection at check time.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // engineer | manager
	Skills       []string           `bson:"skills" json:"skills"`
	Seniority    string             `bson:"seniority" json:"seniority"` // junior | mid | senior
	MaxCapacity  int                `bson:"max_capacity" json:"maxCapacity"`
	Department   string             `bson:"department,omitempty" json:"department,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsEngineer reports whether the user can be assigned to projects.
func (u *User) IsEngineer() bool {
	return u.Role == RoleEngineer
}

// UserSummary is the slice of a User embedded in resolved assignment
// responses (the fields a staffing UI needs next to an assignment).
type UserSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

// Summary returns the embeddable view of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
