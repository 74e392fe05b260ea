// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is a staffable engagement.
//
// RequiredSkills is matched against engineer skills with set intersection
// when filtering. Status moves planning -> active -> completed by explicit
// update; there is no state machine beyond the enum.
type Project struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	NameCI         string             `bson:"name_ci" json:"-"`
	Description    string             `bson:"description" json:"description"`
	RequiredSkills []string           `bson:"required_skills" json:"requiredSkills"`
	TeamSize       int                `bson:"team_size" json:"teamSize"`
	StartDate      time.Time          `bson:"start_date" json:"startDate"`
	EndDate        time.Time          `bson:"end_date" json:"endDate"`
	Status         string             `bson:"status" json:"status"` // planning | active | completed

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ProjectSummary is the slice of a Project embedded in resolved
// assignment responses.
type ProjectSummary struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
}

// Summary returns the embeddable view of the project.
func (p *Project) Summary() ProjectSummary {
	return ProjectSummary{ID: p.ID, Name: p.Name, Description: p.Description}
}
