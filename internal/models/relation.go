package models

import "fmt"

// RelationType classifies how one note depends on another.
type RelationType string

const (
	// RelationPrerequisite means the source must be learned before the
	// target. Only prerequisite relations contribute graph edges.
	RelationPrerequisite RelationType = "prerequisite"
	// RelationRelated marks a thematic connection with no ordering force.
	RelationRelated RelationType = "related"
	// RelationOptional marks an enriching but skippable connection.
	RelationOptional RelationType = "optional"
)

// DependencyRelation is an immutable directed relation between two notes.
type DependencyRelation struct {
	SourceID   string       `json:"source_id"`
	TargetID   string       `json:"target_id"`
	Type       RelationType `json:"type"`
	Confidence float64      `json:"confidence"`
}

// NewDependencyRelation constructs a relation. Self-references are rejected;
// confidence is clamped into [0, 1].
func NewDependencyRelation(sourceID, targetID string, typ RelationType, confidence float64) (DependencyRelation, error) {
	if sourceID == targetID {
		return DependencyRelation{}, fmt.Errorf("relation: self-reference %q", sourceID)
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return DependencyRelation{
		SourceID:   sourceID,
		TargetID:   targetID,
		Type:       typ,
		Confidence: confidence,
	}, nil
}

// Inverse returns the relation with source and target swapped. Type and
// confidence are preserved.
func (r DependencyRelation) Inverse() DependencyRelation {
	return DependencyRelation{
		SourceID:   r.TargetID,
		TargetID:   r.SourceID,
		Type:       r.Type,
		Confidence: r.Confidence,
	}
}
