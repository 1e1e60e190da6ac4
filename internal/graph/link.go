package graph

import "github.com/starford/raido/internal/models"

// linkConfidence is the confidence assigned to relations derived from plain
// wikilinks, which carry no explicit strength of their own.
const linkConfidence = 0.8

// RelationFromLink is the single place where a wikilink is mapped onto a
// dependency direction: a link source -> target is read as "source is a
// prerequisite of target", i.e. the link graph encodes authored learning
// order and the fallback strategy walks backlinks from the goal. Flip the
// convention here and it flips consistently everywhere.
func RelationFromLink(source, target string) (models.DependencyRelation, error) {
	return models.NewDependencyRelation(source, target, models.RelationPrerequisite, linkConfidence)
}
