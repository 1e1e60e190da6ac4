// Package llm talks to an OpenAI-compatible endpoint for concept extraction
// and learning-order analysis, and for computing embedding vectors.
package llm

// Importance grades how strongly a prerequisite concept is needed.
type Importance string

const (
	ImportanceEssential Importance = "essential"
	ImportanceHelpful   Importance = "helpful"
	ImportanceOptional  Importance = "optional"
)

// Prerequisite is a single concept the model judged necessary before
// studying the goal material.
type Prerequisite struct {
	Concept     string     `json:"concept"`
	Description string     `json:"description"`
	Importance  Importance `json:"importance"`
}

// ConceptExtraction is the model's reading of a goal note: its main topic,
// the prerequisite concepts, and search keywords for finding related notes.
type ConceptExtraction struct {
	MainTopic     string         `json:"main_topic"`
	Prerequisites []Prerequisite `json:"prerequisites"`
	Keywords      []string       `json:"keywords"`
}

// GapSuggestion describes a prerequisite with no matching note in the vault.
type GapSuggestion struct {
	Concept            string     `json:"concept"`
	Reason             string     `json:"reason"`
	Importance         Importance `json:"importance"`
	SuggestedResources []string   `json:"suggested_resources,omitempty"`
}

// PathAnalysis is the model's ordering judgement over a candidate note set:
// note titles in study order, per-title time estimates in minutes, and
// concepts missing from the vault entirely.
type PathAnalysis struct {
	LearningOrder    []string        `json:"learning_order"`
	EstimatedMinutes map[string]int  `json:"estimated_minutes"`
	KnowledgeGaps    []GapSuggestion `json:"knowledge_gaps"`
}
