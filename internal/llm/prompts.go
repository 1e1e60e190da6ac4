package llm

import (
	"fmt"
	"strings"
)

const conceptSystemPrompt = `You are an expert learning advisor. You analyze a note from a personal knowledge vault and identify what a learner must understand before studying it. Respond with JSON only, no prose.`

const conceptPromptTemplate = `Analyze the following note and extract:
1. "main_topic": the central topic as a short phrase.
2. "prerequisites": concepts a learner should know first. Each entry has
   "concept", a one-sentence "description", and "importance" rated
   "essential", "helpful", or "optional".
3. "keywords": up to 10 search terms for finding related notes.

Respond with exactly this JSON shape:
{
  "main_topic": "...",
  "prerequisites": [{"concept": "...", "description": "...", "importance": "essential"}],
  "keywords": ["..."]
}

Note title: %s

Note content:
%s`

const orderSystemPrompt = `You are an expert curriculum designer. You order study material so every prerequisite comes before the material that needs it. Respond with JSON only, no prose.`

const orderPromptTemplate = `A learner wants to master the goal note below. Order the candidate notes into a study sequence ending at the goal, estimate minutes per note, and list prerequisite concepts that none of the candidates cover.

Use note titles exactly as given. In "knowledge_gaps", rate "importance" as "essential", "helpful", or "optional".

Respond with exactly this JSON shape:
{
  "learning_order": ["Title One", "Title Two"],
  "estimated_minutes": {"Title One": 30, "Title Two": 45},
  "knowledge_gaps": [{"concept": "...", "reason": "...", "importance": "helpful", "suggested_resources": ["..."]}]
}

Goal note: %s

Candidate notes:
%s`

// maxExcerptLen bounds how much of each note body goes into the prompt.
const maxExcerptLen = 1200

// conceptPrompt renders the extraction prompt for a single goal note.
func conceptPrompt(title, content string) string {
	return fmt.Sprintf(conceptPromptTemplate, title, excerpt(content))
}

// orderPrompt renders the ordering prompt over the goal and candidates.
func orderPrompt(goalTitle string, candidates []NoteSummary) string {
	var b strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s\n%s\n\n", i+1, c.Title, excerpt(c.Content))
	}
	return fmt.Sprintf(orderPromptTemplate, goalTitle, strings.TrimSpace(b.String()))
}

// NoteSummary is the slice of a note the ordering prompt needs.
type NoteSummary struct {
	Title   string
	Content string
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxExcerptLen {
		return s
	}
	return s[:maxExcerptLen] + "..."
}
