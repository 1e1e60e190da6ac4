package mcpserver

// PathFormatContract describes the learning path document shape returned by
// the path tools, for LLM consumers that post-process the results.
const PathFormatContract = `# Raido Learning Path Format

Every learning path returned by the path tools is a JSON document with this
shape.

## Structure

` + "```" + `json
{
  "id": "uuid",
  "goal_path": "topics/goal.md",
  "goal_title": "Goal Note Title",
  "nodes": [
    {
      "note_path": "topics/basics.md",
      "title": "Basics",
      "order": 1,
      "mastery": "not_started",
      "dependencies": ["topics/even-earlier.md"],
      "estimated_minutes": 30
    }
  ],
  "knowledge_gaps": [
    {
      "concept": "Bayes' theorem",
      "reason": "needed for posterior reasoning",
      "priority": "high",
      "suggested_resources": ["Search for an introduction to \"Bayes' theorem\""]
    }
  ],
  "total_analyzed_notes": 42,
  "created_at": "2025-01-20T10:00:00Z",
  "updated_at": "2025-01-20T10:00:00Z"
}
` + "```" + `

## Rules

1. **Ordering is 1-based and contiguous.** ` + "`" + `order` + "`" + ` reflects the study
   sequence; the goal note is always the last node.
2. **Note identity is the vault-relative path.** ` + "`" + `note_path` + "`" + ` values end
   with ` + "`" + `.md` + "`" + ` and use forward slashes.
3. **Mastery levels** are ` + "`" + `not_started` + "`" + `, ` + "`" + `in_progress` + "`" + `, and
   ` + "`" + `completed` + "`" + `. Progress never regresses except by an explicit reset to
   ` + "`" + `not_started` + "`" + `.
4. **Dependencies** list note paths inside the same path that should be
   studied first. An empty list means the node can be started immediately.
5. **Knowledge gaps** name concepts needed for the goal that no vault note
   covers. Priorities are ` + "`" + `high` + "`" + `, ` + "`" + `medium` + "`" + `, or ` + "`" + `low` + "`" + `.
6. A generation result wraps the path together with ` + "`" + `levels` + "`" + ` (groups of
   note paths learnable in parallel) and ` + "`" + `warnings` + "`" + ` (strategy
   degradations, e.g. a detected link cycle).
`
