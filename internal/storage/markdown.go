package storage

import (
	"bytes"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bhirmbani/kwaci-grow-sub003/internal/task"
)

const frontmatterDelimiter = "---"

// taskFrontmatter is the YAML-serializable portion of a task. The
// description lives in the markdown body below the frontmatter.
type taskFrontmatter struct {
	ID                string        `yaml:"id"`
	PlanID            string        `yaml:"plan_id"`
	Title             string        `yaml:"title"`
	Status            task.Status   `yaml:"status"`
	Category          task.Category `yaml:"category"`
	Priority          task.Priority `yaml:"priority"`
	EstimatedDuration int           `yaml:"estimated_duration"`
	ActualDuration    *int          `yaml:"actual_duration,omitempty"`
	DependsOn         []string      `yaml:"depends_on,omitempty"`
	TaskType          string        `yaml:"task_type,omitempty"`
	Note              string        `yaml:"note,omitempty"`
	GoalIDs           []string      `yaml:"goal_ids,omitempty"`
	CreatedAt         string        `yaml:"created_at"`
	UpdatedAt         string        `yaml:"updated_at,omitempty"`
	CompletedAt       *string       `yaml:"completed_at,omitempty"`
}

// ParseMarkdown parses a markdown file with YAML frontmatter into a Task.
func ParseMarkdown(content []byte) (*task.Task, error) {
	lines := strings.Split(string(content), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != frontmatterDelimiter {
		return nil, &parseError{"missing YAML frontmatter"}
	}

	// Find closing delimiter
	var frontmatterEnd int
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelimiter {
			frontmatterEnd = i
			break
		}
	}
	if frontmatterEnd == 0 {
		return nil, &parseError{"unclosed YAML frontmatter"}
	}

	yamlContent := strings.Join(lines[1:frontmatterEnd], "\n")
	var fm taskFrontmatter
	if err := yaml.Unmarshal([]byte(yamlContent), &fm); err != nil {
		return nil, &parseError{"invalid YAML: " + err.Error()}
	}

	createdAt, err := parseTime(fm.CreatedAt)
	if err != nil {
		return nil, &parseError{"invalid created_at: " + err.Error()}
	}

	// Hand-edited files may drop updated_at; fall back to created_at.
	updatedAt := createdAt
	if fm.UpdatedAt != "" {
		updatedAt, err = parseTime(fm.UpdatedAt)
		if err != nil {
			return nil, &parseError{"invalid updated_at: " + err.Error()}
		}
	}

	var completedAt *time.Time
	if fm.CompletedAt != nil {
		t, err := parseTime(*fm.CompletedAt)
		if err != nil {
			return nil, &parseError{"invalid completed_at: " + err.Error()}
		}
		completedAt = &t
	}

	// Extract description (everything after frontmatter)
	var description string
	if frontmatterEnd+1 < len(lines) {
		description = strings.TrimSpace(strings.Join(lines[frontmatterEnd+1:], "\n"))
	}

	return &task.Task{
		ID:                fm.ID,
		PlanID:            fm.PlanID,
		Title:             fm.Title,
		Description:       description,
		Status:            fm.Status,
		Category:          fm.Category,
		Priority:          fm.Priority,
		EstimatedDuration: fm.EstimatedDuration,
		ActualDuration:    fm.ActualDuration,
		DependsOn:         fm.DependsOn,
		TaskType:          fm.TaskType,
		Note:              fm.Note,
		GoalIDs:           fm.GoalIDs,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
		CompletedAt:       completedAt,
	}, nil
}

// SerializeMarkdown converts a Task to markdown with YAML frontmatter.
func SerializeMarkdown(t *task.Task) ([]byte, error) {
	fm := taskFrontmatter{
		ID:                t.ID,
		PlanID:            t.PlanID,
		Title:             t.Title,
		Status:            t.Status,
		Category:          t.Category,
		Priority:          t.Priority,
		EstimatedDuration: t.EstimatedDuration,
		ActualDuration:    t.ActualDuration,
		DependsOn:         t.DependsOn,
		TaskType:          t.TaskType,
		Note:              t.Note,
		GoalIDs:           t.GoalIDs,
		CreatedAt:         t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         t.UpdatedAt.Format(time.RFC3339),
	}
	if t.CompletedAt != nil {
		s := t.CompletedAt.Format(time.RFC3339)
		fm.CompletedAt = &s
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelimiter + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, err
	}
	enc.Close()

	buf.WriteString(frontmatterDelimiter + "\n")

	if t.Description != "" {
		buf.WriteString("\n")
		buf.WriteString(t.Description)
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// parseError represents a parsing error.
type parseError struct {
	msg string
}

func (e *parseError) Error() string {
	return e.msg
}

// parseTime tries to parse a time string in common formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05Z",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &parseError{"unrecognized time format"}
}
