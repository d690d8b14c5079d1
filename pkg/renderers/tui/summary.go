package tui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-regwizard/pkg/submission"
)

const defaultSummaryTemplate = `{% autoescape off %}Review your registration
  Role:       {{ role }}
  Name:       {{ basic.firstName }} {{ basic.lastName }}
  Email:      {{ basic.email }}
{% if basic.phone %}  Phone:      {{ basic.phone }}
{% endif %}  Location:   {{ basic.location }}
{% if student %}  Interests:  {{ student.interests|join:", " }}
{% if student.learningGoals %}  Goals:      {{ student.learningGoals }}
{% endif %}{% endif %}{% if teacher %}  Subjects:   {{ teacher.subjects|join:", " }}
  Education:  {{ teacher.education }}
  Experience: {{ teacher.experience }}
  Rate:       {{ teacher.hourlyRate }} / hour
{% for file in attachments %}  Attachment: {{ file.name }} ({{ file.size }})
{% endfor %}{% endif %}{% endautoescape %}`

type summary struct {
	tpl *pongo2.Template
}

func newSummary(source string) (*summary, error) {
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return nil, fmt.Errorf("tui: parse summary template: %w", err)
	}
	return &summary{tpl: tpl}, nil
}

func (s *summary) render(payload submission.Payload) (string, error) {
	var buf bytes.Buffer
	if err := s.tpl.ExecuteWriter(summaryContext(payload), &buf); err != nil {
		return "", fmt.Errorf("tui: render summary: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func summaryContext(p submission.Payload) pongo2.Context {
	ctx := pongo2.Context{
		"role": p.Role.String(),
		"basic": map[string]any{
			"firstName": p.Basic.FirstName,
			"lastName":  p.Basic.LastName,
			"email":     p.Basic.Email,
			"phone":     p.Basic.Phone,
			"location":  p.Basic.Location,
		},
	}
	if p.Student != nil {
		ctx["student"] = map[string]any{
			"interests":     p.Student.Interests,
			"learningGoals": p.Student.LearningGoals,
		}
	}
	if p.Teacher != nil {
		ctx["teacher"] = map[string]any{
			"subjects":   p.Teacher.Subjects,
			"education":  p.Teacher.Education,
			"experience": p.Teacher.TeachingExperience.Label(),
			"hourlyRate": fmt.Sprintf("%.2f", p.Teacher.HourlyRate),
		}
	}
	files := make([]map[string]any, 0, len(p.Attachments))
	for _, file := range p.Attachments {
		files = append(files, map[string]any{
			"name": file.Name,
			"size": humanSize(file.SizeBytes),
		})
	}
	ctx["attachments"] = files
	return ctx
}

func humanSize(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
