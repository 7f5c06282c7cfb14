// Package content holds the static study material served alongside the
// API: canned document text, learning-style guidance and tips, and the
// learning-style assessment.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/studymate-api/internal/models"
)

//go:embed library.yaml
var embeddedLibrary []byte

// StyleGuide is everything shown or prompted for one learning style.
type StyleGuide struct {
	Label             string           `yaml:"label"`
	Description       string           `yaml:"description"`
	ProfileTips       []string         `yaml:"profile_tips"`
	DashboardTips     models.StudyTips `yaml:"dashboard_tips"`
	AssistantGuidance string           `yaml:"assistant_guidance"`
	TestInstructions  string           `yaml:"test_instructions"`
}

// Material is canned study text substituted for an uploaded document.
// A material without keywords is the fallback.
type Material struct {
	Subject  string   `yaml:"subject"`
	Title    string   `yaml:"title"`
	Keywords []string `yaml:"keywords"`
	Body     string   `yaml:"body"`
}

// Library is the parsed content file.
type Library struct {
	Styles    map[models.LearningStyle]StyleGuide `yaml:"styles"`
	Questions []models.AssessmentQuestion         `yaml:"questions"`
	Materials []Material                          `yaml:"materials"`
}

// Load parses the file at path, or the embedded library when path is empty.
func Load(path string) (*Library, error) {
	data := embeddedLibrary
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read content library: %w", err)
		}
		data = raw
	}
	return Parse(data)
}

// Parse decodes and validates a library document.
func Parse(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parse content library: %w", err)
	}
	if err := lib.validate(); err != nil {
		return nil, err
	}
	return &lib, nil
}

func (l *Library) validate() error {
	for _, style := range models.LearningStyles {
		if _, ok := l.Styles[style]; !ok {
			return fmt.Errorf("content library: missing style %q", style)
		}
	}
	if len(l.Questions) == 0 {
		return errors.New("content library: no assessment questions")
	}
	for _, q := range l.Questions {
		for _, opt := range q.Options {
			if !opt.Style.Valid() {
				return fmt.Errorf("content library: question %d has unknown style %q", q.ID, opt.Style)
			}
		}
	}
	fallbacks := 0
	for _, m := range l.Materials {
		if len(m.Keywords) == 0 {
			fallbacks++
		}
	}
	if fallbacks != 1 {
		return fmt.Errorf("content library: want exactly one fallback material, got %d", fallbacks)
	}
	return nil
}

// Style returns the guide for style.
func (l *Library) Style(style models.LearningStyle) (StyleGuide, bool) {
	guide, ok := l.Styles[style]
	return guide, ok
}

// MaterialFor picks the first material whose keyword appears in the
// lowercased filename, falling back to the keyword-less entry.
func (l *Library) MaterialFor(filename string) Material {
	name := strings.ToLower(filename)
	var fallback Material
	for _, m := range l.Materials {
		if len(m.Keywords) == 0 {
			fallback = m
			continue
		}
		for _, kw := range m.Keywords {
			if strings.Contains(name, strings.ToLower(kw)) {
				return m
			}
		}
	}
	return fallback
}

// Render builds the document text for an upload.
func (m Material) Render(filename string, size int64, processedAt time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s - %s\n", filename, m.Title)
	fmt.Fprintf(&sb, "Processed: %s\n", processedAt.Format(time.RFC1123))
	fmt.Fprintf(&sb, "File Size: %d bytes\n\n", size)
	sb.WriteString(m.Body)
	return strings.TrimSpace(sb.String())
}

// AssessmentQuestions returns a copy of the learning-style questions.
func (l *Library) AssessmentQuestions() []models.AssessmentQuestion {
	out := make([]models.AssessmentQuestion, len(l.Questions))
	copy(out, l.Questions)
	return out
}
