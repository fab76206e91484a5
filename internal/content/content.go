// Package content holds the portfolio data rendered by the site.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Zachkp/cyber-portfolio/internal/sequencer"
)

//go:embed content.yaml
var defaultContent []byte

// FilterAll selects every project.
const FilterAll = "all"

type Portfolio struct {
	Profile        Profile         `yaml:"profile" json:"profile"`
	Terminal       Terminal        `yaml:"terminal" json:"terminal"`
	About          []string        `yaml:"about" json:"about"`
	Skills         []SkillCategory `yaml:"skills" json:"skills"`
	Education      []Education     `yaml:"education" json:"education"`
	Experience     []Experience    `yaml:"experience" json:"experience"`
	Projects       []Project       `yaml:"projects" json:"projects"`
	Certifications []Certification `yaml:"certifications" json:"certifications"`
	Achievements   []string        `yaml:"achievements" json:"achievements"`
	Sections       []Section       `yaml:"sections" json:"sections"`
}

type Profile struct {
	Name        string `yaml:"name" json:"name"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Location    string `yaml:"location" json:"location"`
	Email       string `yaml:"email" json:"email"`
	ResumeURL   string `yaml:"resume_url" json:"resume_url"`
	GitHub      string `yaml:"github" json:"github"`
	LinkedIn    string `yaml:"linkedin" json:"linkedin"`
	Prompt      string `yaml:"prompt" json:"prompt"`
}

// Terminal is the hero typing animation: its lines and timings in
// milliseconds.
type Terminal struct {
	Lines         []string `yaml:"lines" json:"lines"`
	TypingSpeedMs int      `yaml:"typing_speed_ms" json:"typing_speed_ms"`
	DeleteSpeedMs int      `yaml:"deleting_speed_ms" json:"deleting_speed_ms"`
	HoldMs        int      `yaml:"hold_ms" json:"hold_ms"`
}

type SkillCategory struct {
	Category string   `yaml:"category" json:"category"`
	Icon     string   `yaml:"icon" json:"icon"`
	Skills   []string `yaml:"skills" json:"skills"`
}

type Education struct {
	Degree      string `yaml:"degree" json:"degree"`
	Details     string `yaml:"details" json:"details,omitempty"`
	Institution string `yaml:"institution" json:"institution"`
	Location    string `yaml:"location" json:"location"`
	Period      string `yaml:"period" json:"period"`
	Grade       string `yaml:"grade" json:"grade"`
}

type Experience struct {
	Title            string   `yaml:"title" json:"title"`
	Company          string   `yaml:"company" json:"company"`
	Period           string   `yaml:"period" json:"period"`
	Location         string   `yaml:"location" json:"location"`
	Responsibilities []string `yaml:"responsibilities" json:"responsibilities"`
}

type Certification struct {
	ID     string   `yaml:"id" json:"id"`
	Title  string   `yaml:"title" json:"title"`
	Issuer string   `yaml:"issuer" json:"issuer"`
	Date   string   `yaml:"date" json:"date"`
	Image  string   `yaml:"image" json:"image"`
	Skills []string `yaml:"skills" json:"skills"`
}

type Section struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Default returns the embedded portfolio.
func Default() (*Portfolio, error) {
	return Load(bytes.NewReader(defaultContent))
}

// Load decodes and validates a YAML portfolio.
func Load(r io.Reader) (*Portfolio, error) {
	var p Portfolio
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("content: decode: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Portfolio) Validate() error {
	if strings.TrimSpace(p.Profile.Name) == "" {
		return errors.New("content: profile name is required")
	}
	titles := make(map[string]bool, len(p.Projects))
	for _, proj := range p.Projects {
		if titles[proj.Title] {
			return fmt.Errorf("content: duplicate project %q", proj.Title)
		}
		titles[proj.Title] = true
		if !proj.SecurityLevel.Valid() {
			return fmt.Errorf("content: project %q: unknown security level %q", proj.Title, proj.SecurityLevel)
		}
	}
	if _, err := p.TerminalConfig(); err != nil {
		return fmt.Errorf("content: terminal: %w", err)
	}
	return nil
}

// Categories returns the distinct project categories, sorted.
func (p *Portfolio) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, proj := range p.Projects {
		for _, c := range proj.Categories {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}

// ListedProject is a project together with its position in
// Portfolio.Projects.
type ListedProject struct {
	Index int
	Project
}

// FilterProjects returns the projects in category filter, compared without
// case. An empty filter or FilterAll returns every project. Each entry keeps
// its index into Portfolio.Projects.
func (p *Portfolio) FilterProjects(filter string) []ListedProject {
	filter = strings.TrimSpace(filter)
	all := filter == "" || strings.EqualFold(filter, FilterAll)
	var out []ListedProject
	for i, proj := range p.Projects {
		if all || proj.InCategory(filter) {
			out = append(out, ListedProject{Index: i, Project: proj})
		}
	}
	return out
}

// TerminalConfig turns the hero timings into a sequencer config. Unset
// timings keep the sequencer defaults.
func (p *Portfolio) TerminalConfig() (sequencer.Config, error) {
	cfg := sequencer.DefaultConfig()
	if p.Terminal.TypingSpeedMs != 0 {
		cfg.TypingSpeed = ms(p.Terminal.TypingSpeedMs)
	}
	if p.Terminal.DeleteSpeedMs != 0 {
		cfg.DeletingSpeed = ms(p.Terminal.DeleteSpeedMs)
	}
	if p.Terminal.HoldMs != 0 {
		cfg.HoldDuration = ms(p.Terminal.HoldMs)
	}
	return cfg, cfg.Validate()
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
