package content

import (
	"fmt"
	"strings"
)

type SecurityLevel string

const (
	Critical SecurityLevel = "Critical"
	High     SecurityLevel = "High"
	Medium   SecurityLevel = "Medium"
	Low      SecurityLevel = "Low"
)

func (l SecurityLevel) Valid() bool {
	switch l {
	case Critical, High, Medium, Low, "":
		return true
	}
	return false
}

// Class is the CSS colour class of the security badge.
func (l SecurityLevel) Class() string {
	switch l {
	case Critical:
		return "text-red-500 border-red-500/50"
	case High:
		return "text-orange-500 border-orange-500/50"
	case Medium:
		return "text-yellow-500 border-yellow-500/50"
	case Low:
		return "text-blue-500 border-blue-500/50"
	default:
		return "text-[#00ff00] border-[#00ff00]/50"
	}
}

type Project struct {
	Title         string        `yaml:"title" json:"title"`
	Period        string        `yaml:"period" json:"period"`
	Description   string        `yaml:"description" json:"description"`
	Details       []string      `yaml:"details" json:"details"`
	Tags          []string      `yaml:"tags" json:"tags"`
	Categories    []string      `yaml:"categories" json:"categories"`
	SecurityLevel SecurityLevel `yaml:"security_level" json:"security_level"`
	DemoLink      string        `yaml:"demo_link" json:"demo_link,omitempty"`
	GitHubLink    string        `yaml:"github_link" json:"github_link,omitempty"`
}

func (p Project) InCategory(category string) bool {
	for _, c := range p.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// Notice is the modal shown for a project link that is not published.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// DemoNotice returns the modal for a missing demo, or false when the demo
// link exists.
func (p Project) DemoNotice() (Notice, bool) {
	if p.DemoLink != "" {
		return Notice{}, false
	}
	return Notice{
		Title:   "Demo not available",
		Message: fmt.Sprintf("The demo for %q is not deployed yet.", p.Title),
	}, true
}

// CodeNotice returns the modal for missing source code.
func (p Project) CodeNotice() (Notice, bool) {
	if p.GitHubLink != "" {
		return Notice{}, false
	}
	return Notice{
		Title:   "Source code not available",
		Message: fmt.Sprintf("The code for %q is not uploaded to GitHub yet.", p.Title),
	}, true
}
