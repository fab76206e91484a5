package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/cyber-portfolio/internal/content"
)

var sectionTemplates = map[string]string{
	"about":          "section-about",
	"skills":         "section-skills",
	"education":      "section-education",
	"experience":     "section-experience",
	"projects":       "section-projects",
	"certifications": "section-certifications",
	"achievements":   "section-achievements",
	"contact":        "section-contact",
}

type pageData struct {
	*content.Portfolio
	Categories []string
	Filter     string
	Filtered   []content.ListedProject
	Year       int
}

func (s *Server) page(filter string) pageData {
	if filter == "" {
		filter = content.FilterAll
	}
	p := s.opts.Portfolio
	return pageData{
		Portfolio:  p,
		Categories: p.Categories(),
		Filter:     filter,
		Filtered:   p.FilterProjects(filter),
		Year:       time.Now().Year(),
	}
}

func (s *Server) setupPortfolioRoutes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", s.page(""))
	})

	r.GET("/sections/:name", func(c *gin.Context) {
		name, ok := sectionTemplates[c.Param("name")]
		if !ok {
			c.String(http.StatusNotFound, "unknown section")
			return
		}
		c.HTML(http.StatusOK, name, s.page(c.Query("filter")))
	})

	r.GET("/projects", func(c *gin.Context) {
		c.HTML(http.StatusOK, "project-list", s.page(c.Query("filter")))
	})

	r.GET("/projects/:index/notice", func(c *gin.Context) {
		i, err := strconv.Atoi(c.Param("index"))
		if err != nil || i < 0 || i >= len(s.opts.Portfolio.Projects) {
			c.String(http.StatusNotFound, "unknown project")
			return
		}
		proj := s.opts.Portfolio.Projects[i]

		var (
			notice content.Notice
			ok     bool
		)
		switch c.DefaultQuery("kind", "demo") {
		case "demo":
			notice, ok = proj.DemoNotice()
		case "code":
			notice, ok = proj.CodeNotice()
		default:
			c.String(http.StatusBadRequest, "kind must be demo or code")
			return
		}
		if !ok {
			c.Status(http.StatusNoContent)
			return
		}
		c.HTML(http.StatusOK, "notice.html", notice)
	})

	r.GET("/api/portfolio", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.opts.Portfolio)
	})
}
