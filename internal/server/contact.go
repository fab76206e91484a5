package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/cyber-portfolio/internal/analytics"
	"github.com/Zachkp/cyber-portfolio/internal/mailer"
)

func (s *Server) setupContactRoutes(r *gin.Engine) {
	// HTMX contact form, returns just the form HTML
	r.GET("/contact-form", func(c *gin.Context) {
		c.HTML(http.StatusOK, "section-contact", s.page(""))
	})

	r.POST("/contact", s.handleContact)
}

func (s *Server) handleContact(c *gin.Context) {
	var msg mailer.ContactMessage
	if err := c.ShouldBind(&msg); err != nil {
		c.HTML(http.StatusBadRequest, "contact-error.html", gin.H{
			"error": "Could not read the form.",
		})
		return
	}

	msg, err := s.opts.Mailer.Validate(msg)
	var verr *mailer.ValidationError
	if errors.As(err, &verr) {
		c.HTML(http.StatusUnprocessableEntity, "contact-error.html", gin.H{
			"error":  "Please check the highlighted fields.",
			"fields": verr.Fields,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()
	err = s.opts.Mailer.Send(ctx, msg)
	s.recordMessage(msg, err)
	if err != nil {
		// HTMX only swaps 2xx responses by default.
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"error": "Transmission failed. There was an error sending your message. Please try again later.",
		})
		return
	}

	c.HTML(http.StatusOK, "contact-success.html", gin.H{
		"success": "Message transmitted securely. Thank you, I'll get back to you soon.",
	})
}

func (s *Server) recordMessage(msg mailer.ContactMessage, sendErr error) {
	if s.opts.Store == nil {
		return
	}
	status := analytics.StatusSent
	if sendErr != nil {
		status = analytics.StatusFailed
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.opts.Store.RecordMessage(ctx, msg, status); err != nil {
		s.logger.Error("server: record contact message", "err", err)
	}
}
