package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/cyber-portfolio/internal/analytics"
)

const adminCookie = "admin_token"

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) adminEnabled() bool {
	return s.opts.Store != nil && s.opts.Admin.Password != ""
}

// clientHash identifies a client in logs without exposing its IP.
func (s *Server) clientHash(c *gin.Context) string {
	if s.opts.Store == nil {
		return ""
	}
	return s.opts.Store.Hasher().Hash(c.ClientIP())
}

func (s *Server) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || !secureEqual(token, s.token) {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) adminError(c *gin.Context, status int, msg string, err error) {
	s.logger.Error("admin: "+msg, "err", err)
	c.HTML(status, "admin-error.html", gin.H{"error": msg})
}

func (s *Server) setupAdminRoutes(r *gin.Engine) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title":     "Privacy Policy",
			"retention": "12 months",
		})
	})

	if !s.adminEnabled() {
		s.logger.Info("admin: disabled (no store or password configured)")
		return
	}
	s.logger.Info("admin: access available at /admin/login")

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login"})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		userOK := secureEqual(c.PostForm("username"), s.opts.Admin.Username)
		passOK := secureEqual(c.PostForm("password"), s.opts.Admin.Password)
		if !userOK || !passOK {
			s.logger.Warn("admin: failed login", "client", s.clientHash(c))
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title": "Admin Login",
				"error": "Invalid credentials",
			})
			return
		}
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(adminCookie, s.token, int((24 * time.Hour).Seconds()), "/admin", "", false, true)
		s.logger.Info("admin: login", "client", s.clientHash(c))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	admin := r.Group("/admin")
	admin.Use(s.adminAuth())
	store := s.opts.Store

	admin.GET("/dashboard", func(c *gin.Context) {
		stats, err := store.Stats(c.Request.Context())
		if err != nil {
			s.adminError(c, http.StatusInternalServerError, "Failed to load statistics", err)
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{"stats": stats})
	})

	admin.GET("/api/stats", func(c *gin.Context) {
		stats, err := store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.GET("/visitors", func(c *gin.Context) {
		visitors, err := store.Visitors(c.Request.Context(), 200)
		if err != nil {
			s.adminError(c, http.StatusInternalServerError, "Failed to load visitors", err)
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{"visitors": visitors})
	})

	admin.GET("/messages", func(c *gin.Context) {
		msgs, err := store.Messages(c.Request.Context(), 200)
		if err != nil {
			s.adminError(c, http.StatusInternalServerError, "Failed to load messages", err)
			return
		}
		c.HTML(http.StatusOK, "admin-messages.html", gin.H{"messages": msgs})
	})

	admin.DELETE("/messages/:id", func(c *gin.Context) {
		id := c.Param("id")
		err := store.DeleteMessage(c.Request.Context(), id)
		switch {
		case errors.Is(err, analytics.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		case err != nil:
			s.logger.Error("admin: delete message", "id", id, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
		default:
			s.logger.Info("admin: message deleted", "id", id, "client", s.clientHash(c))
			c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
		}
	})

	admin.POST("/privacy/cleanup", func(c *gin.Context) {
		n, err := store.Cleanup(c.Request.Context(), analytics.DefaultRetention)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete", "removed": n})
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		stats, err := store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		s.logger.Info("admin: stats exported", "client", s.clientHash(c))
		c.JSON(http.StatusOK, stats)
	})
}
