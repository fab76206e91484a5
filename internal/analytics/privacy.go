package analytics

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Hasher turns client IPs into salted, truncated digests so raw addresses
// are never stored.
type Hasher struct {
	salt string
}

// NewHasher uses salt, or a random one when salt is empty. A random salt
// keeps hashes stable only for the life of the process.
func NewHasher(salt string) *Hasher {
	if salt == "" {
		salt = RandomToken()
	}
	return &Hasher{salt: salt}
}

func (h *Hasher) Hash(ip string) string {
	sum := sha256.Sum256([]byte(ip + h.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// RandomToken returns 32 random bytes hex encoded.
func RandomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("analytics: crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}

var untrackedPrefixes = []string{
	"/static/",
	"/images/",
	"/admin/",
	"/favicon",
	"/privacy",
	"/terminal/",
	"/scan/",
	// HTMX fragments belong to a page view already counted at /.
	"/sections/",
	"/projects",
	"/contact-form",
	"/api/",
}

// Tracker is gin middleware that records page views.
type Tracker struct {
	store *Store
	async bool
	wg    sync.WaitGroup
}

// NewTracker records visits in background goroutines when async is set.
func NewTracker(store *Store, async bool) *Tracker {
	return &Tracker{store: store, async: async}
}

func (t *Tracker) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != "GET" || skipTracking(path) || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		ip, ua := c.ClientIP(), c.GetHeader("User-Agent")
		if t.async {
			t.wg.Add(1)
			go func() {
				defer t.wg.Done()
				t.record(ip, ua, path)
			}()
		} else {
			t.record(ip, ua, path)
		}
		c.Next()
	}
}

// Wait blocks until background writes finish.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

func (t *Tracker) record(ip, ua, path string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.store.RecordVisit(ctx, ip, ua, path); err != nil {
		t.store.logger.Error("analytics: record visit", "path", path, "err", err)
	}
}

func skipTracking(path string) bool {
	for _, p := range untrackedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// RunCleanup prunes old visits now and then every interval until ctx ends.
func (s *Store) RunCleanup(ctx context.Context, retention, interval time.Duration) {
	prune := func() {
		if _, err := s.Cleanup(ctx, retention); err != nil && ctx.Err() == nil {
			s.logger.Error("analytics: cleanup", "err", err)
		}
	}
	prune()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}
