package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/cyber-portfolio/internal/scanner"
	"github.com/Zachkp/cyber-portfolio/internal/sequencer"
)

func (s *Server) setupStreamRoutes(r *gin.Engine) {
	r.GET("/terminal/stream", s.terminalStream)
	r.GET("/scan/stream", s.scanStream)
}

func sseHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}

// offer puts v into a one-slot channel, replacing a value the reader has not
// picked up yet. Listeners run on timer callbacks and must never block.
func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// terminalStream mounts one sequencer per connection and pushes every state
// change until the client goes away.
func (s *Server) terminalStream(c *gin.Context) {
	cfg, err := s.opts.Portfolio.TerminalConfig()
	if err != nil {
		c.String(http.StatusInternalServerError, "terminal misconfigured")
		return
	}
	updates := make(chan sequencer.State, 1)
	seq, err := sequencer.New(s.opts.Portfolio.Terminal.Lines, cfg,
		sequencer.WithScheduler(s.opts.Scheduler),
		sequencer.WithListener(func(st sequencer.State) { offer(updates, st) }),
	)
	if err != nil {
		c.String(http.StatusInternalServerError, "terminal misconfigured")
		return
	}
	defer seq.Stop()

	seq.Start()
	sseHeaders(c)
	c.SSEvent("state", seq.State())
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closing:
			return
		case st := <-updates:
			c.SSEvent("state", st)
			c.Writer.Flush()
		}
	}
}

func (s *Server) scanStream(c *gin.Context) {
	updates := make(chan scanner.Progress, 1)
	sc, err := scanner.New(s.opts.ScanMessages, s.opts.ScanInterval,
		scanner.WithScheduler(s.opts.Scheduler),
		scanner.WithListener(func(p scanner.Progress) { offer(updates, p) }),
	)
	if err != nil {
		c.String(http.StatusInternalServerError, "scanner misconfigured")
		return
	}
	defer sc.Stop()

	sc.Start()
	sseHeaders(c)
	c.SSEvent("progress", sc.Progress())
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closing:
			return
		case p := <-updates:
			if p.Complete {
				c.SSEvent("complete", p)
				c.Writer.Flush()
				return
			}
			c.SSEvent("progress", p)
			c.Writer.Flush()
		}
	}
}
