// Package server serves rendered frames and the contact form over HTTP.
package server

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/san-kum/driftfield/internal/contact"
	"github.com/san-kum/driftfield/internal/effect"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/surface"
)

const (
	maxSide   = 2048
	maxTicks  = 5000
	maxFrames = 240
	gifDelay  = 3

	// maxWork caps pixels touched per request, summed over every drawn
	// tick; maxGIFBytes caps the frames held before encoding.
	maxWork     = 256 << 20
	maxGIFBytes = 256 << 20
)

var (
	errBadParam = errors.New("server: bad query parameter")
	errTooLarge = errors.New("server: requested render is too large")
)

type Config struct {
	Registry *effect.Registry
	Contact  *contact.Service
	Logger   *slog.Logger
	// Defaults fills in whatever a request leaves out.
	Defaults field.Options
	// AdminToken guards the submission listing. Empty leaves it
	// unregistered.
	AdminToken string
}

type Server struct {
	cfg    Config
	engine *gin.Engine
}

// New builds the router. A nil Contact service disables the form routes.
func New(cfg Config) *Server {
	if cfg.Registry == nil {
		cfg.Registry = effect.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Defaults.Width <= 0 {
		cfg.Defaults.Width = 800
	}
	if cfg.Defaults.Height <= 0 {
		cfg.Defaults.Height = 600
	}
	if cfg.Defaults.Theme == "" {
		cfg.Defaults.Theme = field.Dark
	}

	s := &Server{cfg: cfg}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(cfg.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "effects": cfg.Registry.List()})
	})
	r.GET("/frame.png", s.framePNG)
	r.GET("/frame.svg", s.frameSVG)
	r.GET("/field.gif", s.fieldGIF)

	if cfg.Contact != nil {
		api := r.Group("/api")
		api.POST("/contact", s.submitContact)
		if cfg.AdminToken != "" {
			admin := api.Group("/contact")
			admin.Use(adminAuth(cfg.AdminToken))
			admin.GET("/recent", s.recentContacts)
		}
	}

	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.cfg.Logger.Info("listening", "addr", addr)
	return s.engine.Run(addr)
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}

// adminAuth accepts "Authorization: Bearer <token>".
func adminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// request is one render job parsed from the query string.
type request struct {
	effect string
	opts   field.Options
	ticks  int
	frames int
}

// parse reads a render job. animated adds the GIF frames to the work
// budget.
func (s *Server) parse(c *gin.Context, animated bool) (request, error) {
	req := request{
		effect: c.DefaultQuery("effect", "drift"),
		opts:   s.cfg.Defaults,
		ticks:  60,
		frames: 60,
	}
	if _, err := s.cfg.Registry.Factory(req.effect); err != nil {
		return req, err
	}
	req.opts.Count = s.cfg.Registry.DefaultCount(req.effect)

	ints := []struct {
		key    string
		lo, hi int
		assign func(int)
	}{
		{"w", 1, maxSide, func(v int) { req.opts.Width = float64(v) }},
		{"h", 1, maxSide, func(v int) { req.opts.Height = float64(v) }},
		{"count", 0, 5000, func(v int) { req.opts.Count = v }},
		{"ticks", 0, maxTicks, func(v int) { req.ticks = v }},
		{"frames", 1, maxFrames, func(v int) { req.frames = v }},
	}
	for _, p := range ints {
		raw, ok := c.GetQuery(p.key)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < p.lo || v > p.hi {
			return req, errBadParam
		}
		p.assign(v)
	}

	if raw, ok := c.GetQuery("seed"); ok {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return req, errBadParam
		}
		req.opts.Seed = seed
	}
	if raw, ok := c.GetQuery("theme"); ok {
		t, err := field.ParseTheme(raw)
		if err != nil {
			return req, err
		}
		req.opts.Theme = t
	}
	if err := req.opts.Validate(); err != nil {
		return req, err
	}

	pixels := int64(req.opts.Width) * int64(req.opts.Height)
	draws := int64(req.ticks) + 1
	if animated {
		draws += int64(req.frames)
		if pixels*4*int64(req.frames) > maxGIFBytes {
			return req, errTooLarge
		}
	}
	if pixels*draws > maxWork {
		return req, errTooLarge
	}
	return req, nil
}

// run steps a fresh simulation ticks times, drawing each tick so faded
// trails build up the way they do live.
func (s *Server) run(req request, dst surface.Surface, ticks int) (field.Simulation, error) {
	sim, err := s.cfg.Registry.Get(req.effect, req.opts)
	if err != nil {
		return nil, err
	}
	sim.Draw(dst)
	for i := 0; i < ticks; i++ {
		sim.Step()
		sim.Draw(dst)
	}
	return sim, nil
}

func (s *Server) raster(req request) (*surface.Raster, error) {
	r, err := surface.NewRaster(int(req.opts.Width), int(req.opts.Height))
	if err != nil {
		return nil, err
	}
	r.Background = field.Background(req.opts.Theme)
	r.Clear()
	return r, nil
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (s *Server) framePNG(c *gin.Context) {
	req, err := s.parse(c, false)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	r, err := s.raster(req)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	if _, err := s.run(req, r, req.ticks); err != nil {
		s.badRequest(c, err)
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Image()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// frameSVG records only the last tick; the recorder has no persistent
// pixels, so trails are not shown.
func (s *Server) frameSVG(c *gin.Context) {
	req, err := s.parse(c, false)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	rec := surface.NewRecorder(int(req.opts.Width), int(req.opts.Height))
	sim, err := s.cfg.Registry.Get(req.effect, req.opts)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	for i := 0; i < req.ticks; i++ {
		sim.Step()
	}
	sim.Draw(rec)
	c.Data(http.StatusOK, "image/svg+xml", []byte(surface.RecorderToSVG(rec, field.Background(req.opts.Theme))))
}

func (s *Server) fieldGIF(c *gin.Context) {
	req, err := s.parse(c, true)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	r, err := s.raster(req)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	sim, err := s.run(req, r, req.ticks)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	frames := make([]*image.RGBA, 0, req.frames)
	for i := 0; i < req.frames; i++ {
		sim.Step()
		sim.Draw(r)
		frames = append(frames, r.Snapshot())
	}
	var buf bytes.Buffer
	if err := surface.EncodeGIF(&buf, frames, gifDelay); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/gif", buf.Bytes())
}

func (s *Server) submitContact(c *gin.Context) {
	var sub contact.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, contact.Result{Success: false, Message: "invalid request body"})
		return
	}

	res, err := s.cfg.Contact.Submit(c.Request.Context(), sub)
	switch {
	case errors.Is(err, contact.ErrInvalidSubmission):
		c.JSON(http.StatusBadRequest, res)
	case err != nil:
		s.cfg.Logger.Error("contact submission failed", "email", sub.Email, "err", err)
		c.JSON(http.StatusBadGateway, res)
	default:
		c.JSON(http.StatusOK, res)
	}
}

func (s *Server) recentContacts(c *gin.Context) {
	if s.cfg.Contact.Log == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no contact log configured"})
		return
	}
	n, err := strconv.Atoi(c.DefaultQuery("n", "20"))
	if err != nil || n <= 0 {
		s.badRequest(c, errBadParam)
		return
	}
	entries, err := s.cfg.Contact.Log.Recent(c.Request.Context(), n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sent, failed, err := s.cfg.Contact.Log.Counts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "sent": sent, "failed": failed})
}
