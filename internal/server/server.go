// Package server exposes the timetable over a JSON REST API.
package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/grid"
	"github.com/javiermolinar/coursetable/internal/importer"
	"github.com/javiermolinar/coursetable/internal/occurrence"
	"github.com/javiermolinar/coursetable/internal/timeslot"
)

// requestTimeout bounds each handler's storage calls.
const requestTimeout = 5 * time.Second

// Server serves the REST API.
type Server struct {
	app      *fiber.App
	repo     course.Repository
	resolver *occurrence.Resolver
	engine   *grid.Engine
	advance  time.Duration
	log      *zap.Logger

	// colors keeps course colors stable between layout requests for the
	// life of the process. It is never reset, so a deleted course keeps its
	// color if its title comes back.
	mu     sync.Mutex
	colors grid.ColorAssignment
}

// Options configures a Server.
type Options struct {
	Resolver *occurrence.Resolver
	// Grid configures /api/layout; zero means grid.DefaultOptions (pixels).
	Grid    grid.Options
	Advance time.Duration
	Log     *zap.Logger
}

// New creates a Server with all routes registered.
func New(repo course.Repository, opts Options) *Server {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Grid == (grid.Options{}) {
		opts.Grid = grid.DefaultOptions()
	}
	if opts.Resolver == nil {
		opts.Resolver = occurrence.New(time.Now(), course.DefaultTotalWeeks)
	}
	s := &Server{
		repo:     repo,
		resolver: opts.Resolver,
		engine:   grid.NewEngine(opts.Grid),
		advance:  opts.Advance,
		log:      opts.Log,
		colors:   grid.NewColorAssignment(),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "coursetable",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(s.requestContext)
	s.routes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	api := s.app.Group("/api")

	courses := api.Group("/courses")
	courses.Get("/", s.listCourses)
	courses.Get("/week/:week", s.coursesInWeek)
	courses.Get("/reminders", s.reminderCourses)
	courses.Get("/:id", s.getCourse)
	courses.Post("/", s.createCourse)
	courses.Put("/:id", s.updateCourse)
	courses.Put("/:id/reminder", s.setReminder)
	courses.Delete("/:id", s.deleteCourse)

	api.Get("/reminders/upcoming", s.upcoming)
	api.Get("/layout/:week", s.layout)
}

// Listen serves on addr until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() { errc <- s.app.Listen(addr) }()
	s.log.Info("server listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.log.Info("server shutting down")
		return s.app.ShutdownWithTimeout(requestTimeout)
	}
}

// requestContext tags the request with an ID, bounds it with a timeout and
// logs it once handled.
func (s *Server) requestContext(c *fiber.Ctx) error {
	id := c.Get(fiber.HeaderXRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(fiber.HeaderXRequestID, id)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	c.SetUserContext(ctx)

	start := time.Now()
	err := c.Next()
	if err != nil {
		// Let the error handler set the final status before logging.
		if herr := s.app.ErrorHandler(c, err); herr != nil {
			return herr
		}
	}
	s.log.Debug("request",
		zap.String("id", id),
		zap.String("method", c.Method()),
		zap.String("path", c.OriginalURL()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("took", time.Since(start)))
	return nil
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := statusOf(err)
	if code == fiber.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.OriginalURL()), zap.Error(err))
	}
	return c.Status(code).JSON(errorBody{Error: err.Error()})
}

func statusOf(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, course.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, course.ErrSlotConflict):
		return fiber.StatusConflict
	case errors.Is(err, course.ErrEmptyTitle),
		errors.Is(err, course.ErrInvalidDay),
		errors.Is(err, course.ErrInvalidWeekPattern),
		errors.Is(err, timeslot.ErrParse),
		errors.Is(err, importer.ErrUnknownWeekFormat),
		errors.Is(err, grid.ErrInvalidViewport),
		errors.Is(err, errValidation):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
