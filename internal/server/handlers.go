package server

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/dateutil"
	"github.com/javiermolinar/coursetable/internal/grid"
	"github.com/javiermolinar/coursetable/internal/importer"
)

// errValidation marks malformed request input.
var errValidation = errors.New("invalid request")

// Default /api/layout viewport when width or height is omitted.
const (
	defaultLayoutWidth  = 800
	defaultLayoutHeight = 600
)

type courseRequest struct {
	Title      string `json:"title"`
	Location   string `json:"location"`
	Instructor string `json:"instructor"`
	DayOfWeek  int    `json:"day_of_week"`
	SlotCode   string `json:"slot_code"`
	Weeks      string `json:"weeks"` // "all", "odd", "1,3,5", "1-16周"
	WeekType   string `json:"week_type"`
	Reminder   bool   `json:"reminder"`
	Contact    string `json:"contact"`
	Property   string `json:"property"`
	Remarks    string `json:"remarks"`
}

type courseResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Location   string    `json:"location,omitempty"`
	Instructor string    `json:"instructor,omitempty"`
	DayOfWeek  int       `json:"day_of_week"`
	DayName    string    `json:"day_name"`
	SlotCode   string    `json:"slot_code"`
	SlotLabel  string    `json:"slot_label,omitempty"`
	Weeks      string    `json:"weeks"`
	Reminder   bool      `json:"reminder"`
	Contact    string    `json:"contact,omitempty"`
	Property   string    `json:"property,omitempty"`
	Remarks    string    `json:"remarks,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toResponse(e *course.Entry) courseResponse {
	r := courseResponse{
		ID:         e.ID,
		Title:      e.Title,
		Location:   e.Location,
		Instructor: e.Instructor,
		DayOfWeek:  e.DayOfWeek,
		DayName:    course.DayName(e.DayOfWeek),
		SlotCode:   e.SlotCode,
		Weeks:      e.Weeks.String(),
		Reminder:   e.ReminderEnabled,
		Contact:    e.Contact,
		Property:   e.Property,
		Remarks:    e.Remarks,
		CreatedAt:  e.CreatedAt,
	}
	if slots, err := e.Slots(); err == nil {
		r.SlotLabel = slots.Label()
	}
	return r
}

func toResponses(entries []*course.Entry) []courseResponse {
	out := make([]courseResponse, len(entries))
	for i, e := range entries {
		out[i] = toResponse(e)
	}
	return out
}

func (s *Server) entryFrom(req courseRequest) (*course.Entry, error) {
	weeks, err := importer.NormalizeWeeks(req.Weeks, req.WeekType, s.resolver.TotalWeeks)
	if err != nil {
		return nil, err
	}
	e, err := course.New(course.Params{
		Title:      req.Title,
		Location:   req.Location,
		Instructor: req.Instructor,
		DayOfWeek:  req.DayOfWeek,
		SlotCode:   req.SlotCode,
		Weeks:      weeks,
		Reminder:   req.Reminder,
		Contact:    req.Contact,
		Property:   req.Property,
		Remarks:    req.Remarks,
	}, s.resolver.TotalWeeks)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errValidation, err)
	}
	return e, nil
}

func intParam(c *fiber.Ctx, name string) (int, error) {
	n, err := strconv.Atoi(c.Params(name))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}

func (s *Server) listCourses(c *fiber.Ctx) error {
	f := course.Filter{
		Search:       c.Query("search"),
		Day:          c.QueryInt("day"),
		Week:         c.QueryInt("week"),
		TotalWeeks:   s.resolver.TotalWeeks,
		ReminderOnly: c.QueryBool("reminder"),
	}
	if f.Day != 0 && !course.ValidDay(f.Day) {
		return fmt.Errorf("%w: got %d", course.ErrInvalidDay, f.Day)
	}
	entries, err := s.repo.ListCourses(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(toResponses(entries))
}

func (s *Server) coursesInWeek(c *fiber.Ctx) error {
	week, err := intParam(c, "week")
	if err != nil {
		return err
	}
	entries, err := s.repo.ListCourses(c.UserContext(), course.Filter{Week: week, TotalWeeks: s.resolver.TotalWeeks})
	if err != nil {
		return err
	}
	return c.JSON(toResponses(entries))
}

func (s *Server) reminderCourses(c *fiber.Ctx) error {
	entries, err := s.repo.ListCourses(c.UserContext(), course.Filter{ReminderOnly: true})
	if err != nil {
		return err
	}
	return c.JSON(toResponses(entries))
}

func (s *Server) getCourse(c *fiber.Ctx) error {
	e, err := s.repo.GetCourse(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(e))
}

func (s *Server) createCourse(c *fiber.Ctx) error {
	var req courseRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %w", errValidation, err)
	}
	e, err := s.entryFrom(req)
	if err != nil {
		return err
	}
	if err := s.repo.CreateCourse(c.UserContext(), e); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toResponse(e))
}

func (s *Server) updateCourse(c *fiber.Ctx) error {
	ctx := c.UserContext()
	existing, err := s.repo.GetCourse(ctx, c.Params("id"))
	if err != nil {
		return err
	}

	var req courseRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %w", errValidation, err)
	}
	e, err := s.entryFrom(req)
	if err != nil {
		return err
	}
	e.ID = existing.ID
	e.CreatedAt = existing.CreatedAt

	if err := s.repo.UpdateCourse(ctx, e); err != nil {
		return err
	}
	return c.JSON(toResponse(e))
}

func (s *Server) setReminder(c *fiber.Ctx) error {
	raw := c.Query("shouldReminder", c.Query("enabled"))
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "shouldReminder must be true or false")
	}
	ctx := c.UserContext()
	if err := s.repo.SetReminder(ctx, c.Params("id"), enabled); err != nil {
		return err
	}
	e, err := s.repo.GetCourse(ctx, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(e))
}

func (s *Server) deleteCourse(c *fiber.Ctx) error {
	if err := s.repo.DeleteCourse(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type reminderResponse struct {
	Course   courseResponse `json:"course"`
	Week     int            `json:"week"`
	Start    time.Time      `json:"start"`
	End      time.Time      `json:"end"`
	RemindAt time.Time      `json:"remind_at"`
}

type skippedResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Error string `json:"error"`
}

func skippedOf(e *course.Entry, err error) skippedResponse {
	return skippedResponse{ID: e.ID, Title: e.Title, Error: err.Error()}
}

func (s *Server) upcoming(c *fiber.Ctx) error {
	entries, err := s.repo.ListCourses(c.UserContext(), course.Filter{ReminderOnly: true})
	if err != nil {
		return err
	}

	reminders, skipped := s.resolver.Upcoming(entries, s.resolver.Now(), s.advance)
	if limit := c.QueryInt("limit"); limit > 0 && limit < len(reminders) {
		reminders = reminders[:limit]
	}

	resp := struct {
		Reminders []reminderResponse `json:"reminders"`
		Skipped   []skippedResponse  `json:"skipped"`
	}{
		Reminders: make([]reminderResponse, 0, len(reminders)),
		Skipped:   make([]skippedResponse, 0, len(skipped)),
	}
	for _, r := range reminders {
		resp.Reminders = append(resp.Reminders, reminderResponse{
			Course:   toResponse(r.Entry),
			Week:     r.Week,
			Start:    r.Start,
			End:      r.End,
			RemindAt: r.RemindAt,
		})
	}
	for _, sk := range skipped {
		resp.Skipped = append(resp.Skipped, skippedOf(sk.Entry, sk.Err))
	}
	return c.JSON(resp)
}

type rectResponse struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type placedResponse struct {
	Course courseResponse `json:"course"`
	Rect   rectResponse   `json:"rect"`
	Color  int            `json:"color"`
}

type layoutResponse struct {
	Week      int               `json:"week"`
	Dates     []string          `json:"dates"`
	Placed    []placedResponse  `json:"placed"`
	Skipped   []skippedResponse `json:"skipped"`
	Conflicts [][2]int          `json:"conflicts"`
}

func (s *Server) layout(c *fiber.Ctx) error {
	week, err := intParam(c, "week")
	if err != nil {
		return err
	}
	vp := grid.Viewport{
		Width:  c.QueryInt("width", defaultLayoutWidth),
		Height: c.QueryInt("height", defaultLayoutHeight),
	}

	entries, err := s.repo.ListCourses(c.UserContext(), course.Filter{})
	if err != nil {
		return err
	}

	s.mu.Lock()
	res, err := s.engine.Layout(grid.Request{
		Entries:     entries,
		CurrentWeek: week,
		TotalWeeks:  s.resolver.TotalWeeks,
		Viewport:    vp,
	}, s.colors)
	if err == nil {
		s.colors = res.Colors
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	resp := layoutResponse{
		Week:      week,
		Placed:    make([]placedResponse, 0, len(res.Placed)),
		Skipped:   make([]skippedResponse, 0, len(res.Skipped)),
		Conflicts: make([][2]int, 0, len(res.Conflicts)),
	}
	for _, d := range dateutil.WeekDates(s.resolver.Anchor, week) {
		resp.Dates = append(resp.Dates, d.Format(dateutil.DateLayout))
	}
	for _, p := range res.Placed {
		resp.Placed = append(resp.Placed, placedResponse{
			Course: toResponse(p.Entry),
			Rect:   rectResponse{X: p.Rect.X, Y: p.Rect.Y, W: p.Rect.W, H: p.Rect.H},
			Color:  p.ColorIndex,
		})
	}
	for _, sk := range res.Skipped {
		resp.Skipped = append(resp.Skipped, skippedOf(sk.Entry, sk.Err))
	}
	for _, cf := range res.Conflicts {
		resp.Conflicts = append(resp.Conflicts, [2]int{cf.First, cf.Second})
	}
	return c.JSON(resp)
}
