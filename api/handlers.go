package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/papercomputeco/quire/pkg/export"
	"github.com/papercomputeco/quire/pkg/history"
	"github.com/papercomputeco/quire/pkg/llm"
	"github.com/papercomputeco/quire/pkg/render"
	"github.com/papercomputeco/quire/pkg/subscription"
)

const (
	msgSignIn       = "Please sign in to start researching."
	msgLimitReached = "You've reached your monthly research limit. Upgrade your plan for more."
)

// RenderRequest is the body of POST /v1/render.
type RenderRequest struct {
	Content string `json:"content"`
}

// RenderResponse lists the parsed sections of the content.
type RenderResponse struct {
	Sections []render.View `json:"sections"`
}

// UsageResponse describes the caller's plan and usage this period.
type UsageResponse struct {
	Plan          subscription.PlanID `json:"plan"`
	Status        string              `json:"status"`
	ResearchCount int                 `json:"research_count"`
	MonthlyLimit  int                 `json:"monthly_limit"`
	Remaining     int                 `json:"remaining"`
	PeriodStart   time.Time           `json:"period_start"`
}

// HistoryListResponse lists the caller's recent research.
type HistoryListResponse struct {
	Count int             `json:"count"`
	Items []*history.Item `json:"items"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListPlans returns the purchasable plans.
func (s *Server) handleListPlans(c *fiber.Ctx) error {
	return c.JSON(subscription.Plans())
}

// handleRender splits content into sections. With ?format=html the
// trusted HTML rendering is returned instead of the section list.
func (s *Server) handleRender(c *fiber.Ctx) error {
	var req RenderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	if c.Query("format") == "html" {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(render.HTML(render.Sections(req.Content)))
	}

	return c.JSON(RenderResponse{Sections: render.Views(req.Content)})
}

// handleUsage returns the caller's subscription, creating a free one on
// first use.
func (s *Server) handleUsage(c *fiber.Ctx) error {
	user := currentUser(c)

	sub, err := subscription.Ensure(c.Context(), s.driver, user.ID, time.Now())
	if err != nil {
		s.logger.Error("loading subscription failed", "user_id", user.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to load subscription"})
	}

	return c.JSON(UsageResponse{
		Plan:          sub.Plan,
		Status:        sub.Status,
		ResearchCount: sub.ResearchCount,
		MonthlyLimit:  sub.MonthlyLimit,
		Remaining:     sub.Remaining(),
		PeriodStart:   sub.PeriodStart,
	})
}

// handleListHistory returns the caller's most recent research, newest first.
func (s *Server) handleListHistory(c *fiber.Ctx) error {
	user := currentUser(c)

	items, err := s.driver.List(c.Context(), user.ID)
	if err != nil {
		s.logger.Error("listing history failed", "user_id", user.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list history"})
	}
	if items == nil {
		items = []*history.Item{}
	}

	return c.JSON(HistoryListResponse{
		Count: len(items),
		Items: items,
	})
}

// handleClearHistory removes all of the caller's history.
func (s *Server) handleClearHistory(c *fiber.Ctx) error {
	user := currentUser(c)

	if err := s.driver.Clear(c.Context(), user.ID); err != nil {
		s.logger.Error("clearing history failed", "user_id", user.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to clear history"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// handleGetHistory returns one history item with its content.
func (s *Server) handleGetHistory(c *fiber.Ctx) error {
	item, ferr := s.lookupHistory(c)
	if ferr != nil {
		return c.Status(ferr.Code).JSON(llm.ErrorResponse{Error: ferr.Message})
	}
	return c.JSON(item)
}

// handleExportHistory downloads a history item as a document.
func (s *Server) handleExportHistory(c *fiber.Ctx) error {
	format := export.FormatMarkdown
	if q := c.Query("format"); q != "" {
		var err error
		format, err = export.ParseFormat(q)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
		}
	}

	item, ferr := s.lookupHistory(c)
	if ferr != nil {
		return c.Status(ferr.Code).JSON(llm.ErrorResponse{Error: ferr.Message})
	}

	doc, err := export.Render(item.Topic, item.Content, format)
	if err != nil {
		s.logger.Error("exporting history failed", "history_id", item.ID.String(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to export document"})
	}

	c.Attachment(doc.Filename)
	c.Set(fiber.HeaderContentType, doc.ContentType)
	return c.Send(doc.Body)
}

// lookupHistory loads the :id item owned by the caller.
func (s *Server) lookupHistory(c *fiber.Ctx) (*history.Item, *fiber.Error) {
	user := currentUser(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid history id")
	}

	item, err := s.driver.Get(c.Context(), user.ID, id)
	if errors.Is(err, history.ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "history item not found")
	}
	if err != nil {
		s.logger.Error("loading history failed", "history_id", id.String(), "error", err)
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to load history")
	}

	return item, nil
}
