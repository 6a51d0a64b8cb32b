package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/quire/pkg/auth"
	"github.com/papercomputeco/quire/pkg/llm"
	"github.com/papercomputeco/quire/pkg/render"
	"github.com/papercomputeco/quire/pkg/research"
	"github.com/papercomputeco/quire/pkg/sse"
	"github.com/papercomputeco/quire/pkg/subscription"
)

// MIMEApplicationNDJSON is the content type of the research stream.
const MIMEApplicationNDJSON = "application/x-ndjson"

// ResearchRequest is the body of POST /v1/research.
type ResearchRequest struct {
	Topic string `json:"topic"`
}

// StreamLine is one newline-delimited JSON object of the research stream.
// Fragment lines carry text as it arrives. The last line has Done set, or
// Error when the stream failed.
type StreamLine struct {
	Fragment  string        `json:"fragment,omitempty"`
	Done      bool          `json:"done,omitempty"`
	Error     string        `json:"error,omitempty"`
	HistoryID string        `json:"history_id,omitempty"`
	Remaining *int          `json:"remaining,omitempty"`
	Sections  []render.View `json:"sections,omitempty"`
}

// handleResearch streams a research request back as NDJSON.
func (s *Server) handleResearch(c *fiber.Ctx) error {
	var req ResearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: research.ErrEmptyTopic.Error()})
	}

	user := currentUser(c)
	if _, err := s.runner.Check(c.Context(), user); err != nil {
		switch {
		case errors.Is(err, subscription.ErrLimitReached):
			return c.Status(fiber.StatusPaymentRequired).JSON(llm.ErrorResponse{Error: msgLimitReached})
		case errors.Is(err, research.ErrSignInRequired):
			return c.Status(fiber.StatusUnauthorized).JSON(llm.ErrorResponse{Error: msgSignIn})
		default:
			s.logger.Error("checking subscription failed", "user_id", user.ID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to load subscription"})
		}
	}

	sess := research.NewSession(s.config.NewStreamer(currentToken(c)))

	c.Set(fiber.HeaderContentType, MIMEApplicationNDJSON)
	c.Set(fiber.HeaderCacheControl, "no-cache")

	// Each fragment is written to the pipe as soon as it is decoded and
	// fasthttp flushes every chunk, so clients see text live.
	pr, pw := io.Pipe()
	go s.streamResearch(pw, user, sess, topic)

	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// streamResearch runs the research and writes NDJSON lines to pw.
// The fasthttp request context is recycled once the handler returns, so
// the stream runs on its own context and is cancelled when the client goes
// away.
func (s *Server) streamResearch(pw *io.PipeWriter, user *auth.User, sess *research.Session, topic string) {
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	enc := json.NewEncoder(pw)
	outcome, err := s.runner.Run(ctx, user, sess, topic, func(f sse.Fragment) {
		if werr := enc.Encode(StreamLine{Fragment: string(f)}); werr != nil {
			cancel()
		}
	})

	final := StreamLine{}
	if outcome != nil {
		final.HistoryID = outcome.Item.ID.String()
		remaining := outcome.Subscription.Remaining()
		final.Remaining = &remaining
	}

	if err != nil {
		s.logger.Warn("research stream failed", "user_id", user.ID, "topic", topic, "error", err)
		final.Error = streamErrorMessage(err)
	} else {
		final.Done = true
		final.Sections = render.Views(outcome.Result.Content)
	}

	if werr := enc.Encode(final); werr != nil {
		s.logger.Debug("client went away before the final line", "error", werr)
	}
}

func streamErrorMessage(err error) string {
	if errors.Is(err, subscription.ErrLimitReached) {
		return msgLimitReached
	}
	if errors.Is(err, context.Canceled) {
		return "research cancelled"
	}
	return err.Error()
}
