package http

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	CronTypeEndAuctions = "end-auctions"
	CronTypeReminders   = "reminders"
)

type CronResults struct {
	EndedCount       *int           `json:"ended_count,omitempty"`
	Errors           []string       `json:"errors,omitempty"`
	Reminders        map[string]int `json:"reminders,omitempty"`
	EndAuctionsError string         `json:"end_auctions_error,omitempty"`
	RemindersError   string         `json:"reminders_error,omitempty"`
}

type CronResponse struct {
	Success   bool        `json:"success"`
	Results   CronResults `json:"results"`
	Duration  string      `json:"duration"`
	Timestamp time.Time   `json:"timestamp"`
}

// Cron is the entry point of the external scheduler. ?type selects the job;
// without it both jobs run. A job failure is reported in the results, the
// response is still 200.
func (h *AuctionHandler) Cron(c *fiber.Ctx) error {
	if !h.authorizeCron(c) {
		log.Warn("Unauthorized cron trigger", zap.String("remote_addr", c.IP()))
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "unauthorized", Code: "UNAUTHORIZED"})
	}

	jobType := c.Query("type")
	switch jobType {
	case "", CronTypeEndAuctions, CronTypeReminders:
	default:
		return respondBadRequest(c, fmt.Sprintf("unknown cron type %q", jobType), nil)
	}

	start := time.Now()
	ctx := c.UserContext()
	var results CronResults

	if jobType == "" || jobType == CronTypeEndAuctions {
		report, err := h.service.SweepExpired(ctx)
		if err != nil {
			results.EndAuctionsError = err.Error()
		} else {
			ended := report.EndedCount
			results.EndedCount = &ended
			for _, e := range report.Errors {
				results.Errors = append(results.Errors, e.Error())
			}
		}
	}

	if jobType == "" || jobType == CronTypeReminders {
		report, err := h.service.SendEndingReminders(ctx)
		if err != nil {
			results.RemindersError = err.Error()
		} else {
			results.Reminders = make(map[string]int, len(report.Sent))
			for horizon, n := range report.Sent {
				results.Reminders[horizon.String()] = n
			}
			for _, e := range report.Errors {
				results.Errors = append(results.Errors, e.Error())
			}
		}
	}

	elapsed := time.Since(start)
	log.Info("Cron trigger finished",
		zap.String("type", jobType),
		zap.Duration("duration", elapsed),
	)
	return c.JSON(CronResponse{
		Success:   true,
		Results:   results,
		Duration:  fmt.Sprintf("%dms", elapsed.Milliseconds()),
		Timestamp: time.Now().UTC(),
	})
}

// authorizeCron accepts the secret from, in order of precedence, the
// Authorization header (with or without "Bearer "), X-Cron-Secret or the
// secret query parameter. The first credential present is the only one
// checked. No configured secret means every request is rejected.
func (h *AuctionHandler) authorizeCron(c *fiber.Ctx) bool {
	if h.cronSecret == "" {
		return false
	}

	var token string
	switch {
	case c.Get(fiber.HeaderAuthorization) != "":
		token = c.Get(fiber.HeaderAuthorization)
		if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
			token = strings.TrimSpace(token[7:])
		}
	case c.Get("X-Cron-Secret") != "":
		token = c.Get("X-Cron-Secret")
	default:
		token = c.Query("secret")
	}
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.cronSecret)) == 1
}
