package http

import (
	"errors"

	"github.com/cristianortiz/bidmaster/internal/auction/domain"
	"github.com/cristianortiz/bidmaster/internal/shared/logger"
	"github.com/cristianortiz/bidmaster/internal/shared/validator"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details []validator.FieldError `json:"details,omitempty"`
}

var rejectionStatus = []struct {
	err    error
	status int
}{
	{domain.ErrAuctionNotFound, fiber.StatusNotFound},
	{domain.ErrInvalidAmount, fiber.StatusUnprocessableEntity},
	{domain.ErrInvalidAuction, fiber.StatusUnprocessableEntity},
	{domain.ErrSelfBid, fiber.StatusForbidden},
	{domain.ErrNotSeller, fiber.StatusForbidden},
	{domain.ErrBidTooLow, fiber.StatusConflict},
	{domain.ErrAuctionNotActive, fiber.StatusConflict},
	{domain.ErrAuctionExpired, fiber.StatusConflict},
	{domain.ErrBuyNowUnavailable, fiber.StatusConflict},
	{domain.ErrAlreadySettled, fiber.StatusConflict},
}

// respondError maps expected rejections to 4xx and anything else to a 500
// that does not leak the underlying error.
func respondError(c *fiber.Ctx, err error) error {
	for _, rs := range rejectionStatus {
		if errors.Is(err, rs.err) {
			return c.Status(rs.status).JSON(ErrorResponse{
				Error: rejectionMessage(err),
				Code:  domain.RejectionCode(err),
			})
		}
	}
	log.Error("Request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: "internal server error",
		Code:  "INTERNAL_ERROR",
	})
}

func respondBadRequest(c *fiber.Ctx, message string, details []validator.FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   message,
		Code:    "VALIDATION_FAILED",
		Details: details,
	})
}

func rejectionMessage(err error) string {
	var tooLow *domain.BidTooLowError
	if errors.As(err, &tooLow) {
		return tooLow.Error()
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
