package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medibook/booking-api/internal/apperr"
	"github.com/medibook/booking-api/internal/config"
	"github.com/medibook/booking-api/internal/repository"
	"github.com/medibook/booking-api/internal/services"
	"github.com/medibook/booking-api/internal/storage"
	"github.com/medibook/booking-api/internal/utils"
)

// Handler carries every capability the HTTP layer needs. Everything is
// constructed once in main and injected here.
type Handler struct {
	Users        repository.UserRepository
	Doctors      repository.DoctorRepository
	Appointments repository.AppointmentRepository

	Booking      *services.BookingService
	Cancellation *services.CancellationService
	Payments     *services.PaymentService

	Uploader storage.Uploader
	Tokens   *utils.TokenIssuer
	Cfg      *config.Config
	Log      *zap.Logger
}

func NewHandler(
	users repository.UserRepository,
	doctors repository.DoctorRepository,
	appointments repository.AppointmentRepository,
	booking *services.BookingService,
	cancellation *services.CancellationService,
	payments *services.PaymentService,
	uploader storage.Uploader,
	tokens *utils.TokenIssuer,
	cfg *config.Config,
	log *zap.Logger,
) *Handler {
	return &Handler{
		Users:        users,
		Doctors:      doctors,
		Appointments: appointments,
		Booking:      booking,
		Cancellation: cancellation,
		Payments:     payments,
		Uploader:     uploader,
		Tokens:       tokens,
		Cfg:          cfg,
		Log:          log,
	}
}

// statusFor maps a failure kind to the HTTP status the client should see.
// Upstream failures get 502 so clients can tell retryable infrastructure
// trouble from business-rule rejections.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnavailable, apperr.KindSlotTaken, apperr.KindAlreadyCancelled, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusForbidden
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindPaymentNotCompleted:
		return http.StatusPaymentRequired
	case apperr.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail renders a service error as the API's discriminated failure body.
func (h *Handler) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	message := "Something went wrong"
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if kind == apperr.KindUnknown || kind == apperr.KindUpstream {
		h.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(statusFor(kind), gin.H{"success": false, "message": message, "errorKind": kind.String()})
}

func (h *Handler) ok(c *gin.Context, body gin.H) {
	body["success"] = true
	c.JSON(http.StatusOK, body)
}
