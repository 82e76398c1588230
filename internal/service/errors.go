package service

import "github.com/agilizaapp/web-menu-sub000/internal/domain"

// Service-level errors shared across checkout and payment.
var (
	ErrSessionNotFound = &domain.Error{Code: domain.ENOTFOUND, Message: "Session not found"}
	ErrOrderNotFound   = &domain.Error{Code: domain.ENOTFOUND, Message: "Order not found"}

	// ErrInvalidStep indicates an operation was invoked outside the checkout
	// step that owns it.
	ErrInvalidStep = &domain.Error{Code: domain.EINVALID, Message: "Operation not allowed in the current checkout step"}

	// ErrNoActiveOrder indicates a payment action before any order exists.
	ErrNoActiveOrder = &domain.Error{Code: domain.EINVALID, Message: "No active order for this payment session"}

	// ErrPixExpired indicates the PIX countdown ran out; copy and QR actions
	// stay disabled until the user explicitly renews the countdown.
	ErrPixExpired = &domain.Error{Code: domain.EPAYMENT, Message: "PIX code expired; renew the countdown to continue"}

	// ErrPixNotStarted indicates a PIX action before the session produced a code.
	ErrPixNotStarted = &domain.Error{Code: domain.EINVALID, Message: "PIX payment has not been started"}

	// ErrPhoneIncomplete indicates registration details were submitted before
	// a full phone number was captured.
	ErrPhoneIncomplete = &domain.Error{Code: domain.EINVALID, Message: "A complete phone number is required first"}
)
