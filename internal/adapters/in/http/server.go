package http

import (
	"errors"
	"net/http"

	"ticketing/internal/core/application/usecases/commands"
	"ticketing/internal/core/application/usecases/queries"
	"ticketing/internal/core/domain/model/kernel"
	"ticketing/internal/core/ports"
	"ticketing/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server exposes the ticketing use cases over HTTP.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	issueTicketHandler commands.IssueTicketCommandHandler
	retryTicketHandler commands.RetryTicketCommandHandler

	// Query handlers
	getPendingRetriesHandler queries.GetPendingRetriesQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	issueTicketHandler commands.IssueTicketCommandHandler,
	retryTicketHandler commands.RetryTicketCommandHandler,
	getPendingRetriesHandler queries.GetPendingRetriesQueryHandler,
) *Server {
	return &Server{
		issueTicketHandler:       issueTicketHandler,
		retryTicketHandler:       retryTicketHandler,
		getPendingRetriesHandler: getPendingRetriesHandler,
	}
}

// RegisterRoutes mounts the API endpoints on the given echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/orders/:orderId/ticket", s.IssueTicket)
	e.POST("/api/v1/orders/:orderId/ticket/retry", s.RetryTicket)
	e.GET("/api/v1/orders/pending-retries", s.GetPendingRetries)
	e.GET("/health", s.Health)
}

// ErrorResponse is the error payload returned by all endpoints.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TicketResponse is the success payload of issuance and retry endpoints.
type TicketResponse struct {
	OrderID      string `json:"orderId"`
	TicketNumber string `json:"ticketNumber"`
	Message      string `json:"message"`
}

// PendingRetriesResponse lists order ids whose issuance failed and may be retried.
type PendingRetriesResponse struct {
	OrderIDs []string `json:"orderIds"`
}

// IssueTicket handles POST /api/v1/orders/:orderId/ticket - starts ticket
// issuance for a paid order.
func (s *Server) IssueTicket(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid order id",
		})
	}

	cmd, err := commands.NewIssueTicketCommand(orderID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid ticket request: " + err.Error(),
		})
	}

	result, err := s.issueTicketHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.ticketingError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, TicketResponse{
		OrderID:      result.OrderID.String(),
		TicketNumber: result.TicketNumber,
		Message:      result.Message,
	})
}

// RetryTicket handles POST /api/v1/orders/:orderId/ticket/retry - retries
// issuance for an order whose previous attempt failed.
func (s *Server) RetryTicket(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid order id",
		})
	}

	cmd, err := commands.NewRetryTicketCommand(orderID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid retry request: " + err.Error(),
		})
	}

	result, err := s.retryTicketHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.ticketingError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, TicketResponse{
		OrderID:      result.OrderID.String(),
		TicketNumber: result.TicketNumber,
		Message:      result.Message,
	})
}

// GetPendingRetries handles GET /api/v1/orders/pending-retries - lists orders
// awaiting a retry after a failed issuance attempt.
func (s *Server) GetPendingRetries(ctx echo.Context) error {
	query := queries.NewGetPendingRetriesQuery()

	ids, err := s.getPendingRetriesHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve pending retries",
		})
	}

	response := PendingRetriesResponse{OrderIDs: make([]string, len(ids))}
	for i, id := range ids {
		response.OrderIDs[i] = id.String()
	}

	return ctx.JSON(http.StatusOK, response)
}

// Health handles GET /health - liveness probe.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ticketingError maps use case failures to HTTP statuses. A failed airline
// call is reported as a bad gateway so clients can tell retryable upstream
// failures from their own mistakes.
func (s *Server) ticketingError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, commands.ErrNotPending):
		return ctx.JSON(http.StatusNotFound, ErrorResponse{
			Code:    http.StatusNotFound,
			Message: err.Error(),
		})
	case errors.Is(err, errs.ErrObjectNotFound):
		return ctx.JSON(http.StatusNotFound, ErrorResponse{
			Code:    http.StatusNotFound,
			Message: err.Error(),
		})
	case errors.Is(err, commands.ErrInvalidOrderState):
		return ctx.JSON(http.StatusConflict, ErrorResponse{
			Code:    http.StatusConflict,
			Message: err.Error(),
		})
	case errors.Is(err, ports.ErrAirlineAPI):
		return ctx.JSON(http.StatusBadGateway, ErrorResponse{
			Code:    http.StatusBadGateway,
			Message: err.Error(),
		})
	default:
		return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}
}
