package contact

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"intake/internal/constants"
	"intake/internal/logger"
	"intake/pkg/errors"
	"intake/pkg/ratelimit"
)

// SchemaSetup prepares the submissions table or collection.
type SchemaSetup interface {
	Setup(ctx context.Context) error
}

type Handler struct {
	service *Service
	reader  *Reader
	schema  SchemaSetup
	keyFunc ratelimit.KeyFunc
	logger  logger.Logger
}

func NewHandler(service *Service, reader *Reader, schema SchemaSetup, keyFunc ratelimit.KeyFunc, log logger.Logger) *Handler {
	if keyFunc == nil {
		keyFunc = ratelimit.ForwardedKey
	}
	return &Handler{
		service: service,
		reader:  reader,
		schema:  schema,
		keyFunc: keyFunc,
		logger:  log,
	}
}

// RegisterRoutes mounts the public contact routes. submitGuard runs before
// the body is read, admin guards wrap the admin routes.
func (h *Handler) RegisterRoutes(router *gin.Engine, submitGuard gin.HandlerFunc, adminGuards ...gin.HandlerFunc) {
	api := router.Group("/api")
	{
		submit := []gin.HandlerFunc{h.Submit}
		if submitGuard != nil {
			submit = append([]gin.HandlerFunc{submitGuard}, submit...)
		}
		api.POST("/contact", submit...)
		api.GET("/contact", h.Ping)

		admin := api.Group("", adminGuards...)
		{
			admin.GET("/admin/submissions", h.ListSubmissions)
			admin.GET("/setup-db", h.SetupDB)
		}
	}
}

// Submit godoc
// @Summary      Submit the contact form
// @Description  Validates the submission, emails the team, stores it and publishes a lead event
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        submission  body      object  true  "name, email, phone, org, message"
// @Success      200  {object}  SubmitResponse
// @Failure      400  {object}  ErrorResponse  "malformed, oversized or invalid body"
// @Failure      429  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /contact [post]
func (h *Handler) Submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxRequestBodyBytes)

	var input SubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil || input == nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrMalformedRequest))
		return
	}

	ctx := c.Request.Context()
	if _, err := h.service.Submit(ctx, h.keyFunc(c.Request), input); err != nil {
		if !errors.IsValidation(err) {
			h.logger.ErrorwCtx(ctx, "Contact form error", "error", err)
		}
		c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, SubmitResponse{
		Success: true,
		Message: MessageSubmitted,
	})
}

// Ping godoc
// @Summary      Contact endpoint liveness
// @Tags         contact
// @Produce      json
// @Success      200  {object}  PingResponse
// @Router       /contact [get]
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: MessageEndpointAlive})
}

// ListSubmissions godoc
// @Summary      List contact submissions
// @Description  All stored submissions, newest first
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ListResponse
// @Failure      401  {object}  StatusResponse
// @Failure      500  {object}  StatusResponse
// @Router       /admin/submissions [get]
func (h *Handler) ListSubmissions(c *gin.Context) {
	submissions, err := h.reader.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, StatusResponse{
			Success: false,
			Message: MessageFetchFailed,
		})
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Success: true,
		Data:    submissions,
	})
}

// SetupDB godoc
// @Summary      Create the submissions table
// @Description  Runs schema migrations for the configured database
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  StatusResponse
// @Failure      500  {object}  StatusResponse
// @Router       /setup-db [get]
func (h *Handler) SetupDB(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.schema.Setup(ctx); err != nil {
		h.logger.ErrorwCtx(ctx, "Schema setup failed", "error", err)
		c.JSON(http.StatusInternalServerError, StatusResponse{
			Success: false,
			Message: MessageSetupFailed,
		})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		Success: true,
		Message: MessageSetupDone,
	})
}
