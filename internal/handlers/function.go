package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"function-gateway/internal/apierror"
	"function-gateway/internal/dispatch"
	"function-gateway/internal/faas"
	"function-gateway/internal/middleware"
	"function-gateway/internal/response"
)

// FunctionHandler exposes the function's handlers over HTTP
type FunctionHandler struct {
	dispatcher *dispatch.Dispatcher
	contexts   faas.ContextFactory
	bodyMode   faas.BodyMode
}

// NewFunctionHandler creates a new function handler
func NewFunctionHandler(dispatcher *dispatch.Dispatcher, contexts faas.ContextFactory, bodyMode faas.BodyMode) *FunctionHandler {
	return &FunctionHandler{
		dispatcher: dispatcher,
		contexts:   contexts,
		bodyMode:   bodyMode,
	}
}

// @Summary Invoke the function
// @Description Runs the handler named by the h query parameter, or the main handler when it is absent, after validating the body against the handler's schema. Every path is accepted.
// @Tags function
// @Accept json
// @Produce json
// @Param h query string false "Handler selector" default(main)
// @Param payload body object false "Function payload"
// @Success 200 {object} object
// @Failure 404 {object} apierror.Envelope "HANDLER_NOT_FOUND"
// @Failure 413 {object} apierror.Envelope
// @Failure 500 {object} apierror.Envelope
// @Failure 502 {object} apierror.Envelope "VALIDATION_ERROR"
// @Security BearerAuth
// @Router / [post]
func (h *FunctionHandler) Invoke(c *gin.Context) {
	if !methodAllowed(c.Request.Method) {
		middleware.Abort(c, apierror.FromStatus(http.StatusMethodNotAllowed))
		return
	}

	h.serve(c, h.dispatcher.Dispatch)
}

// Route adapts a fixed-path function route to gin
func (h *FunctionHandler) Route(handler faas.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.serve(c, func(ctx context.Context, event *faas.Event, fctx *faas.Context) (*faas.Result, error) {
			result, err := handler(ctx, event, fctx)
			if err != nil {
				return nil, apierror.From(err)
			}
			return result, nil
		})
	}
}

func (h *FunctionHandler) serve(c *gin.Context, invoke faas.Handler) {
	var raw []byte
	if c.Request.Body != nil {
		var err error
		raw, err = io.ReadAll(c.Request.Body)
		if err != nil {
			middleware.Abort(c, bodyError(err))
			return
		}
	}

	event := faas.NewEvent(c.Request, raw, h.bodyMode)
	fctx := h.contexts.New(c.GetString(middleware.RequestIDKey))

	result, err := invoke(c.Request.Context(), event, fctx)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	formatted, err := response.Format(result)
	if err != nil {
		middleware.Abort(c, apierror.Wrap(err))
		return
	}

	logrus.WithFields(logrus.Fields{
		"request_id": fctx.RequestID,
		"selector":   dispatch.Selector(event),
		"status":     formatted.StatusCode,
	}).Debug("Function invoked")

	response.Write(c, formatted)
}
