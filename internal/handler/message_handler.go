package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tiendalibre/marketplace-backend/internal/service"
)

type MessageHandler struct {
	svc service.MessageService
}

func NewMessageHandler(svc service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

type MessageListResponse struct {
	Success    bool               `json:"success"`
	Data       []MessageResponse  `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

type MessageEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    MessageResponse `json:"data"`
}

func (h *MessageHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(uint64)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	views, pagination, err := h.svc.List(c.Request().Context(), convID, uid, page, limit)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "conversation not found"))
		case errors.Is(err, service.ErrForbidden):
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not a participant"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch messages"))
	}
	resp := make([]MessageResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, toMessageResponse(v))
	}
	return c.JSON(http.StatusOK, MessageListResponse{
		Success: true,
		Data:    resp,
		Pagination: PaginationResponse{
			Total: pagination.Total,
			Page:  pagination.Page,
			Pages: pagination.Pages,
		},
	})
}

func (h *MessageHandler) Send(c echo.Context) error {
	uid, _ := c.Get("uid").(uint64)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	view, err := h.svc.Send(c.Request().Context(), convID, uid, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "conversation not found"))
		case errors.Is(err, service.ErrForbidden):
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not a participant"))
		case errors.Is(err, service.ErrEmptyContent):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		case errors.Is(err, service.ErrContentTooLong):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to send message"))
	}
	return c.JSON(http.StatusCreated, MessageEnvelope{
		Success: true,
		Message: "Message sent successfully",
		Data:    toMessageResponse(*view),
	})
}

// MarkRead is idempotent; calling it with nothing unread still returns ok.
func (h *MessageHandler) MarkRead(c echo.Context) error {
	uid, _ := c.Get("uid").(uint64)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	if err := h.svc.MarkRead(c.Request().Context(), convID, uid); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "conversation not found"))
		case errors.Is(err, service.ErrForbidden):
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not a participant"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to mark read"))
	}
	return c.JSON(http.StatusOK, NewAckResponse("Messages marked as read"))
}
