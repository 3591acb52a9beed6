package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tiendalibre/marketplace-backend/internal/service"
)

type ConversationHandler struct {
	svc service.ConversationService
}

func NewConversationHandler(svc service.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

type ResolveConversationRequest struct {
	ParticipantID uint64  `json:"participantId"`
	ProductID     *uint64 `json:"productId"`
}

type ConversationListResponse struct {
	Success bool                   `json:"success"`
	Count   int                    `json:"count"`
	Data    []ConversationResponse `json:"data"`
}

type ConversationEnvelope struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Data    ConversationResponse `json:"data"`
}

func (h *ConversationHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(uint64)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	views, err := h.svc.List(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch conversations"))
	}
	resp := make([]ConversationResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, toConversationResponse(v))
	}
	return c.JSON(http.StatusOK, ConversationListResponse{Success: true, Count: len(resp), Data: resp})
}

func (h *ConversationHandler) Resolve(c echo.Context) error {
	uid, _ := c.Get("uid").(uint64)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req ResolveConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.ParticipantID == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "participantId is required"))
	}
	view, created, err := h.svc.Resolve(c.Request().Context(), uid, req.ParticipantID, req.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfConversation):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		case errors.Is(err, service.ErrInvalidParticipant):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to resolve conversation"))
	}
	status := http.StatusOK
	message := "Conversation already exists"
	if created {
		status = http.StatusCreated
		message = "Conversation created successfully"
	}
	return c.JSON(status, ConversationEnvelope{
		Success: true,
		Message: message,
		Data:    toConversationResponse(*view),
	})
}

func (h *ConversationHandler) Get(c echo.Context) error {
	uid, _ := c.Get("uid").(uint64)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	view, err := h.svc.Get(c.Request().Context(), convID, uid)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "conversation not found"))
		case errors.Is(err, service.ErrForbidden):
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not a participant"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch conversation"))
	}
	return c.JSON(http.StatusOK, ConversationEnvelope{Success: true, Data: toConversationResponse(*view)})
}

func (h *ConversationHandler) Delete(c echo.Context) error {
	uid, _ := c.Get("uid").(uint64)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	if err := h.svc.Delete(c.Request().Context(), convID, uid); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "conversation not found"))
		case errors.Is(err, service.ErrForbidden):
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not a participant"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to delete conversation"))
	}
	return c.JSON(http.StatusOK, NewAckResponse("Conversation deleted successfully"))
}
