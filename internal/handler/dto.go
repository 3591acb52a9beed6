package handler

import (
	"time"

	"github.com/tiendalibre/marketplace-backend/internal/model"
	"github.com/tiendalibre/marketplace-backend/internal/service"
)

type ParticipantResponse struct {
	ID       uint64  `json:"id"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
	Email    string  `json:"email"`
}

type SenderResponse struct {
	ID       uint64  `json:"id"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
}

type ProductResponse struct {
	ID    uint64  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image *string `json:"image"`
}

type MessageResponse struct {
	ID             uint64          `json:"id"`
	ConversationID uint64          `json:"conversationId"`
	Sender         *SenderResponse `json:"sender"`
	Content        string          `json:"content"`
	IsRead         bool            `json:"isRead"`
	CreatedAt      string          `json:"createdAt"`
}

// ConversationResponse carries both participants unfiltered; hiding "me"
// from the list is a presentation concern, not an API one.
type ConversationResponse struct {
	ID           uint64                `json:"id"`
	Participants []ParticipantResponse `json:"participants"`
	Product      *ProductResponse      `json:"product"`
	LastMessage  *MessageResponse      `json:"lastMessage"`
	UnreadCount  int64                 `json:"unreadCount"`
	CreatedAt    string                `json:"createdAt"`
	UpdatedAt    string                `json:"updatedAt"`
}

type PaginationResponse struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

func toSenderResponse(u *model.User) *SenderResponse {
	if u == nil {
		return nil
	}
	return &SenderResponse{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

func toMessageResponse(v service.MessageView) MessageResponse {
	return MessageResponse{
		ID:             v.Message.ID,
		ConversationID: v.Message.ConversationID,
		Sender:         toSenderResponse(v.Sender),
		Content:        v.Message.Content,
		IsRead:         v.Message.IsRead,
		CreatedAt:      v.Message.CreatedAt.Format(time.RFC3339),
	}
}

func toConversationResponse(v service.ConversationView) ConversationResponse {
	participants := make([]ParticipantResponse, 0, len(v.Participants))
	for _, u := range v.Participants {
		participants = append(participants, ParticipantResponse{
			ID:       u.ID,
			Username: u.Username,
			Avatar:   u.Avatar,
			Email:    u.Email,
		})
	}
	var product *ProductResponse
	if v.Product != nil {
		product = &ProductResponse{
			ID:    v.Product.ID,
			Name:  v.Product.Name,
			Price: v.Product.Price,
			Image: v.Product.Image,
		}
	}
	var last *MessageResponse
	if v.LastMessage != nil {
		m := toMessageResponse(*v.LastMessage)
		last = &m
	}
	return ConversationResponse{
		ID:           v.Conversation.ID,
		Participants: participants,
		Product:      product,
		LastMessage:  last,
		UnreadCount:  v.UnreadCount,
		CreatedAt:    v.Conversation.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    v.Conversation.UpdatedAt.Format(time.RFC3339),
	}
}
