package models

import "time"

// PreviewLength caps Chatroom.LastMessage, in characters.
const PreviewLength = 100

// Chatroom is owned by exactly one user.
type Chatroom struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	UserID          string     `json:"userId"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastMessage     string     `json:"lastMessage,omitempty"`
	LastMessageTime *time.Time `json:"lastMessageTime,omitempty"`
}

// Message is immutable once appended to its chatroom's log.
type Message struct {
	ID         string    `json:"id"`
	ChatroomID string    `json:"chatroomId"`
	Content    string    `json:"content"`
	IsUser     bool      `json:"isUser"`
	Timestamp  time.Time `json:"timestamp"`
	ImageURL   string    `json:"imageUrl,omitempty"`
}

// HasImage reports whether the message carries an inline image.
func (m *Message) HasImage() bool {
	return m.ImageURL != ""
}
