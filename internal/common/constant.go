package common

// Durable storage keys.
const (
	UserSessionKey     = "user-session"
	SessionTokenKey    = "session-token"
	ChatroomsKeyPrefix = "chatrooms:"
	MessagesKeyPrefix  = "messages:"
)

// Session-scoped storage keys.
const (
	OTPCodeKey  = "otp-challenge-code"
	OTPPhoneKey = "otp-challenge-phone"
)

// ChatroomsKey returns the durable key holding the chatroom list of a user.
func ChatroomsKey(userID string) string {
	return ChatroomsKeyPrefix + userID
}

// MessagesKey returns the durable key holding the message log of a chatroom.
func MessagesKey(chatroomID string) string {
	return MessagesKeyPrefix + chatroomID
}
