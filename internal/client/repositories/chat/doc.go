// Package chat stores chatroom lists and message logs as JSON documents in a
// kv.Store, under the keys built by common.ChatroomsKey and
// common.MessagesKey.
//
// A document that no longer decodes is logged, deleted, and reported as
// absent. Readers therefore never see common.ErrStorageCorruption.
package chat
