// Package services contains application services for the gophchat client:
// the session manager and the chatroom and message stores.
//
// Chat data is namespaced by the signed-in user, so every chat operation
// first asks the SessionManager for the current user and fails with
// common.ErrUnauthorized when there is none. A message append and the
// preview update of its chatroom are written in one kv transaction.
package services
