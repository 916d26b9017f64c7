// Package models defines client-side data models used by the gophchat CLI.
//
// All records are stored as JSON in the key/value store, so field tags are
// part of the on-disk format.
package models
