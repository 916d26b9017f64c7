// Package cli provides the interactive gophchat command-line client.
//
// It wires configuration, local storage, the phone sign-in flow and the
// chat services behind a simple REPL. Typical flow: restore the previous
// session, otherwise ask for a country and phone number, verify the
// one-time code, then create and open chatrooms and exchange messages.
//
// Key features:
//   - Login with phone + one-time code (resend with cooldown, go back)
//   - Logout, which wipes all local data
//   - Create / Rename / Delete / Search chatrooms
//   - Send text and images; replies arrive in the background
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
