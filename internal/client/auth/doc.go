// Package auth implements the phone/one-time-code sign-in flow.
//
// A Flow moves through three steps:
//
//	phone --RequestCode--> otp --VerifyCode--> verified
//	  ^                     |
//	  +-------GoBack--------+
//
// RequestCode stores a random 6-digit code in the session-scoped kv.Store
// (keys common.OTPCodeKey and common.OTPPhoneKey), replacing any earlier one,
// and starts a cooldown that counts down once per tick. Resend is refused
// until the cooldown reaches zero. The cooldown goroutine stops whenever the
// flow leaves the otp step.
//
// VerifyCode compares against the most recently issued code only. On success
// it creates a models.User, mints a session token with TokenIssuer and hands
// both to a Completer (the session manager).
//
// Validation and verification failures are returned as errors wrapping
// common.ErrValidation / common.ErrVerification and are also recorded in
// State.Err for display.
package auth
