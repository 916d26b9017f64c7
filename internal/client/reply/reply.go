// Package reply produces the canned assistant answers shown after a user
// message.
package reply

import (
	"errors"
	"math/rand/v2"
)

// Trigger tells the producer what kind of message it answers.
type Trigger string

const (
	TriggerText  Trigger = "text"
	TriggerImage Trigger = "image"
)

// Fallback is used when a Producer fails.
const Fallback = "Sorry, I couldn't come up with a reply. Please try again."

var ErrUnknownTrigger = errors.New("unknown reply trigger")

// Producer returns reply content for a trigger.
type Producer func(trigger Trigger) (string, error)

var textReplies = []string{
	"That's a great question! Let me think about it.",
	"Interesting! Could you tell me a bit more?",
	"I see what you mean. Here's one way to look at it.",
	"Thanks for sharing. What would you like to do next?",
	"Good point. I'd suggest breaking it into smaller steps.",
}

var imageReplies = []string{
	"Nice image! I can see a lot of detail in it.",
	"Thanks for the picture. What would you like to know about it?",
	"That's an interesting image. Anything specific I should look at?",
}

// Canned picks a random reply from a fixed list.
func Canned(trigger Trigger) (string, error) {
	switch trigger {
	case TriggerText:
		return textReplies[rand.IntN(len(textReplies))], nil
	case TriggerImage:
		return imageReplies[rand.IntN(len(imageReplies))], nil
	default:
		return "", ErrUnknownTrigger
	}
}

// Fixed always answers with s.
func Fixed(s string) Producer {
	return func(Trigger) (string, error) { return s, nil }
}
