package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/client/media"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/client/services"
	"github.com/dmitrijs2005/gophchat/internal/common"
)

var errNoCurrentRoom = errors.New("no chatroom open")

// History prints every message of the open room.
func (a *App) History(ctx context.Context, _ []string) error {
	room, err := a.requireRoom()
	if err != nil {
		return err
	}
	msgs, err := a.messages.List(ctx, room.ID)
	if err != nil {
		a.println("error:", err)
		return err
	}
	a.printf("== %s ==\n", room.Name)
	if len(msgs) == 0 {
		a.println("(no messages yet)")
	}
	for _, m := range msgs {
		a.println(formatMessage(m))
	}
	return nil
}

// Send posts text to the open room; the reply is printed when it arrives.
func (a *App) Send(ctx context.Context, args []string) error {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		a.println("Usage: send <text>")
		return common.ErrValidation
	}
	return a.post(ctx, models.Message{Content: text})
}

// Image posts a picture from disk with an optional caption.
func (a *App) Image(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: image <path> [caption]")
		return common.ErrValidation
	}
	uri, err := media.EncodeFile(args[0], a.config.MaxImageBytes)
	if err != nil {
		a.println("error:", err)
		return err
	}
	return a.post(ctx, models.Message{Content: strings.Join(args[1:], " "), ImageURL: uri})
}

func (a *App) post(ctx context.Context, msg models.Message) error {
	room, err := a.requireRoom()
	if err != nil {
		return err
	}
	msg.ChatroomID = room.ID

	stored, pending, err := a.messages.AppendWithGeneratedReply(ctx, msg, a.producer)
	if err != nil {
		a.println("error:", err)
		return err
	}
	a.println(formatMessage(*stored))
	a.awaitReply(pending, room.Name)
	return nil
}

// awaitReply prints the generated reply in the background. Replies for a
// room other than the open one are tagged with the room name.
func (a *App) awaitReply(p *services.PendingReply, roomName string) {
	a.waiters.Add(1)
	go func() {
		defer a.waiters.Done()
		select {
		case <-p.Done():
		case <-a.stop:
			return
		}
		msg, err := p.Result()
		if err != nil {
			a.println("error: reply failed:", err)
			return
		}
		if msg == nil {
			return
		}
		line := formatMessage(*msg)
		if cur := a.currentRoom(); cur == nil || cur.ID != p.ChatroomID() {
			line = "[" + roomName + "] " + line
		}
		a.println(line)
	}()
}

func (a *App) requireRoom() (*models.Chatroom, error) {
	room := a.currentRoom()
	if room == nil {
		a.println("Open a chatroom first: 'rooms', then 'open <n>'")
		return nil, errNoCurrentRoom
	}
	return room, nil
}

func formatMessage(m models.Message) string {
	who := "them"
	if m.IsUser {
		who = "you"
	}
	text := m.Content
	if m.HasImage() {
		img := "[image]"
		if mime, size, err := media.Describe(m.ImageURL); err == nil {
			img = fmt.Sprintf("[image %s, %d bytes]", mime, size)
		}
		text = strings.TrimSpace(img + " " + text)
	}
	return fmt.Sprintf("%s %4s: %s", m.Timestamp.Local().Format("15:04"), who, text)
}
