package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/common"
)

var errNoRoom = errors.New("no such chatroom")

// Rooms lists chatrooms, newest first, and remembers the listing so later
// commands can refer to rooms by number.
func (a *App) Rooms(ctx context.Context, _ []string) error {
	rooms, err := a.rooms.List(ctx)
	if err != nil {
		a.println("error:", err)
		return err
	}
	a.showRooms(rooms, "No chatrooms yet, use 'create <name>'")
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	rooms, err := a.rooms.Search(ctx, strings.Join(args, " "))
	if err != nil {
		a.println("error:", err)
		return err
	}
	a.showRooms(rooms, "Nothing found")
	return nil
}

func (a *App) showRooms(rooms []models.Chatroom, empty string) {
	a.setListed(rooms)
	if len(rooms) == 0 {
		a.println(empty)
		return
	}
	for i, r := range rooms {
		line := fmt.Sprintf("%2d. %s", i+1, r.Name)
		if r.LastMessageTime != nil {
			line += fmt.Sprintf("  (%s) %s", r.LastMessageTime.Local().Format("Jan 2 15:04"), common.Truncate(r.LastMessage, 40))
		}
		if a.messages.Pending(r.ID) {
			line += "  [typing...]"
		}
		a.println(line)
	}
}

func (a *App) Create(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	if strings.TrimSpace(name) == "" {
		var err error
		if name, err = GetSimpleText(a.reader, "Chatroom name", a.out); err != nil {
			return err
		}
	}
	room, err := a.rooms.Create(ctx, name)
	if err != nil {
		a.println("error:", err)
		return err
	}
	a.setCurrent(room)
	a.printf("Opened %q\n", room.Name)
	return nil
}

// Rename takes a room reference followed by the new name.
func (a *App) Rename(ctx context.Context, args []string) error {
	if len(args) < 2 {
		a.println("Usage: rename <room> <new name>")
		return common.ErrValidation
	}
	room, err := a.resolve(ctx, args[0])
	if err != nil {
		a.println("error:", err)
		return err
	}
	renamed, err := a.rooms.Rename(ctx, room.ID, strings.Join(args[1:], " "))
	if err != nil {
		a.println("error:", err)
		return err
	}
	if cur := a.currentRoom(); cur != nil && cur.ID == renamed.ID {
		a.setCurrent(renamed)
	}
	a.printf("Renamed %q to %q\n", room.Name, renamed.Name)
	return nil
}

// Delete removes a room and its history after confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: delete <room>")
		return common.ErrValidation
	}
	room, err := a.resolve(ctx, args[0])
	if err != nil {
		a.println("error:", err)
		return err
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Delete %q and all its messages?", room.Name), a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Cancelled")
		return nil
	}
	if err := a.rooms.Delete(ctx, room.ID); err != nil {
		a.println("error:", err)
		return err
	}
	if cur := a.currentRoom(); cur != nil && cur.ID == room.ID {
		a.setCurrent(nil)
	}
	a.setListed(nil)
	return nil
}

// Open makes a room current and prints its history.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: open <room>")
		return common.ErrValidation
	}
	room, err := a.resolve(ctx, args[0])
	if err != nil {
		a.println("error:", err)
		return err
	}
	a.setCurrent(room)
	return a.History(ctx, nil)
}

func (a *App) Leave(_ context.Context, _ []string) error {
	a.setCurrent(nil)
	return nil
}

// resolve accepts a 1-based position in the last listing (optionally
// prefixed with '#') or a unique id prefix.
func (a *App) resolve(ctx context.Context, ref string) (*models.Chatroom, error) {
	if n, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		listed := a.listedRooms()
		if len(listed) == 0 {
			rooms, err := a.rooms.List(ctx)
			if err != nil {
				return nil, err
			}
			a.setListed(rooms)
			listed = rooms
		}
		if n < 1 || n > len(listed) {
			return nil, fmt.Errorf("%w: %s", errNoRoom, ref)
		}
		return a.rooms.Get(ctx, listed[n-1].ID)
	}

	rooms, err := a.rooms.List(ctx)
	if err != nil {
		return nil, err
	}
	var found *models.Chatroom
	for i := range rooms {
		if strings.HasPrefix(rooms[i].ID, ref) {
			if found != nil {
				return nil, fmt.Errorf("%w: %q is ambiguous", errNoRoom, ref)
			}
			found = &rooms[i]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", errNoRoom, ref)
	}
	return found, nil
}

func (a *App) currentRoom() *models.Chatroom {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *App) setCurrent(room *models.Chatroom) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = room
}

func (a *App) listedRooms() []models.Chatroom {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listed
}

func (a *App) setListed(rooms []models.Chatroom) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listed = rooms
}
