package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gookit/color"

	"support-desk/api"
	"support-desk/auth"
	"support-desk/domain"
	"support-desk/presence"
	"support-desk/projection"
	"support-desk/session"
)

// console renders the player's conversation and reads stdin commands.
type console struct {
	engine *session.Engine
	client *api.Client
	store  *auth.Store
	log    *slog.Logger

	roomID string
}

func newConsole(engine *session.Engine, client *api.Client, store *auth.Store, log *slog.Logger) *console {
	return &console{engine: engine, client: client, store: store, log: log}
}

func (c *console) loop(ctx context.Context) {
	color.Cyan.Println("support-desk player console - type 'help' for commands")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if ctx.Err() != nil {
			return
		}
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "help":
			fmt.Println(`  start               open a fresh support conversation
  open <roomId>       rejoin an existing conversation
  say <text>          send a message
  typing              send a typing signal
  resync              request a history replay
  leave               leave the conversation
  logout              revoke the credential and exit
  quit                exit`)
		case "start":
			c.open(ctx, fmt.Sprintf("room-%d", time.Now().UnixMilli()))
		case "open":
			if rest == "" {
				color.Yellow.Println("usage: open <roomId>")
				continue
			}
			c.open(ctx, rest)
		case "say":
			c.engine.Send(rest)
		case "typing":
			c.engine.SendTyping()
		case "resync":
			c.engine.RequestResync()
		case "leave":
			c.engine.Leave("You left the conversation, type 'start' to open a new one")
			c.roomID = ""
		case "logout":
			c.logout(ctx)
			return
		case "quit", "exit":
			return
		default:
			color.Yellow.Printf("unknown command %q - type 'help'\n", cmd)
		}
	}
}

func (c *console) open(ctx context.Context, roomID string) {
	c.roomID = roomID
	color.Gray.Printf("-- conversation %s --\n", roomID)
	c.engine.Connect(ctx, roomID)
}

func (c *console) logout(ctx context.Context) {
	c.engine.Close()
	if err := c.client.Logout(ctx); err != nil {
		c.log.Warn("Logout request failed", "error", err)
	}
	if err := c.store.Clear(domain.RolePlayer); err != nil {
		c.log.Warn("Clearing credential failed", "error", err)
	}
	color.Gray.Println("logged out")
}

// Sink implementation.

func (c *console) ConnectionChanged(state domain.ConnState) {
	color.Gray.Printf("-- connection %s --\n", state)
}

func (c *console) ComposerChanged(enabled bool) {
	if enabled {
		color.Gray.Println("-- connected, an agent will join shortly --")
	}
}

func (c *console) TimelineReplaced() {
	timeline := c.engine.Timeline()
	if timeline.Empty() {
		color.Gray.Println(timeline.Placeholder())
		return
	}
	for _, entry := range timeline.Entries() {
		c.printEntry(entry)
	}
}

func (c *console) MessageAppended(entry projection.Entry) {
	c.printEntry(entry)
}

func (c *console) TypingChanged(indicator presence.Indicator, active bool) {
	if active {
		color.Gray.Printf("%s is typing…\n", indicator.DisplayName)
	}
}

func (c *console) DirectoryChanged() {}

func (c *console) printEntry(entry projection.Entry) {
	if entry.NewDay {
		color.Gray.Printf("---- %s ----\n", entry.DayLabel)
	}
	m := entry.Message
	clock := m.Timestamp.Format("15:04")
	name := m.DisplayName
	if name == "" {
		name = m.SenderRole
	}
	switch {
	case m.Kind == domain.KindSystem:
		color.Gray.Printf("[%s] %s\n", clock, m.Content)
	case m.SenderID == c.engine.Identity().ID:
		color.Cyan.Printf("[%s] %s: %s\n", clock, name, m.Content)
	default:
		fmt.Printf("[%s] %s: %s\n", clock, name, m.Content)
	}
}
