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
	"github.com/olekukonko/tablewriter"

	"support-desk/api"
	"support-desk/auth"
	"support-desk/directory"
	"support-desk/domain"
	"support-desk/presence"
	"support-desk/projection"
	"support-desk/session"
)

// console is the agent's presentation collaborator: it renders engine
// notifications and translates stdin commands into engine and directory
// calls.
type console struct {
	engine *session.Engine
	client *api.Client
	store  *auth.Store
	log    *slog.Logger
	stop   context.CancelFunc

	roomID string
}

func newConsole(engine *session.Engine, client *api.Client, store *auth.Store,
	log *slog.Logger, stop context.CancelFunc) *console {
	return &console{engine: engine, client: client, store: store, log: log, stop: stop}
}

// loop reads commands until quit or EOF.
func (c *console) loop(ctx context.Context) {
	color.Cyan.Println("support-desk agent console - type 'help' for commands")
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
			c.printHelp()
		case "rooms":
			c.printRooms(rest)
		case "agents":
			c.printAgents()
		case "metrics":
			c.printMetrics()
		case "open":
			c.openRoom(ctx, rest)
		case "say":
			c.engine.Send(rest)
		case "typing":
			c.engine.SendTyping()
		case "resync":
			c.engine.RequestResync()
		case "assign":
			c.assign(ctx, c.engine.Identity().ID, c.engine.Identity().DisplayName)
		case "transfer":
			c.transfer(ctx, rest)
		case "leave":
			c.engine.Leave("You left the room")
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

func (c *console) printHelp() {
	fmt.Println(`  rooms [keyword]     list rooms (most recent activity first)
  agents              list online agents
  metrics             waiting / active / online counters
  open <roomId>       open a room and stream it
  say <text>          send a message
  typing              send a typing signal
  resync              request a history replay
  assign              assign the open room to yourself
  transfer <agentId>  transfer the open room
  leave               leave the open room
  logout              revoke the credential and exit
  quit                exit`)
}

func (c *console) printRooms(keyword string) {
	var rooms []domain.RoomSummary
	c.engine.Do(func() {
		rooms = c.engine.Directory().Filter(keyword)
	})

	if len(rooms) == 0 {
		color.Gray.Println("no rooms")
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Room", "Assigned", "Last message", "Last activity", "Players", "Agents"})
	for _, room := range rooms {
		assigned := room.AssignedAgent
		if assigned == "" {
			assigned = "-"
		}
		table.Append([]string{
			room.RoomID,
			assigned,
			truncate(room.LastMessage, 32),
			formatActivity(room.LastActivity),
			fmt.Sprintf("%d (%d online)", room.PlayerCount, room.ConnectedPlayerCount),
			fmt.Sprintf("%d (%d online)", room.AgentCount, room.ConnectedAgentCount),
		})
	}
	table.Render()
}

func (c *console) printAgents() {
	var agents []domain.AgentPresence
	c.engine.Do(func() {
		agents = c.engine.Directory().Agents()
	})

	if len(agents) == 0 {
		color.Gray.Println("no agents online")
		return
	}
	for _, agent := range agents {
		rooms := "standing by"
		if len(agent.Rooms) > 0 {
			rooms = "rooms " + strings.Join(agent.Rooms, ", ")
		}
		fmt.Printf("  %s (%s) - %s, seen %s\n",
			agent.DisplayName, agent.ID, rooms, formatActivity(agent.LastSeen))
	}
}

func (c *console) printMetrics() {
	var metrics directory.Metrics
	c.engine.Do(func() {
		metrics = c.engine.Directory().ComputeMetrics()
	})
	fmt.Printf("  waiting: %d   active: %d   agents online: %d   room connections: %d\n",
		metrics.Waiting, metrics.Active, metrics.AgentsOnline, metrics.ConnectedAgents)
}

// openRoom connects the stream and seeds the timeline from the REST
// snapshot. The snapshot fetch runs off-loop; the engine discards it if
// another room was opened meanwhile.
func (c *console) openRoom(ctx context.Context, roomID string) {
	if roomID == "" {
		color.Yellow.Println("usage: open <roomId>")
		return
	}
	c.roomID = roomID
	c.engine.Connect(ctx, roomID)

	go func() {
		snapshot, err := c.client.Room(ctx, roomID)
		if err != nil {
			c.log.Warn("Room snapshot failed", "roomId", roomID, "error", err)
			return
		}
		c.engine.LoadSnapshot(roomID, snapshot.Messages(time.Now()))
	}()
}

func (c *console) assign(ctx context.Context, agentID, displayName string) {
	roomID := c.roomID
	if roomID == "" {
		color.Yellow.Println("open a room first")
		return
	}
	participant, err := c.client.Assign(ctx, roomID, agentID, displayName)
	if err != nil {
		color.Red.Printf("assign failed: %v\n", err)
		return
	}
	c.engine.Post(func() {
		if c.engine.Directory().ApplyAssignment(roomID, participant.DisplayName, participant.ID) {
			c.log.Debug("Assignment applied", "roomId", roomID, "agentId", participant.ID)
		}
	})
	color.Green.Printf("assigned to %s\n", participant.DisplayName)
}

func (c *console) transfer(ctx context.Context, agentID string) {
	if agentID == "" {
		color.Yellow.Println("usage: transfer <agentId>")
		return
	}
	var displayName string
	c.engine.Do(func() {
		for _, agent := range c.engine.Directory().Agents() {
			if agent.ID == agentID {
				displayName = agent.DisplayName
			}
		}
	})
	if displayName == "" {
		displayName = agentID
	}
	c.assign(ctx, agentID, displayName)
}

func (c *console) logout(ctx context.Context) {
	c.engine.Close()
	if err := c.client.Logout(ctx); err != nil {
		c.log.Warn("Logout request failed", "error", err)
	}
	if err := c.store.Clear(domain.RoleAgent); err != nil {
		c.log.Warn("Clearing credential failed", "error", err)
	}
	color.Gray.Println("logged out")
}

// sessionInvalidated handles the poller's 401 signal: the credential is
// dead, so drop it and end the program instead of retrying.
func (c *console) sessionInvalidated() {
	_ = c.store.Clear(domain.RoleAgent)
	color.Red.Println("session invalidated - please sign in again")
	c.stop()
}

// Sink implementation: every callback runs on the engine loop.

func (c *console) ConnectionChanged(state domain.ConnState) {
	color.Gray.Printf("-- connection %s --\n", state)
}

func (c *console) ComposerChanged(enabled bool) {
	if enabled {
		color.Gray.Println("-- you can type now --")
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

func (c *console) DirectoryChanged() {
	// The directory renders on demand ('rooms', 'metrics'); repainting
	// on every touch would flood the console.
}

func (c *console) printEntry(entry projection.Entry) {
	if entry.NewDay {
		color.Gray.Printf("---- %s ----\n", entry.DayLabel)
	}
	m := entry.Message
	clock := m.Timestamp.Format("15:04")
	switch {
	case m.Kind == domain.KindSystem:
		color.Gray.Printf("[%s] %s\n", clock, m.Content)
	case m.SenderID == c.engine.Identity().ID:
		color.Cyan.Printf("[%s] %s #%s: %s\n", clock, senderName(m), sequenceLabel(m), m.Content)
	default:
		fmt.Printf("[%s] %s #%s: %s\n", clock, senderName(m), sequenceLabel(m), m.Content)
	}
}

func senderName(m domain.Message) string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.SenderRole
}

func sequenceLabel(m domain.Message) string {
	if !m.Sequenced() {
		return "-"
	}
	return fmt.Sprintf("%d", m.Sequence)
}

func formatActivity(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	diff := time.Since(ts)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return ts.Format("01/02")
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
