// Package api is the client for the room-directory service: the REST
// collaborator that owns accounts, room listings, and point-in-time room
// snapshots. The synchronization engine itself never calls it directly;
// the poller and the consoles do.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"support-desk/domain"
	"support-desk/errors"
	"support-desk/protocol"
)

// Client talks to the directory service, attaching the bearer credential
// to every call. A 401 from any endpoint maps to errors.ErrUnauthorized,
// the session-invalidation signal: callers stop and re-authenticate
// instead of retrying.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *slog.Logger

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string, log *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log,
	}
}

// SetToken installs the bearer credential used for subsequent calls.
// An empty token detaches it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// LoginResponse is the credential issued by the directory service.
type LoginResponse struct {
	Account domain.Account `json:"account"`
	Token   string         `json:"token"`
}

// RoomSnapshot is a point-in-time read of one room: summary plus the
// message history as raw wire envelopes.
type RoomSnapshot struct {
	Summary      domain.RoomSummary   `json:"summary"`
	Participants []domain.Participant `json:"participants,omitempty"`
	History      []protocol.Envelope  `json:"history"`
	NextSequence int64                `json:"nextSequence,omitempty"`
}

// Messages converts the snapshot history into timeline messages.
func (s RoomSnapshot) Messages(now time.Time) []domain.Message {
	messages := make([]domain.Message, 0, len(s.History))
	for _, env := range s.History {
		messages = append(messages, env.Message(now))
	}
	return messages
}

// Login exchanges credentials for a bearer token and installs it.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return LoginResponse{}, err
	}
	c.SetToken(resp.Token)
	return resp, nil
}

// Profile fetches the account behind the installed token, used to
// restore a persisted session.
func (c *Client) Profile(ctx context.Context) (domain.Account, error) {
	var account domain.Account
	err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &account)
	return account, err
}

// Logout revokes the token upstream and detaches it locally. Best
// effort: the local credential is dropped even if the call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.SetToken("")
	return err
}

// Rooms fetches the full room listing.
func (c *Client) Rooms(ctx context.Context) ([]domain.RoomSummary, error) {
	var rooms []domain.RoomSummary
	err := c.do(ctx, http.MethodGet, "/api/rooms", nil, &rooms)
	return rooms, err
}

// Room fetches one room's snapshot: summary and history.
func (c *Client) Room(ctx context.Context, roomID string) (RoomSnapshot, error) {
	var snapshot RoomSnapshot
	err := c.do(ctx, http.MethodGet, "/api/rooms/"+url.PathEscape(roomID), nil, &snapshot)
	return snapshot, err
}

// Assign assigns or transfers a room to an agent and returns the new
// assignee.
func (c *Client) Assign(ctx context.Context, roomID, agentID, displayName string) (domain.Participant, error) {
	body := map[string]string{"agentId": agentID, "displayName": displayName}
	var participant domain.Participant
	path := "/api/rooms/" + url.PathEscape(roomID) + "/assign"
	err := c.do(ctx, http.MethodPost, path, body, &participant)
	return participant, err
}

// OnlineAgents fetches the agent presence list.
func (c *Client) OnlineAgents(ctx context.Context) ([]domain.AgentPresence, error) {
	var agents []domain.AgentPresence
	err := c.do(ctx, http.MethodGet, "/api/agents/online", nil, &agents)
	return agents, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s %s: %w", method, path, errors.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
