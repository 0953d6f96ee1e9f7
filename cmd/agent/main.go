package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"support-desk/api"
	"support-desk/auth"
	"support-desk/directory"
	"support-desk/domain"
	"support-desk/internal"
	"support-desk/runtime"
	"support-desk/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the agent console: configuration, credential store, the
// directory client, the synchronization engine, and the pollers. The
// error return keeps defers (badger close) running before exit.
func run() error {
	_ = godotenv.Load()

	config, err := internal.Load()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("credential store opening failed: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Closing credential store failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := auth.NewStore(db, log)
	client := api.NewClient(config.ServerURL, log)

	account, err := signIn(ctx, client, store, domain.RoleAgent)
	if err != nil {
		return err
	}

	profile := domain.AgentProfile()
	profile.TypingWindow = config.AgentTypingWindow

	cache := directory.NewCache().WithActiveThreshold(config.ActiveThreshold)
	engine := session.NewEngine(log, account.Identity(domain.RoleAgent), profile,
		config.SocketURL, session.NewWebsocketDialer(), cache)

	console := newConsole(engine, client, store, log, stop)
	engine.AddSink(console)

	poller := directory.NewPoller(log, client, cache, engine.Post,
		config.RoomsPollInterval, config.AgentsPollInterval,
		console.sessionInvalidated, nil)

	supervisor := runtime.NewSupervisor(log).Add(engine, poller)
	done := make(chan struct{})
	go func() {
		supervisor.Run(ctx)
		close(done)
	}()

	console.loop(ctx)
	stop()
	<-done
	return nil
}

// signIn restores a persisted credential or prompts for one. An expired
// or rejected token is cleared so the next start prompts again.
func signIn(ctx context.Context, client *api.Client, store *auth.Store, role string) (domain.Account, error) {
	if token, err := store.Load(role); err == nil && token != "" && !auth.Expired(token, time.Now()) {
		client.SetToken(token)
		if account, err := client.Profile(ctx); err == nil {
			return account, nil
		}
		client.SetToken("")
	}
	_ = store.Clear(role)

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		return domain.Account{}, fmt.Errorf("reading username: %w", err)
	}
	fmt.Print("Password: ")
	password, err := reader.ReadString('\n')
	if err != nil {
		return domain.Account{}, fmt.Errorf("reading password: %w", err)
	}

	resp, err := client.Login(ctx, strings.ToLower(strings.TrimSpace(username)), strings.TrimSpace(password))
	if err != nil {
		return domain.Account{}, fmt.Errorf("login failed: %w", err)
	}
	if err := store.Save(role, resp.Token); err != nil {
		return domain.Account{}, err
	}
	return resp.Account, nil
}
