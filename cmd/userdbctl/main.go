package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/identkit/userdb"
	"github.com/identkit/userdb/internal/config"
	"github.com/identkit/userdb/internal/logger"
	"github.com/identkit/userdb/mongodb"
)

const usage = "usage: userdbctl [flags] ping|init|get"

func main() {
	id := flag.String("id", "", "user id to look up")
	email := flag.String("email", "", "user email to look up")
	provider := flag.String("provider", "", "oauth provider to look up")
	account := flag.String("account", "", "oauth account id to look up")
	flag.Parse()

	cmd := flag.Arg(0)
	if cmd == "" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	conn, err := mongodb.NewConnection(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		logger.Fatal("failed to connect to mongodb", "error", err)
	}
	defer conn.Close(context.Background())

	store := mongodb.New[userdb.BaseUser](
		conn.Collection(cfg.Mongo.Collection),
		mongodb.WithLogger(logger.Logger),
	)

	switch cmd {
	case "ping":
		if err := conn.Ping(ctx, nil); err != nil {
			logger.Fatal("ping failed", "error", err)
		}
		logger.Info("mongodb is reachable", "database", cfg.Mongo.Database)
	case "init":
		if err := store.EnsureIndexes(ctx); err != nil {
			logger.Fatal("failed to create uniqueness indexes", "error", err)
		}
		logger.Info("uniqueness indexes ready",
			"database", cfg.Mongo.Database, "collection", cfg.Mongo.Collection)
	case "get":
		user, err := lookup(ctx, store, *id, *email, *provider, *account)
		if err != nil {
			logger.Fatal("lookup failed", "error", err)
		}
		if user == nil {
			logger.Info("no user matches")
			return
		}
		out, err := json.MarshalIndent(user, "", "  ")
		if err != nil {
			logger.Fatal("failed to encode user", "error", err)
		}
		fmt.Println(string(out))
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

func lookup(ctx context.Context, store *mongodb.Store[userdb.BaseUser], id, email, provider, account string) (*userdb.BaseUser, error) {
	switch {
	case id != "":
		uid, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("failed to parse user id: %w", err)
		}
		return store.Get(ctx, uid)
	case email != "":
		return store.GetByEmail(ctx, email)
	case provider != "" && account != "":
		return store.GetByOAuthAccount(ctx, provider, account)
	default:
		return nil, fmt.Errorf("get requires -id, -email, or -provider and -account")
	}
}
