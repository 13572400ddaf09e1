// Command scrapbook is a terminal client for the scrapbook store. It keeps the
// signed-in identity in SESSION_FILE between runs.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ourstory/scrapbook/internal/backend"
	"github.com/ourstory/scrapbook/internal/config"
	"github.com/ourstory/scrapbook/internal/entity"
	"github.com/ourstory/scrapbook/internal/identity"
	"github.com/ourstory/scrapbook/internal/scrapbook"
	"github.com/ourstory/scrapbook/pkg/logger"
)

const usage = `usage: scrapbook <command> [args]

commands:
  login <username> <password>   sign in and remember the identity
  logout                        forget the identity
  whoami                        print the signed-in user
  list <table>                  print every row of table as JSON
  watch                         stream your notifications until interrupted
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "scrapbook:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	dir, err := cfg.Users.Directory()
	if err != nil {
		return err
	}
	prov, err := identity.NewProvider(dir, identity.NewFileStore(cfg.Session.File))
	if err != nil {
		return err
	}

	switch cmd := args[0]; cmd {
	case "login":
		if len(args) != 3 {
			return fmt.Errorf("login needs <username> <password>")
		}
		ok, err := prov.Login(args[1], args[2])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("invalid username or password")
		}
		name, _ := prov.DisplayName()
		fmt.Fprintf(out, "logged in as %s\n", name)
		return nil

	case "logout":
		return prov.Logout()

	case "whoami":
		role, ok := prov.CurrentIdentity()
		if !ok {
			fmt.Fprintln(out, "not logged in")
			return nil
		}
		name, _ := prov.DisplayName()
		fmt.Fprintf(out, "%s (%s)\n", name, role)
		return nil

	case "list", "watch":
		role, ok := prov.CurrentIdentity()
		if !ok {
			return fmt.Errorf("not logged in; run: scrapbook login <username> <password>")
		}
		be, err := backend.Open(ctx, cfg, cfg.MinIO.BaseURL())
		if err != nil {
			return err
		}
		defer be.Close(context.Background())
		app := scrapbook.New(be.Tables, be.Blobs, be.Broker, dir)

		if cmd == "watch" {
			if be.Redis == nil {
				logger.Warnf("REDIS_HOST not set; only notifications created by this process will show up")
			}
			return watch(ctx, app, role, out)
		}
		if len(args) != 2 {
			return fmt.Errorf("list needs <table>")
		}
		rows, err := app.List(ctx, args[1], role)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func watch(ctx context.Context, app *scrapbook.App, role identity.Role, out io.Writer) error {
	fmt.Fprintf(out, "watching notifications for %s (ctrl-c to stop)\n", role)
	sub, err := app.Notifications.Subscribe(ctx, role, func(n entity.Notification) {
		fmt.Fprintf(out, "%s  %s: %s\n", n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Title, n.Message)
	})
	if err != nil {
		return err
	}
	defer sub.Close()
	<-ctx.Done()
	return nil
}
