// Package admin launches the interactive storefront admin TUI.
package admin

import (
	"context"
	"flag"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"shopkeeper/internal/adminui"
	"shopkeeper/internal/config"
	"shopkeeper/internal/credstore"
	"shopkeeper/internal/gateway"
	"shopkeeper/internal/logging"
	"shopkeeper/internal/state"
)

// localUserDelay approximates remote latency so the local backend exercises
// the same loading states as the real API.
const localUserDelay = 150 * time.Millisecond

func Run(args []string) error {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "path to shopkeeper.yaml (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	log, err := logging.New(logging.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	if err != nil {
		return err
	}

	ctx := context.Background()
	creds, err := credstore.Open(ctx, cfg.Credentials.Path)
	if err != nil {
		return err
	}
	defer creds.Close()

	// The token func reads the session store, which is built after the
	// client; the indirection breaks the construction cycle.
	var sess *state.Session
	client, err := gateway.NewClient(gateway.ClientOptions{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		InsecureTLS: cfg.API.InsecureTLS,
		Logger:      log,
		Token: func(ctx context.Context) string {
			if sess == nil {
				return ""
			}
			return sess.Snapshot().Token
		},
	})
	if err != nil {
		return err
	}
	sess = state.NewSession(client, creds, log)
	client.SetUnauthorizedHook(sess.Invalidate)

	var users *state.Users
	if cfg.Users.Backend == config.BackendLocal {
		local := gateway.NewLocalUsers(localUserDelay)
		if cfg.Users.Seed != "" {
			if err := local.SeedFromFile(cfg.Users.Seed); err != nil {
				return err
			}
		}
		users = state.NewUsers(local, log)
	} else {
		users = state.NewUsers(client.Users(), log)
	}

	stores := adminui.Stores{
		Session:  sess,
		Products: state.NewProducts(client.Products(), log),
		Users:    users,
	}

	p := tea.NewProgram(adminui.New(stores, cfg.API.BaseURL), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
