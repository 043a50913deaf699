// Package logout erases the persisted session.
package logout

import (
	"context"
	"flag"
	"fmt"

	"shopkeeper/internal/config"
	"shopkeeper/internal/credstore"
	"shopkeeper/internal/logging"
	"shopkeeper/internal/state"
)

func Run(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
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

	// Logout never talks to the server, so no auth gateway is needed.
	sess := state.NewSession(nil, creds, log)
	if err := sess.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}
