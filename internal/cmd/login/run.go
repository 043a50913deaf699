// Package login implements the headless login subcommand. It authenticates
// against the storefront API and persists the session for later runs.
package login

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"shopkeeper/internal/config"
	"shopkeeper/internal/credstore"
	"shopkeeper/internal/gateway"
	"shopkeeper/internal/logging"
	"shopkeeper/internal/state"
)

func Run(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "path to shopkeeper.yaml (optional)")
	username := fs.String("username", "", "username (prompted when omitted)")
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

	user := strings.TrimSpace(*username)
	if user == "" {
		user, err = prompt("Username: ")
		if err != nil {
			return err
		}
	}
	pass, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	client, err := gateway.NewClient(gateway.ClientOptions{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		InsecureTLS: cfg.API.InsecureTLS,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	sess := state.NewSession(client, creds, log)
	if err := sess.Login(ctx, user, pass); err != nil {
		return err
	}
	v := sess.Snapshot()
	if !v.Authenticated {
		return fmt.Errorf("server accepted the request but issued no token")
	}
	fmt.Printf("Logged in as %s.\n", v.Username)
	return nil
}

// prompt reads one trimmed line from stdin.
func prompt(label string) (string, error) {
	fmt.Print(label)
	r := bufio.NewReader(os.Stdin)
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo when stdin is a terminal,
// falling back to a plain line read otherwise (pipes, CI).
func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(label)
	}
	fmt.Print(label)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
