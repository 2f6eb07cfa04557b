// Package cli implements the cadastre command line.
package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/cadastre/internal/config"
	"github.com/example/cadastre/internal/core/errs"
	"github.com/example/cadastre/internal/ctxutil"
	"github.com/example/cadastre/internal/logger"
	"github.com/example/cadastre/internal/wire"
)

var (
	actorFlag string
	roleFlag  string
	envFile   string
)

// Bootstrap registers the global flags and loads configuration before any
// command runs.
func Bootstrap(root *cobra.Command) {
	root.SilenceErrors = true
	root.SilenceUsage = true
	root.PersistentFlags().StringVar(&actorFlag, "actor", "", "Acting user ID (default: profile)")
	root.PersistentFlags().StringVar(&roleFlag, "role", "", "Acting role: SURVEYOR, NIS_OFFICER or ADMIN (default: profile)")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		logger.SetupWith(cfg.LogLevel, cfg.LogFormat, os.Stderr)
		wire.Configure(cfg)
		return nil
	}
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		wire.Close()
	}
}

// NewContext returns a context carrying the acting user from --actor/--role,
// falling back to the saved profile.
func NewContext() context.Context {
	id, role := resolveActor(actorFlag, roleFlag, profileDir())
	return ctxutil.WithActor(context.Background(), id, role)
}

// resolveActor picks each of id and role from the flags first, then the
// profile stored under dir.
func resolveActor(flagID, flagRole, dir string) (id, role string) {
	id, role = strings.TrimSpace(flagID), strings.TrimSpace(flagRole)
	if id != "" && role != "" {
		return id, role
	}
	if p, err := config.LoadProfile(dir); err == nil {
		if id == "" {
			id = p.ActorID
		}
		if role == "" {
			role = p.Role
		}
	}
	return id, role
}

func profileDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// FormatError renders an error for the terminal as "code: reason" in red.
func FormatError(err error) string {
	red := color.New(color.FgRed)
	var e *errs.Error
	if errors.As(err, &e) {
		code, reason := errs.Public(err)
		if e.Kind == errs.KindInternal {
			reason = err.Error()
		}
		return red.Sprintf("%s: %s", code, reason)
	}
	return red.Sprint(err.Error())
}
