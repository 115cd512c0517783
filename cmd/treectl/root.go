package main

import (
	"context"
	"fmt"
	"time"

	"github.com/stoat/Mewton-family-tree/application/persist"
	"github.com/stoat/Mewton-family-tree/application/session"
	"github.com/stoat/Mewton-family-tree/infrastructure/config"
	"github.com/stoat/Mewton-family-tree/pkg/client"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli is the state shared by every subcommand. It is filled in by the root
// command's PersistentPreRunE.
type cli struct {
	apiURL  string
	token   string
	verbose bool

	cfg    *config.ClientConfig
	logger *zap.Logger
	api    *client.Client
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "treectl",
		Short: "Edit a family tree through its API",
		Long: `treectl talks to the family tree API. Every edit loads the whole tree,
changes it locally and writes the whole document back.

Settings come from TREE_API_URL, TREE_TOKEN and DEBOUNCE_WINDOW; flags win.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.apiURL, "api", "", "API base URL (overrides TREE_API_URL)")
	flags.StringVar(&c.token, "token", "", "Bearer token (overrides TREE_TOKEN)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		c.loginCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.addPersonCmd(),
		c.editPersonCmd(),
		c.removePersonCmd(),
		c.moveCmd(),
		c.relateCmd(),
		c.unrelateCmd(),
		c.titleCmd(),
		c.showCmd(),
		c.searchCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		return err
	}
	if c.apiURL != "" {
		cfg.APIURL = c.apiURL
	}
	if c.token != "" {
		cfg.Token = c.token
	}
	if c.verbose {
		cfg.Verbose = true
	}
	c.cfg = cfg

	c.logger = zap.NewNop()
	if cfg.Verbose {
		if c.logger, err = zap.NewDevelopment(); err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
	}

	c.api = client.New(cfg.APIURL,
		client.WithToken(cfg.Token),
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(c.logger),
	)
	return nil
}

// edit opens a session, lets fn change the tree and writes the result back.
// Unlike the interactive client, a failed write is an error here.
func (c *cli) edit(ctx context.Context, fn func(*session.Session) error) error {
	s, err := session.Open(ctx, c.api, c.cfg.DebounceWindow, c.logger,
		persist.WithWriteTimeout(c.cfg.Timeout))
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		_ = s.Close(ctx)
		return err
	}

	closeCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout+time.Second)
	defer cancel()
	if err := s.Close(closeCtx); err != nil {
		return fmt.Errorf("save tree: %w", err)
	}
	return nil
}

// view opens a read-only session.
func (c *cli) view(ctx context.Context) (*session.Session, error) {
	return session.Open(ctx, c.api, c.cfg.DebounceWindow, c.logger)
}
