package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/evcraddock/portfolio/internal/config"
	"github.com/evcraddock/portfolio/internal/db"
	"github.com/evcraddock/portfolio/internal/logging"
	"github.com/evcraddock/portfolio/internal/web"
)

// serveFlags maps command-line flags onto configuration keys.
var serveFlags = map[string]string{
	"port":         config.KeyPort,
	"dev":          config.KeyDevMode,
	"db-driver":    config.KeyDBDriver,
	"db-path":      config.KeyDBPath,
	"db-host":      config.KeyDBHost,
	"db-port":      config.KeyDBPort,
	"db-user":      config.KeyDBUser,
	"db-name":      config.KeyDBName,
	"db-pool-size": config.KeyDBPoolSize,
}

func newServeCmd() *cobra.Command {
	v := config.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the comment API server",
		Long: `Start the HTTP server for the guestbook comment API.

Settings come from environment variables (PORT, DEV_MODE, DB_DRIVER, DB_PATH,
DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_POOL_SIZE); flags override
them. The server starts accepting requests before the database is reachable
and keeps retrying the connection in the background.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindServeFlags(v, cmd.Flags()); err != nil {
				return err
			}
			return runServe(cmd.Context(), v)
		},
	}

	cmd.Flags().Int("port", 3000, "port to listen on")
	cmd.Flags().Bool("dev", false, "development mode (debug text logs)")
	cmd.Flags().String("db-driver", string(db.MySQL), "database driver (mysql|sqlite3)")
	cmd.Flags().String("db-path", "", "SQLite database path (default: ~/.portfolio/comments.db)")
	cmd.Flags().String("db-host", "database", "MySQL host")
	cmd.Flags().String("db-port", "3306", "MySQL port")
	cmd.Flags().String("db-user", "portfolio_user", "MySQL user")
	cmd.Flags().String("db-name", "portfolio_db", "MySQL database name")
	cmd.Flags().Int("db-pool-size", db.DefaultPoolSize, "maximum open database connections")

	return cmd
}

func bindServeFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range serveFlags {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

func runServe(ctx context.Context, v *viper.Viper) error {
	cfg, err := config.FromViper(v)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logging.Setup(cfg.DevMode)

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := pool.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.NewServer(pool)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := pool.Connect(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Addr())
	})

	return g.Wait()
}
