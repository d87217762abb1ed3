package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/evanschultz/koni/internal/adapters/server"
	"github.com/evanschultz/koni/internal/adapters/storage/sqlite"
	"github.com/evanschultz/koni/internal/app"
	"github.com/evanschultz/koni/internal/config"
	"github.com/evanschultz/koni/internal/engine"
	"github.com/evanschultz/koni/internal/input"
	"github.com/evanschultz/koni/internal/keymap"
	"github.com/evanschultz/koni/internal/notify"
	"github.com/evanschultz/koni/internal/platform"
	"github.com/evanschultz/koni/internal/terminal"
	"github.com/evanschultz/koni/internal/tui"
)

// version is stamped at build time.
var version = "dev"

// errNotTerminal reports an interactive run without a terminal on stdin.
var errNotTerminal = errors.New("interactive session requires a terminal on stdin")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})
	if err := fang.Execute(ctx, root, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// streams are the process stdio handed to commands.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// run executes one command line without fang's styled output.
func run(ctx context.Context, args []string, s streams) error {
	root := newRootCommand(s)
	root.SetArgs(args)
	root.SetOut(s.out)
	root.SetErr(s.err)
	root.SilenceUsage = true
	root.SilenceErrors = true
	return root.ExecuteContext(ctx)
}

func newRootCommand(s streams) *cobra.Command {
	if s.out == nil {
		s.out = io.Discard
	}
	if s.err == nil {
		s.err = io.Discard
	}

	flags := &globalFlags{appName: platform.DefaultAppName, devMode: version == "dev"}
	if envDev, ok := parseBoolEnv("KONI_DEV_MODE"); ok {
		flags.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("KONI_APP_NAME")); envApp != "" {
		flags.appName = envApp
	}

	root := &cobra.Command{
		Use:     "koni",
		Short:   "Keep short notes from the terminal",
		Long:    "koni keeps titled notes in a local sqlite store. Run it without a command for the interactive session.",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd.Context(), flags, s)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to config TOML")
	pf.StringVar(&flags.dbPath, "db", "", "path to sqlite database")
	pf.StringVar(&flags.appName, "app", flags.appName, "application name for config/data path resolution")
	pf.BoolVar(&flags.devMode, "dev", flags.devMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		newPathsCommand(flags, s),
		newInitCommand(flags, s),
		newListCommand(flags, s),
		newServeCommand(flags, s),
		newImportCommand(flags, s),
		newExportCommand(flags, s),
	)
	return root
}

func newPathsCommand(flags *globalFlags, s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the resolved config and data locations",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := resolvePaths(flags)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(s.out, "app: %s\n", flags.appName)
			_, _ = fmt.Fprintf(s.out, "dev_mode: %t\n", flags.devMode)
			_, _ = fmt.Fprintf(s.out, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(s.out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(s.out, "db: %s\n", paths.DBPath)
			return nil
		},
	}
}

func newInitCommand(flags *globalFlags, s streams) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := resolvePaths(flags)
			if err != nil {
				return err
			}
			configPath := resolveConfigPath(flags, paths)
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("config %q already exists, use --force to overwrite", configPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("stat config %q: %w", configPath, err)
			}
			dbPath, _ := resolveDBPath(flags, paths)
			cfg := config.Default(dbPath)
			cfg.Keys = config.DefaultKeys()
			if err := config.Save(configPath, cfg); err != nil {
				return fmt.Errorf("save config %q: %w", configPath, err)
			}
			_, _ = fmt.Fprintf(s.out, "wrote %s\n", configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func newListCommand(flags *globalFlags, s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), flags, s, "list", func(rt *cmdEnv) error {
				notes, err := rt.svc.ListNotes(cmd.Context())
				if err != nil {
					return fmt.Errorf("list notes: %w", err)
				}
				for _, note := range notes {
					if _, err := io.WriteString(s.out, note.String()); err != nil {
						return fmt.Errorf("write note: %w", err)
					}
				}
				return nil
			})
		},
	}
}

func newServeCommand(flags *globalFlags, s streams) *cobra.Command {
	var httpBind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat bot over HTTP and MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), flags, s, "serve", func(rt *cmdEnv) error {
				bind := rt.cfg.Server.HTTPBind
				if strings.TrimSpace(httpBind) != "" {
					bind = httpBind
				}
				rt.log.Info("serving bot", "http_bind", bind, "api", rt.cfg.Server.APIEndpoint, "mcp", rt.cfg.Server.MCPEndpoint)
				return server.Run(cmd.Context(), server.Config{
					HTTPBind:      bind,
					APIEndpoint:   rt.cfg.Server.APIEndpoint,
					MCPEndpoint:   rt.cfg.Server.MCPEndpoint,
					ServerName:    flags.appName,
					ServerVersion: version,
				}, server.Dependencies{Notes: app.NewLockedService(rt.svc)})
			})
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "", "listen address (overrides server.http_bind)")
	return cmd
}

// cmdEnv is the resolved configuration, logger, and open store for one command.
type cmdEnv struct {
	cfg config.Config
	log *runtimeLogger
	svc *app.Service
}

// withRuntime resolves config, logging, and the store, runs fn, and closes
// everything again.
func withRuntime(ctx context.Context, flags *globalFlags, s streams, command string, fn func(*cmdEnv) error) error {
	paths, err := resolvePaths(flags)
	if err != nil {
		return err
	}

	configPath := resolveConfigPath(flags, paths)
	dbPath, dbOverridden := resolveDBPath(flags, paths)

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(s.err, flags.appName, flags.devMode, cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		// Log lines would corrupt the raw-mode screen; the dev-file sink still records them.
		logger.SetConsoleEnabled(false)
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil && logger.shouldLogToSink(logger.consoleSink) {
			_, _ = fmt.Fprintf(s.err, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()
	logger.Info("startup configuration resolved", "app", flags.appName, "dev_mode", flags.devMode, "command", command)
	logger.Info("configuration loaded", "config_path", configPath, "db_path", cfg.Database.Path, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		return fmt.Errorf("open sqlite repository: %w", err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Warn("sqlite close failed", "db_path", cfg.Database.Path, "err", closeErr)
		}
	}()
	svc := app.NewService(repo)
	if err := svc.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}

	logger.Info("command flow start", "command", command)
	if err := fn(&cmdEnv{cfg: cfg, log: logger, svc: svc}); err != nil {
		logger.Error("command flow failed", "command", command, "err", err)
		return err
	}
	logger.Info("command flow complete", "command", command)
	return nil
}

// resolveConfigPath prefers --config, then KONI_CONFIG, then the platform path.
func resolveConfigPath(flags *globalFlags, paths platform.Paths) string {
	if p := strings.TrimSpace(flags.configPath); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv("KONI_CONFIG")); p != "" {
		return p
	}
	return paths.ConfigPath
}

// resolveDBPath prefers --db, then KONI_DB_PATH, then the platform path. The
// bool reports an explicit override, which wins over the config file.
func resolveDBPath(flags *globalFlags, paths platform.Paths) (string, bool) {
	if p := strings.TrimSpace(flags.dbPath); p != "" {
		return p, true
	}
	if p := strings.TrimSpace(os.Getenv("KONI_DB_PATH")); p != "" {
		return p, true
	}
	return paths.DBPath, false
}

func resolvePaths(flags *globalFlags) (platform.Paths, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: flags.appName,
		DevMode: flags.devMode,
	})
	if err != nil {
		return platform.Paths{}, fmt.Errorf("resolve paths: %w", err)
	}
	return paths, nil
}

// runInteractive runs the full-screen note session on the process terminal.
func runInteractive(ctx context.Context, flags *globalFlags, s streams) error {
	in, ok := s.in.(*os.File)
	if !ok {
		return errNotTerminal
	}
	sess := terminal.NewSession(in.Fd(), s.out)
	if !sess.IsTerminal() {
		return errNotTerminal
	}

	return withRuntime(ctx, flags, s, "tui", func(rt *cmdEnv) error {
		keys := keymap.New(keyOverrides(rt.cfg.Keys))
		src := input.NewTerminalKeySource(in)
		poller := input.NewPoller(src, rt.cfg.Input.TickInterval.Std())

		opts := []engine.Option{
			engine.WithClipboard(systemClipboard{}),
			engine.WithLogger(rt.log),
		}
		if rt.cfg.Notify.OnSave {
			opts = append(opts, engine.WithNotifier(notify.NewDesktop(flags.appName)))
		}
		proc := engine.NewProcessor(
			app.NewLockedService(rt.svc),
			keys,
			terminal.NewExternalEditor(rt.cfg.Editor.Command, rt.cfg.Editor.Args),
			sess,
			poller,
			opts...,
		)
		renderer := tui.NewRenderer(s.out, keys, tui.WithSize(sess.Size))

		if err := sess.Acquire(); err != nil {
			return fmt.Errorf("acquire terminal: %w", err)
		}
		defer func() {
			if err := sess.Close(); err != nil {
				rt.log.Warn("terminal restore failed", "err", err)
			}
		}()

		loopCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		pollErr := make(chan error, 1)
		go func() {
			pollErr <- poller.Run(loopCtx)
		}()

		rt.log.Info("starting interactive loop", "tick_interval", rt.cfg.Input.TickInterval.Std())
		loopErr := engine.NewLoop(proc, renderer, poller.Events()).Run(loopCtx)
		cancel()
		perr := <-pollErr
		if err := src.Pause(); err != nil {
			rt.log.Warn("stop key reader failed", "err", err)
		}
		if loopErr != nil {
			return fmt.Errorf("run interactive loop: %w", errors.Join(loopErr, perr))
		}
		return nil
	})
}

func keyOverrides(k config.KeyConfig) keymap.Overrides {
	return keymap.Overrides{
		Quit:       k.Quit,
		Home:       k.Home,
		Notes:      k.Notes,
		Add:        k.Add,
		DeleteTab:  k.DeleteTab,
		DeleteNote: k.DeleteNote,
		Yank:       k.Yank,
	}
}

// systemClipboard writes to the OS clipboard.
type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// parseBoolEnv reads one optional boolean environment variable.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
