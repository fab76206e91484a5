// This package contains the main function that runs the portfolio site.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Zachkp/cyber-portfolio/internal/analytics"
	"github.com/Zachkp/cyber-portfolio/internal/config"
	"github.com/Zachkp/cyber-portfolio/internal/content"
	"github.com/Zachkp/cyber-portfolio/internal/mailer"
	"github.com/Zachkp/cyber-portfolio/internal/server"
	"github.com/Zachkp/cyber-portfolio/internal/termview"
)

var cfg config.Config

var cmd = &cobra.Command{
	Use:     "cyber-portfolio",
	Short:   "cyber-portfolio serves a terminal-themed personal portfolio",
	RunE:    serve,
	Version: versioninfo.Short(),
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server (default)",
	RunE:  serve,
}

var terminalCmd = &cobra.Command{
	Use:   "terminal",
	Short: "Play the security scan and hero terminal in this terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLog(os.Stderr)
		portfolio, err := loadPortfolio(cfg.ContentPath)
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return termview.Run(ctx, portfolio, cfg.ScanInterval)
	},
}

var completionCmd = &cobra.Command{
	Use:                   "completion",
	Short:                 "Generate shell completion scripts",
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			cobra.CheckErr(cmd.Root().GenBashCompletion(os.Stdout))
		case "zsh":
			cobra.CheckErr(cmd.Root().GenZshCompletion(os.Stdout))
		case "fish":
			cobra.CheckErr(cmd.Root().GenFishCompletion(os.Stdout, true))
		case "powershell":
			cobra.CheckErr(cmd.Root().GenPowerShellCompletion(os.Stdout))
		}
	},
}

func init() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: .env:", err)
	}
	cfg = config.FromEnv()

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&cfg.Debug, "debug", "d", cfg.Debug, "If set, enable debug output")
	flags.BoolVar(&cfg.Color, "color", cfg.Color, "If set, colorize terminal output")
	flags.StringVar(&cfg.ContentPath, "content", cfg.ContentPath, "Portfolio YAML file (embedded content when empty)")
	flags.DurationVar(&cfg.ScanInterval, "scan-interval", cfg.ScanInterval, "Delay between security scan messages")

	sflags := serveCmd.Flags()
	sflags.StringVarP(&cfg.Port, "port", "p", cfg.Port, "HTTP port")
	sflags.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database for visitor analytics")
	sflags.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "Directory served under /static")
	sflags.StringVar(&cfg.ImagesDir, "images", cfg.ImagesDir, "Directory served under /images")
	sflags.StringVar(&cfg.Mail.Relay, "mail-relay", cfg.Mail.Relay, "Contact relay: smtp, emailjs or log")
	cmd.Flags().AddFlagSet(sflags)

	cmd.AddCommand(serveCmd, terminalCmd, completionCmd)
}

func setupLog(w *os.File) {
	logOpts := new(tint.Options)
	if cfg.Debug {
		logOpts.Level = slog.LevelDebug
	}
	logOpts.AddSource = cfg.Debug
	logOpts.NoColor = !cfg.Color || !isatty.IsTerminal(w.Fd())
	logOpts.TimeFormat = "[15:04:05.000]"
	slog.SetDefault(slog.New(tint.NewHandler(w, logOpts)))
}

func loadPortfolio(path string) (*content.Portfolio, error) {
	if path == "" {
		return content.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return content.Load(f)
}

func serve(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	setupLog(os.Stdout)
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	portfolio, err := loadPortfolio(cfg.ContentPath)
	if err != nil {
		return err
	}

	relay, err := mailer.RelayFromSettings(cfg.Mail, nil)
	if err != nil {
		return err
	}
	if relay == nil {
		slog.Warn("contact form relay not configured; set SMTP_USER/SMTP_PASS or EMAILJS_* variables")
	}
	mail := mailer.New(relay, mailer.WithLogger(slog.Default().With("component", "mailer")))

	db, err := analytics.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()
	store := analytics.NewStore(db, analytics.NewHasher(cfg.HashSalt),
		analytics.WithLogger(slog.Default().With("component", "analytics")))
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	go store.RunCleanup(ctx, analytics.DefaultRetention, 24*time.Hour)
	slog.Info("privacy: visitor tracking enabled with hashed IP addresses")

	admin := server.Admin{}
	if user, pass, ok := cfg.AdminCredentials(); ok {
		if cfg.AdminPassword == "" {
			slog.Warn("using default admin credentials; set ADMIN_USERNAME and ADMIN_PASSWORD")
		}
		admin = server.Admin{Username: user, Password: pass}
	}

	srv, err := server.New(server.Options{
		Portfolio:    portfolio,
		Mailer:       mail,
		Store:        store,
		Tracker:      analytics.NewTracker(store, true),
		Admin:        admin,
		ScanInterval: cfg.ScanInterval,
		StaticDir:    cfg.StaticDir,
		ImagesDir:    cfg.ImagesDir,
		Logger:       slog.Default().With("component", "server"),
	})
	if err != nil {
		return err
	}

	slog.Info("portfolio: ready", "addr", "http://localhost"+cfg.Addr(), "after", time.Since(startTime))
	return srv.Run(ctx, cfg.Addr())
}

func main() {
	cobra.CheckErr(cmd.ExecuteContext(context.Background()))
}
