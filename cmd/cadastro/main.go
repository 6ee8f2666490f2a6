package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cadastro/internal/authform"
	"cadastro/internal/form"
	"cadastro/internal/listing"
	"cadastro/internal/platform/config"
	"cadastro/internal/platform/logger"
	"cadastro/internal/postal"
	"cadastro/internal/remote"
	"cadastro/internal/session"
	"cadastro/internal/ui/tui"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mErro:\033[0m %s\n", err)
		os.Exit(1)
	}
}

type flags struct {
	configPath string
	serverURL  string
	cepURL     string
	logLevel   string
	logFile    string
}

func rootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "cadastro",
		Short: "Cadastro de usuários no terminal",
		Long: `cadastro signs you in to a cadastro server and lets you register,
list, edit and delete users. Addresses are completed from the CEP.

Settings come from flags, then CADASTRO_* environment variables, then
the TOML file given by --config (or ./cadastro.toml).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&f.configPath, "config", "", "path to a TOML config file")
	cmd.Flags().StringVar(&f.serverURL, "server", "", "base URL of the cadastro server")
	cmd.Flags().StringVar(&f.cepURL, "cep-url", "", "ViaCEP base URL; empty uses the server's CEP proxy")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "file receiving JSON logs (\"-\" for stderr)")
	return cmd
}

// resolveConfig applies explicitly set flags over the file and environment.
func resolveConfig(cmd *cobra.Command, f flags) (config.Client, error) {
	path := f.configPath
	if path == "" {
		path = config.ConfigPathFromEnv()
	}
	cfg, err := config.LoadClient(path)
	if err != nil {
		return config.Client{}, err
	}

	set := cmd.Flags().Changed
	if set("server") {
		cfg.ServerURL = f.serverURL
	}
	if set("cep-url") {
		cfg.CEPURL = f.cepURL
	}
	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if set("log-file") {
		cfg.LogFile = f.logFile
	}
	return cfg, cfg.Validate()
}

func run(parent context.Context, cfg config.Client) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logOut, closeLog, err := openLog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	log := logger.Setup(logOut, logger.ParseLevel(cfg.LogLevel))

	sess := session.New()
	client := remote.NewClient(cfg.ServerURL, sess,
		remote.WithTimeout(cfg.Timeout),
		remote.WithLogger(log),
	)
	identity := remote.NewIdentity(client)
	records := remote.NewRecords(client)

	driver := tui.NewSurveyDriver()
	nav := tui.NewNavigator()
	dialogs := tui.NewDialogs(driver, os.Stdout)

	formCtl := form.New(records, postalLookup(cfg, log), identity, nav, dialogs, form.WithLogger(log))
	listCtl := listing.New(records, formCtl, nav, dialogs, listing.WithLogger(log))
	authCtl := authform.New(identity, authform.WithLogger(log))

	log.Info("cadastro starting", "server", cfg.ServerURL)
	return tui.NewApp(tui.Deps{
		Driver:  driver,
		Out:     os.Stdout,
		Session: sess,
		Nav:     nav,
		Auth:    authCtl,
		Form:    formCtl,
		List:    listCtl,
		Logger:  log,
	}).Run(ctx)
}

// postalLookup queries ViaCEP directly when a CEP URL is configured and the
// server's proxy otherwise.
func postalLookup(cfg config.Client, log *slog.Logger) postal.Lookuper {
	if cfg.CEPURL != "" {
		return postal.NewClient(cfg.CEPURL, postal.WithTimeout(cfg.Timeout), postal.WithLogger(log))
	}
	return postal.NewClient(cfg.ServerURL,
		postal.WithPath(postal.ProxyPath),
		postal.WithTimeout(cfg.Timeout),
		postal.WithLogger(log),
	)
}

// openLog keeps JSON logs off stdout, where the prompts are drawn.
func openLog(path string) (io.Writer, func(), error) {
	switch path {
	case "":
		return io.Discard, func() {}, nil
	case "-":
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
