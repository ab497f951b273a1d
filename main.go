package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"tsql/internal/connstore"
	"tsql/internal/textedit"
)

var (
	flagName     string
	flagURL      string
	flagHost     string
	flagPort     int
	flagDatabase string
	flagUser     string
	flagPassword string
	flagSSLMode  string
)

// appVersion is reported by --version and tagged onto crash reports.
const appVersion = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "tsql",
	Version: appVersion,
	Short:   "tsql is a terminal SQL client for PostgreSQL",
	Long: `tsql is a vim-modal terminal client for PostgreSQL: a modal SQL editor,
a paginated/editable result grid, a schema browser, and saved connections.

Examples:
  tsql --name staging
  tsql --url postgres://user@localhost/mydb
  tsql -h localhost -U postgres -d mydb`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp()
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagName, "name", "", "Saved connection name")
	rootCmd.Flags().StringVar(&flagURL, "url", "", "postgres:// connection URL")
	rootCmd.Flags().StringVarP(&flagHost, "host", "h", "", "Database host")
	rootCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "Database port")
	rootCmd.Flags().StringVarP(&flagDatabase, "database", "d", "", "Database name")
	rootCmd.Flags().StringVarP(&flagUser, "username", "U", "", "Database username")
	rootCmd.Flags().StringVarP(&flagPassword, "password", "W", "", "Database password")
	rootCmd.Flags().StringVar(&flagSSLMode, "sslmode", "", "SSL mode (disable, prefer, require, verify-ca, verify-full)")
	// -h is taken by --host, so register the help flag ourselves without
	// a shorthand before cobra tries to claim -h for it.
	rootCmd.Flags().Bool("help", false, "Help for tsql")
}

const SentryDSN = "https://685bea62d5921e602f7adcad1aae6201@o30558.ingest.us.sentry.io/4510273814855680"

func runFirstRunPrompt() error {
	settings, err := LoadSettings()
	if err != nil {
		return err
	}
	if settings.FirstRunComplete {
		return nil
	}

	fmt.Println("Welcome to tsql! Let's set up crash reporting.")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Enable crash reporting? (y/n) [y]: ")
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(response)
	if response == "" || strings.ToLower(response) == "y" {
		settings.CrashReportingEnabled = true
	}
	settings.FirstRunComplete = true

	if err := SaveSettings(settings); err != nil {
		return err
	}
	fmt.Println("Setup complete!")
	fmt.Println()
	return nil
}

func resolveStartupConnection(conns *connstore.Store) (connstore.Entry, *string, bool, error) {
	if flagURL != "" {
		entry, password, err := connstore.FromURL("cli", flagURL)
		return entry, password, true, err
	}

	if flagHost != "" || flagDatabase != "" {
		entry := connstore.Entry{
			Name:     "cli",
			Host:     flagHost,
			Port:     flagPort,
			Database: flagDatabase,
			User:     flagUser,
			SSLMode:  connstore.SSLPrefer,
		}
		if entry.Host == "" {
			entry.Host = "localhost"
		}
		if entry.Port == 0 {
			entry.Port = 5432
		}
		if flagSSLMode != "" {
			if mode, ok := connstore.ParseSSLMode(flagSSLMode); ok {
				entry.SSLMode = mode
			}
		}
		var password *string
		if flagPassword != "" {
			password = &flagPassword
		}
		return entry, password, true, nil
	}

	name := flagName
	if name == "" {
		if entry, ok := conns.FindByFavorite(1); ok {
			name = entry.Name
		}
	}
	if name == "" {
		return connstore.Entry{}, nil, false, nil
	}
	entry, ok := conns.FindByName(name)
	if !ok {
		return connstore.Entry{}, nil, false, fmt.Errorf("no saved connection named %q", name)
	}
	password, err := connstore.ResolvePassword(entry, os.Getenv)
	return entry, password, true, err
}

func runApp() error {
	a, err := NewApp()
	if err != nil {
		return err
	}

	connected := false
	if entry, password, ok, err := resolveStartupConnection(a.conns); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	} else if ok {
		a.connectEntry(entry, password)
		connected = true
	}

	if snap, err := LoadSessionSnapshot(); err != nil {
		log.Printf("Warning: could not load session: %v\n", err)
	} else {
		a.applySessionState(snap, !connected)
	}

	if settings, err := LoadSettings(); err == nil && settings.VimMode {
		a.buf.Handle(textedit.KeyEvent{Rune: 'i'})
	}

	defer func() {
		if err := a.history.Save(); err != nil {
			log.Printf("Warning: could not save history: %v\n", err)
		}
	}()

	return a.Run()
}

func main() {
	log.SetOutput(os.Stderr)

	InitBreadcrumbs(100)

	skipFirstRun := false
	for _, arg := range os.Args[1:] {
		if arg == "help" || arg == "--help" {
			skipFirstRun = true
			break
		}
	}
	if !skipFirstRun {
		if err := runFirstRunPrompt(); err != nil {
			log.Printf("Warning: Could not run first-run setup: %v\n", err)
		}
	}

	settings, err := LoadSettings()
	if err != nil {
		log.Printf("Warning: Could not load settings: %v\n", err)
	} else if settings.CrashReportingEnabled {
		if err := InitSentry(SentryDSN); err != nil {
			log.Printf("Warning: Could not initialize Sentry: %v\n", err)
		}
		defer FlushAndShutdown()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		if breadcrumbs != nil {
			breadcrumbs.Flush()
		}
		FlushAndShutdown()
		os.Exit(0)
	}()

	defer func() {
		if err := recover(); err != nil {
			if breadcrumbs != nil {
				breadcrumbs.Flush()
			}
			sentry.CurrentHub().Recover(err)
			sentry.Flush(2 * time.Second)
			fmt.Printf("Recovered from panic: %v\n", err)
		}
	}()

	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	if err := rootCmd.Execute(); err != nil {
		if breadcrumbs != nil {
			breadcrumbs.Flush()
		}
		FlushAndShutdown()
		os.Exit(1)
	}
}
