package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sadopc/routine/internal/reload"
	"github.com/sadopc/routine/internal/store"
	"github.com/sadopc/routine/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "routine [flags] <schedule-file>",
	Short: "Fire notifications and shell commands at set times of day",
	Long: `routine reads a plain-text schedule once a minute and fires the
entries whose time has come:

  # comment
  remind 5 15 60
  09:00 "Stand up"
  18:30 ` + "`backup.sh`" + `

Edits to the file take effect on the next minute. Notifications can be
snoozed by any of the remind offsets.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().String("db", "", "history database (default <config dir>/routine/history.db)")
	rootCmd.Flags().String("log", "", "log file (default <config dir>/routine/routine.log)")

	viper.BindPFlag("db", rootCmd.Flags().Lookup("db"))
	viper.BindPFlag("log", rootCmd.Flags().Lookup("log"))
}

// initConfig layers ROUTINE_* environment variables and an optional
// routine.yaml under the flags.
func initConfig() {
	viper.SetConfigName("routine")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("ROUTINE")
	viper.AutomaticEnv()

	if dir, err := store.ConfigDir(); err == nil {
		viper.AddConfigPath(dir)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "error: read config: %v\n", err)
			os.Exit(1)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(_ *cobra.Command, args []string) error {
	schedulePath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve schedule path: %w", err)
	}

	logFile, err := openLog(viper.GetString("log"))
	if err != nil {
		return err
	}
	defer logFile.Close()

	dbPath := viper.GetString("db")
	if dbPath == "" {
		if dbPath, err = store.DefaultDBPath(); err != nil {
			return err
		}
	}
	s, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	self, err := os.Executable()
	if err != nil {
		log.Printf("error: locate executable: %v (hot reload disabled)", err)
		self = ""
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := tui.NewApp(ctx, tui.Config{
		Store:        s,
		SchedulePath: schedulePath,
		SelfPath:     self,
	})
	log.Printf("routine: started, schedule %s, history %s", schedulePath, dbPath)

	for {
		p := tea.NewProgram(app, tea.WithAltScreen())
		app.Attach(p)
		m, err := p.Run()
		if err != nil {
			return err
		}
		app = m.(tui.App)
		if !app.ReloadRequested() {
			log.Printf("routine: exiting")
			return nil
		}

		// Exec only returns on failure; the old code keeps running.
		err = reload.Exec(self, os.Args)
		log.Printf("error: reload: %v", err)
		app = app.ReloadFailed(err)
	}
}

func openLog(path string) (*os.File, error) {
	if path == "" {
		dir, err := store.ConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "routine.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := tea.LogToFile(path, "routine")
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return f, nil
}
