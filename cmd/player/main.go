package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JC-comp/karaoke/internal/client/jobsync"
	"github.com/JC-comp/karaoke/internal/client/socket"
	"github.com/JC-comp/karaoke/internal/tui"
	"github.com/JC-comp/karaoke/pkg/ctxlogger"
)

var rootCmd = &cobra.Command{
	Use:   "player",
	Short: "Terminal karaoke room player",
	Long:  `Joins a karaoke room, mirrors its playlist and play state, and renders synced captions in the terminal.`,
	RunE:  runPlayer,
}

func init() {
	rootCmd.Flags().String("server", "http://localhost", "Server base URL")
	rootCmd.Flags().String("room", "Default", "Room name to join")
	rootCmd.Flags().String("log-level", "ERROR", "Logging level")

	viper.BindPFlags(rootCmd.Flags())
	viper.BindEnv("server", "KARAOKE_SERVER")
	viper.BindEnv("room", "KARAOKE_ROOM")
	viper.BindEnv("log-level", "KARAOKE_LOG_LEVEL")
}

// wsURL rewrites the HTTP base URL into the websocket endpoint of one
// namespace.
func wsURL(base, path string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse server url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = path
	return u.String(), nil
}

func runPlayer(cmd *cobra.Command, args []string) error {
	server := strings.TrimRight(viper.GetString("server"), "/")
	room := viper.GetString("room")

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(viper.GetString("log-level"))); err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	// the terminal owns stdout; logs go to stderr
	logOutput := os.Stderr
	logger := slog.New(ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
			Level: logLevel,
		}),
	})

	roomURL, err := wsURL(server, "/ws/room")
	if err != nil {
		return err
	}
	jobURL, err := wsURL(server, "/ws/job")
	if err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	roomChannel := socket.NewManager(&socket.Config{URL: roomURL, Clock: clock}, logger)
	jobChannel := socket.NewManager(&socket.Config{URL: jobURL, Clock: clock}, logger)
	fetcher := jobsync.NewHTTPFetcher(server, nil)

	app := tui.NewApp(roomChannel, jobChannel, fetcher, room, clock, logger)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run player: %w", err)
	}
	return nil
}

func main() {
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
