package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/hpn/hpn-chat-relay/internal/config"
	"github.com/hpn/hpn-chat-relay/internal/domain"
	"github.com/hpn/hpn-chat-relay/internal/relay"
	"github.com/hpn/hpn-chat-relay/internal/ui"
)

var askHistory string

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Run one relay invocation in-process and print the answer",
	Long: `Run one relay invocation in-process, exactly as the HTTP route would,
and print the status code and JSON body. Useful as a smoke test of the API key
and upstream settings.

Examples:
  relay ask "What is the capital of France?"

  # Continue a conversation; the file holds a JSON array of {"role","text"} turns
  relay ask "And of Italy?" --history history.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		status, err := runAsk(cmd.Context(), cfg, cmd.ErrOrStderr(), cmd.OutOrStdout(), args[0], askHistory)
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return fmt.Errorf("relay answered with status %d", status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askHistory, "history", "", "path to a JSON file with prior chat turns")
}

// runAsk builds a relay from cfg and sends it one POST. Logs go to logOut,
// the colored status line and body go to out.
func runAsk(ctx context.Context, cfg *config.Configuration, logOut, out io.Writer, prompt, historyPath string) (int, error) {
	logger := setupLogger(logOut, cfg.Logging, cfg.Upstream.APIKey)

	r, err := buildRelay(cfg, logger, nil)
	if err != nil {
		return 0, err
	}

	history, err := loadHistory(historyPath)
	if err != nil {
		return 0, err
	}

	body, err := json.Marshal(domain.ChatPayload{Prompt: prompt, ChatHistory: history})
	if err != nil {
		return 0, fmt.Errorf("failed to encode request: %w", err)
	}

	resp := r.Handle(ctx, relay.IncomingRequest{Method: http.MethodPost, Body: body})

	prev := ui.Output
	ui.Output = out
	defer func() { ui.Output = prev }()
	ui.PrintReply(resp.StatusCode, string(resp.Body))

	return resp.StatusCode, nil
}

// loadHistory reads prior turns from path. An empty path means no history.
func loadHistory(path string) ([]domain.ChatTurn, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var turns []domain.ChatTurn
	if err := json.Unmarshal(raw, &turns); err != nil {
		return nil, fmt.Errorf("failed to parse history file %s: %w", path, err)
	}

	return turns, nil
}
