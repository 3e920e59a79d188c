package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mai033/ai-chat-tool/internal/catalog"
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send one message and print the response",
	Long: "Send one message to the chat backend and print the reply. The message is\n" +
		"read from stdin when no argument is given.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, _ := cmd.Flags().GetString("model")
		systemPrompt, _ := cmd.Flags().GetString("system")
		systemFile, _ := cmd.Flags().GetString("system-file")
		raw, _ := cmd.Flags().GetBool("raw")

		if systemFile != "" {
			data, err := os.ReadFile(systemFile)
			if err != nil {
				return fmt.Errorf("failed to read system file: %w", err)
			}
			systemPrompt = string(data)
		}

		var input string
		if len(args) == 1 {
			input = args[0]
		} else {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			input = strings.TrimSpace(string(data))
		}

		ctrl, err := newController()
		if err != nil {
			return err
		}
		opts := ctrl.LoadCatalog(cmd.Context())
		if model != "" && catalog.IndexOf(opts, model) < 0 {
			return fmt.Errorf("model %q is not available (see 'aichat models')", model)
		}

		ctrl.SetModel(model)
		ctrl.SetSystemPrompt(systemPrompt)
		ctrl.SetUserInput(input)
		if err := ctrl.Submit(cmd.Context()); err != nil {
			return err
		}

		s := ctrl.State()
		out := cmd.OutOrStdout()
		if s.History.Len() == 0 {
			// The request never produced a backend body.
			return errors.New(strings.TrimPrefix(s.Response, "Error: "))
		}
		if !raw && out == os.Stdout && isTerminal(os.Stdout) {
			fmt.Fprintln(out, renderMarkdown(s.Response, terminalWidth(os.Stdout)))
		} else {
			fmt.Fprintln(out, s.Response)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringP("model", "m", "", "model to use")
	askCmd.Flags().StringP("system", "s", "", "system prompt")
	askCmd.Flags().String("system-file", "", "read system prompt from file")
	askCmd.Flags().Bool("raw", false, "print the response without markdown rendering")
	rootCmd.AddCommand(askCmd)
}
