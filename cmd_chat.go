package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gentherapist/internal/core"
	"gentherapist/src/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat in the terminal",
	Long: `Start an interactive chat session in the terminal.

Type /clear to start the conversation over and /quit to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Keep the transcript readable unless a level was asked for
		if !cmd.Flags().Changed("log-level") {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		}

		cfg := *appConfig
		cfg.ConversationConfig.Backend = "memory"

		app, err := buildApplication(cmd.Context(), &cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		return runChat(cmd.Context(), app.chat, uuid.NewString(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func runChat(ctx context.Context, chat *core.ChatService, sessionID string, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "GenTherapist is listening. Type /clear to start over or /quit to leave.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nyou> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			fmt.Fprintln(out, "Take care.")
			return nil
		case "/clear":
			if err := chat.Clear(ctx, sessionID); err != nil {
				return err
			}
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		}

		result, err := chat.Send(ctx, sessionID, line)
		if errors.Is(err, core.ErrEmptyMessage) {
			continue
		}
		if err != nil {
			logger.Error().Err(err).Msg("Chat turn failed")
			return err
		}

		fmt.Fprintf(out, "\ngentherapist> %s\n", result.Result.Reply)
		set := result.Result.Techniques
		fmt.Fprintf(out, "\n  %s:\n", set.Title)
		for _, ex := range set.Exercises {
			fmt.Fprintf(out, "    %s %s - %s\n", ex.Icon, ex.Name, ex.Description)
		}
	}
}
