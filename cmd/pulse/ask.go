package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/openpulse/pulse/internal/core"
	"github.com/openpulse/pulse/internal/memory"
	"github.com/openpulse/pulse/internal/reasoning"
	"github.com/openpulse/pulse/pkg/log"
	"github.com/spf13/cobra"
)

var (
	askUser string
	askMode string
)

var askCmd = &cobra.Command{
	Use:          "ask [texto]",
	Short:        "Send one input through the dispatch pipeline",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()
		logger := log.FromCtx(ctx)

		forced, err := parseForcedMode(askMode)
		if err != nil {
			return err
		}

		app := NewApp(ctx)
		defer app.Close()

		userID := askUser
		if userID == "" {
			userID = app.Cfg.DefaultUserID
		}
		input := strings.Join(args, " ")

		promptContext := app.Assembler.Build(ctx, userID, memory.BuildOptions{
			LookbackDays: app.ReasonCfg.LookbackDays,
			MaxSessions:  app.ReasonCfg.MaxSessions,
			MaxFacts:     app.ReasonCfg.MaxFacts,
		})
		promptContext = promptContext + "\n\n" + reasoning.TemporalGuardrail(time.Now())

		sessionID := app.Sessions.CreateSession(ctx, userID)

		result, err := app.Dispatcher.Process(ctx, reasoning.Request{
			Input:      input,
			Context:    promptContext,
			ForcedMode: forced,
		})
		if err != nil {
			return err
		}

		reasoningUsed := result.Mode == core.ModeDeep
		if _, _, err := app.Sessions.AddTurnAutoRecover(ctx, sessionID, userID, core.RoleUser, input, core.TurnMeta{}, false); err != nil {
			logger.Warn().Err(err).Msg("failed to record user turn")
		}
		meta := core.TurnMeta{Mode: string(result.Mode)}
		if _, _, err := app.Sessions.AddTurnAutoRecover(ctx, sessionID, userID, core.RoleAssistant, result.Text, meta, reasoningUsed); err != nil {
			logger.Warn().Err(err).Msg("failed to record assistant turn")
		}
		app.Sessions.EndSession(ctx, sessionID, 0)

		if result.Thinking != "" {
			logger.Debug().Str("thinking", result.Thinking).Msg("reasoning trace")
		}
		logger.Info().
			Str("mode", string(result.Mode)).
			Float64("confidence", result.Confidence).
			Dur("latency", result.Latency).
			Msg("request complete")

		fmt.Println(result.Text)
		return nil
	},
}

func parseForcedMode(s string) (core.ReasoningMode, error) {
	switch s {
	case "":
		return "", nil
	case "fast":
		return core.ModeFast, nil
	case "deep":
		return core.ModeDeep, nil
	default:
		return "", fmt.Errorf("unknown mode %q, expected fast or deep", s)
	}
}

func init() {
	askCmd.Flags().StringVarP(&askUser, "user", "u", "", "user id (defaults to the configured user)")
	askCmd.Flags().StringVarP(&askMode, "mode", "m", "", "force a reasoning mode: fast or deep")
	rootCmd.AddCommand(askCmd)
}
