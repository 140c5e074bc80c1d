package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openpulse/pulse/internal/memory"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:          "stats [user]",
	Short:        "Show stored-memory and dispatch statistics for a user",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		app := NewApp(ctx)
		defer app.Close()

		userID := app.Cfg.DefaultUserID
		if len(args) > 0 {
			userID = args[0]
		}

		userStats, err := app.Vectors.Stats(ctx, userID)
		if err != nil {
			return err
		}
		decisionStats, err := app.Analytics.Stats(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Usuário: %s\n", userID)
		fmt.Printf("  Mensagens: %d\n", userStats.Messages)
		fmt.Printf("  Fatos:     %d\n", userStats.Facts)
		fmt.Printf("  Soluções:  %d\n", userStats.Solutions)
		fmt.Printf("\nDecisões registradas: %d\n", decisionStats.TotalRequests)
		for mode, s := range decisionStats.ByMode {
			fmt.Printf("  %-16s %4d reqs, %6.0fms média, confiança %.2f\n",
				mode, s.Count, s.AvgTimeMs, s.AvgConfidence)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:          "search [user] [query...]",
	Short:        "Semantic search over a user's stored conversations",
	Args:         cobra.MinimumNArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		app := NewApp(ctx)
		defer app.Close()

		userID := args[0]
		query := strings.Join(args[1:], " ")

		hits, err := app.Assembler.SearchSimilar(ctx, query, userID, 5)
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			fmt.Println("Nada relevante encontrado.")
			return nil
		}

		for i, h := range hits {
			fmt.Printf("%d. [%.2f] %s (%s)\n   %s\n",
				i+1, h.Similarity, h.Role, h.Timestamp.Format("02/01/2006 15:04"), h.Text)
		}
		return nil
	},
}

var contextCmd = &cobra.Command{
	Use:          "context [user]",
	Short:        "Render the context bundle the dispatcher would receive",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		app := NewApp(ctx)
		defer app.Close()

		userID := app.Cfg.DefaultUserID
		if len(args) > 0 {
			userID = args[0]
		}

		fmt.Println(app.Assembler.Build(ctx, userID, memory.BuildOptions{
			LookbackDays: app.ReasonCfg.LookbackDays,
			MaxSessions:  app.ReasonCfg.MaxSessions,
			MaxFacts:     app.ReasonCfg.MaxFacts,
		}))
		return nil
	},
}

var purgeYes bool

var purgeCmd = &cobra.Command{
	Use:          "purge [user]",
	Short:        "Delete everything stored for a user",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		userID := args[0]
		if !purgeYes {
			return fmt.Errorf("purge removes all memory of %q permanently, re-run with --yes to confirm", userID)
		}

		app := NewApp(ctx)
		defer app.Close()

		if err := app.Vectors.PurgeUser(ctx, userID); err != nil {
			return err
		}
		fmt.Printf("Memória de %s removida.\n", userID)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:          "export [user] [file]",
	Short:        "Export a user's conversations to a JSON file",
	Args:         cobra.RangeArgs(1, 2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		app := NewApp(ctx)
		defer app.Close()

		userID := args[0]
		outFile := fmt.Sprintf("pulse_export_%s_%s.json", userID, time.Now().Format("20060102"))
		if len(args) > 1 {
			outFile = args[1]
		}

		export, err := app.Assembler.Export(ctx, userID)
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(export, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(outFile, data, 0o644); err != nil {
			return err
		}

		fmt.Printf("Exportadas %d sessões (%d mensagens) para %s\n",
			export.TotalSessions, export.TotalMessages, outFile)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:          "list",
	Short:        "List users with stored memory",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		app := NewApp(ctx)
		defer app.Close()

		users, err := app.Vectors.ListUsers(ctx)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("Nenhum usuário com memória armazenada.")
			return nil
		}
		for _, u := range users {
			fmt.Println(u)
		}
		return nil
	},
}

func init() {
	purgeCmd.Flags().BoolVar(&purgeYes, "yes", false, "confirm the purge")
	rootCmd.AddCommand(statsCmd, searchCmd, contextCmd, purgeCmd, exportCmd, listCmd)
}
