package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gokatarajesh/techquiz/internal/app"
	"github.com/gokatarajesh/techquiz/internal/progress"
	"github.com/gokatarajesh/techquiz/internal/question"
)

var drawCmd = &cobra.Command{
	Use:   "draw",
	Short: "Run one selection against the configured store",
	Example: `  quizctl draw --select language:go,rust --select softskills --limit 10
  quizctl draw --user 3f1c --select framework:react --json`,
	RunE: runDraw,
}

func init() {
	drawCmd.Flags().StringArray("select", nil, "category[:tech,tech...], repeatable (default: every known category)")
	drawCmd.Flags().Int("limit", 10, "Number of questions to draw")
	drawCmd.Flags().String("user", "", "Client id whose recorded counters are applied")
	drawCmd.Flags().Uint64("seed", 0, "Tie-break seed (overrides SELECTION_SEED)")
	drawCmd.Flags().Bool("json", false, "Print the result as JSON")
}

func runDraw(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	raw, _ := cmd.Flags().GetStringArray("select")
	selections, err := parseSelections(raw)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	userID, _ := cmd.Flags().GetString("user")
	seed := cfg.Runtime.SelectionSeed
	if cmd.Flags().Changed("seed") {
		seed, _ = cmd.Flags().GetUint64("seed")
	}

	ctx := cmd.Context()
	backends, err := app.OpenBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close(ctx)

	var counters question.CounterStore
	if userID != "" {
		redisClient := app.NewRedis(cfg.Redis)
		defer redisClient.Close()
		counters = progress.NewStore(redisClient, cfg.Redis.ProgressPrefix, logger)
	}

	svc := question.NewService(backends.Source, nil, counters, logger, question.ServiceOptions{
		MaxLimit: cfg.Runtime.MaxLimit,
		Selector: app.NewSelector(seed),
	})
	result, err := svc.Draw(ctx, question.DrawRequest{UserID: userID, Selections: selections, Limit: limit})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tKEY\tPRIORITY\tEXPOSURE\tMISSED\tWEIGHT")
	for i, q := range result.Questions {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%.4f\n", i+1, q.Key(), q.Priority, q.Exposure, q.Missed, q.Weight)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "pool %d, drawn %d of %d\n", result.PoolSize, len(result.Questions), result.Requested)
	return nil
}

// knownCategories is drawn from when no --select flag is given.
var knownCategories = []string{question.CategoryLanguage, question.CategoryFramework, question.CategorySoftSkills}

// parseSelections turns "language:go,rust" style flags into selections.
func parseSelections(raw []string) ([]question.CategorySelection, error) {
	if len(raw) == 0 {
		raw = knownCategories
	}
	out := make([]question.CategorySelection, 0, len(raw))
	for _, s := range raw {
		category, techs, _ := strings.Cut(s, ":")
		category = strings.TrimSpace(category)
		if category == "" {
			return nil, fmt.Errorf("selection %q has no category", s)
		}
		sel := question.CategorySelection{Category: category}
		for _, t := range strings.Split(techs, ",") {
			if t = strings.TrimSpace(t); t != "" {
				sel.TechNames = append(sel.TechNames, t)
			}
		}
		out = append(out, sel)
	}
	return out, nil
}
