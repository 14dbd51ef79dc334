package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorepness/adapters/excel"
	"gorepness/adapters/parquet"
	"gorepness/adapters/postgres"
	"gorepness/domain/votes"
	"gorepness/internal/config"
	"gorepness/internal/container"
	"gorepness/internal/errors"
	"gorepness/internal/migration"
	"gorepness/internal/report"
	"gorepness/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional; the environment wins when both are set
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "repness",
		Short: "Representative and consensus statements for painted opinion groups",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newImportCmd(),
		newMigrateCmd(),
		newSynthCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var labelsPath, optionsPath, format, outPath, title string
	var includeUnpainted bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute representative and consensus statements for a labels file",
		Long: `Reads a participant -> group file (label or color_index column), runs the
analysis against the vote store selected by VOTE_SOURCE and prints a report.

Example: repness analyze --labels groups.csv --format markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), labelsPath, optionsPath, format, outPath, title, includeUnpainted)
		},
	}

	cmd.Flags().StringVar(&labelsPath, "labels", "", "Participant labels file (csv or xlsx)")
	cmd.Flags().StringVar(&optionsPath, "options", "", "YAML analysis options file")
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: json, markdown, html or xlsx")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file (stdout when empty; required for xlsx)")
	cmd.Flags().StringVar(&title, "title", "Opinion groups", "Report title")
	cmd.Flags().BoolVar(&includeUnpainted, "include-unpainted", false, "Treat color index -1 as its own group")
	_ = cmd.MarkFlagRequired("labels")

	return cmd
}

// requireGroups refuses label sets with fewer than two painted groups
func requireGroups(labels []votes.GroupLabel) error {
	if !votes.HasEnoughGroupsForAnalysis(labels) {
		return errors.ValidationError(votes.AnalysisStatusMessage(labels))
	}
	return nil
}

func runAnalyze(ctx context.Context, labelsPath, optionsPath, format, outPath, title string, includeUnpainted bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	opts := cfg.Analysis.Options
	if optionsPath != "" {
		if opts, err = config.LoadAnalysisOptions(optionsPath, opts); err != nil {
			return err
		}
	}

	assignment, err := excel.NewDataReader(labelsPath).ReadLabels(includeUnpainted)
	if err != nil {
		return fmt.Errorf("failed to read labels: %w", err)
	}
	if err := requireGroups(assignment.Labels); err != nil {
		return err
	}

	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	if err := c.Open(ctx); err != nil {
		return err
	}
	defer c.Shutdown()

	catalog, err := c.Analysis.Catalog(ctx)
	if err != nil {
		return err
	}
	result, err := c.Analysis.CalculateRepresentativeStatements(ctx, assignment.Labels, assignment.ParticipantIDs, catalog, opts)
	if err != nil {
		return err
	}

	if format == "json" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		return writeOutput(outPath, append(data, '\n'))
	}

	r, err := report.Build(title, result, catalog)
	if err != nil {
		return err
	}
	switch format {
	case "markdown":
		return writeOutput(outPath, []byte(r.Markdown()))
	case "html":
		return writeOutput(outPath, r.HTML())
	case "xlsx":
		if outPath == "" {
			return fmt.Errorf("--out is required for xlsx output")
		}
		return r.WriteXLSX(outPath)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func newImportCmd() *cobra.Command {
	var votesPath, commentsPath, databaseURL string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a Polis votes and comments export into postgres",
		Long: `Upserts votes (csv, xlsx or parquet) and comments (csv or xlsx) into the
postgres vote store, creating the schema when missing.

Example: repness import --votes votes.csv --comments comments.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				databaseURL = os.Getenv("DATABASE_URL")
			}
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}
			return runImport(cmd.Context(), databaseURL, votesPath, commentsPath)
		},
	}

	cmd.Flags().StringVar(&votesPath, "votes", "", "Votes export")
	cmd.Flags().StringVar(&commentsPath, "comments", "", "Comments export")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection string (defaults to DATABASE_URL)")

	return cmd
}

func runImport(ctx context.Context, databaseURL, votesPath, commentsPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if votesPath == "" && commentsPath == "" {
		return fmt.Errorf("nothing to import: pass --votes and/or --comments")
	}

	db, err := container.OpenDatabase(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if commentsPath != "" {
		statements, err := excel.NewDataReader(commentsPath).ReadStatements()
		if err != nil {
			return err
		}
		n, err := postgres.NewStatementRepository(db).SaveStatements(ctx, statements)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d statements\n", n)
	}

	if votesPath != "" {
		records, err := readVotesFile(votesPath)
		if err != nil {
			return err
		}
		store := postgres.NewVoteStoreWithDB(db)
		n, err := store.SaveVotes(ctx, records)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d votes\n", n)
	}
	return nil
}

func readVotesFile(path string) ([]votes.Record, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return parquet.ReadVotes(path)
	}
	return excel.NewDataReader(path).ReadVotes()
}

func newMigrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the comments and votes tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				databaseURL = os.Getenv("DATABASE_URL")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			db, err := container.OpenDatabase(ctx, databaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Printf("schema at version %s\n", migration.NewRunner().Version())
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection string (defaults to DATABASE_URL)")
	return cmd
}

func newSynthCmd() *cobra.Command {
	genConfig := testkit.DefaultConversationConfig()
	var votesOut, commentsOut, labelsOut string

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate a synthetic polarized conversation",
		Long: `Writes seeded synthetic votes (parquet), comments (xlsx) and the
ground-truth grouping (xlsx) for trying out the analysis.

Example: repness synth --participants 500 --groups 3 --out votes.parquet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSynth(genConfig, votesOut, commentsOut, labelsOut)
		},
	}

	cmd.Flags().IntVar(&genConfig.Participants, "participants", genConfig.Participants, "Number of participants")
	cmd.Flags().IntVar(&genConfig.Statements, "statements", genConfig.Statements, "Number of statements")
	cmd.Flags().IntVar(&genConfig.Groups, "groups", genConfig.Groups, "Number of opinion groups")
	cmd.Flags().Float64Var(&genConfig.Polarization, "polarization", genConfig.Polarization, "0 = consensus, 1 = opposed camps")
	cmd.Flags().Int64Var(&genConfig.Seed, "seed", genConfig.Seed, "Random seed for deterministic generation")
	cmd.Flags().StringVar(&votesOut, "out", "votes.parquet", "Votes parquet file")
	cmd.Flags().StringVar(&commentsOut, "comments-out", "comments.xlsx", "Comments workbook")
	cmd.Flags().StringVar(&labelsOut, "labels-out", "labels.xlsx", "Ground-truth labels workbook")

	return cmd
}

func runSynth(cfg testkit.ConversationGeneratorConfig, votesOut, commentsOut, labelsOut string) error {
	conv := testkit.NewConversationGenerator(cfg).Generate()

	if err := parquet.WriteVotes(votesOut, conv.Records); err != nil {
		return err
	}

	comments := excel.Sheet{Name: "comments", Headers: []string{"comment-id", "comment-body", "moderated"}}
	for _, s := range conv.Statements {
		comments.Rows = append(comments.Rows, []interface{}{s.ID.String(), s.Text, int(s.Moderation)})
	}
	if err := excel.NewReportWriter(comments).SaveAs(commentsOut); err != nil {
		return err
	}

	labels := excel.Sheet{Name: "labels", Headers: []string{"participant_id", "label"}}
	for i, pid := range conv.ParticipantIDs {
		labels.Rows = append(labels.Rows, []interface{}{pid.String(), string(conv.Labels[i])})
	}
	if err := excel.NewReportWriter(labels).SaveAs(labelsOut); err != nil {
		return err
	}

	fmt.Printf("wrote %d votes from %d participants on %d statements\n", len(conv.Records), len(conv.ParticipantIDs), len(conv.Statements))
	return nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
