package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/25eliu/ClubApp/internal/analyses"
	"github.com/25eliu/ClubApp/internal/clubs"
	"github.com/25eliu/ClubApp/internal/extract"
	"github.com/25eliu/ClubApp/internal/llm/providers"
	"github.com/25eliu/ClubApp/internal/resumes"
	"github.com/25eliu/ClubApp/internal/shared/config"
	"github.com/25eliu/ClubApp/internal/shared/storage/db"
)

var (
	cleanupDays int
	exportOut   string
	promptClub  string
	promptRun   bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		version, err := db.MigrationVersion(cmd.Context(), e.db)
		if err != nil {
			return errors.Wrap(err, "migration version")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
		return nil
	},
}

var loadClubsCmd = &cobra.Command{
	Use:   "load-clubs <file.csv|file.yaml>",
	Short: "Replace the club directory with the contents of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		n, err := e.clubs().LoadFile(cmd.Context(), args[0])
		if err != nil {
			return errors.Wrapf(err, "load %s", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "loaded %d clubs\n", n)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print directory, resume and analysis statistics as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		clubStats, err := e.clubs().Stats(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "club stats")
		}
		resumeStats, err := (&resumes.PGRepo{DB: e.db}).Stats(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "resume stats")
		}
		analysisStats, err := e.analyses(nil).Statistics(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "analysis stats")
		}
		return writeJSON(cmd, map[string]any{
			"clubs":    clubStats,
			"resumes":  resumeStats,
			"analyses": analysisStats,
		})
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete analyses older than the given number of days",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		n, err := e.analyses(nil).Cleanup(cmd.Context(), cleanupDays)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d analyses\n", n)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <resume-id>",
	Short: "Export every analysis of a resume as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		payload, err := e.analyses(nil).ExportForResume(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if exportOut == "" {
			_, err = cmd.OutOrStdout().Write(append(payload, '\n'))
			return err
		}
		return errors.Wrap(os.WriteFile(exportOut, payload, 0o644), "write export")
	},
}

var promptCmd = &cobra.Command{
	Use:   "prompt <resume-file>",
	Short: "Render the analysis prompt for a resume file and a club",
	Long: `Renders the prompt sent to the LLM for one club. With --run the prompt is
sent to the configured provider and the parsed result is printed instead.
Clubs are read from CLUBS_FILE; no database is needed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		club, err := findClub(cfg.ClubsFile, promptClub)
		if err != nil {
			return err
		}
		text, err := readResume(cmd, args[0])
		if err != nil {
			return err
		}
		if !promptRun {
			fmt.Fprintln(cmd.OutOrStdout(), analyses.BuildPrompt(text, club))
			return nil
		}

		client := providers.New(cmd.Context(), cfg.LLMSettings())
		raw, err := client.Generate(cmd.Context(), analyses.BuildPrompt(text, club))
		if err != nil {
			return errors.Wrap(err, "generate")
		}
		result, perr := analyses.ParseResult(raw)
		if perr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", perr)
		}
		return writeJSON(cmd, result)
	},
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", analyses.DefaultCleanupDays, "age threshold in days")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write to file instead of stdout")
	promptCmd.Flags().StringVar(&promptClub, "club", "", "club name")
	promptCmd.Flags().BoolVar(&promptRun, "run", false, "send the prompt and print the parsed result")
	_ = promptCmd.MarkFlagRequired("club")

	rootCmd.AddCommand(migrateCmd, loadClubsCmd, statsCmd, cleanupCmd, exportCmd, promptCmd)
}

func findClub(path, name string) (clubs.Club, error) {
	if path == "" {
		return clubs.Club{}, errors.New("CLUBS_FILE is not set")
	}
	list, err := clubs.LoadFile(path)
	if err != nil {
		return clubs.Club{}, errors.Wrapf(err, "load %s", path)
	}
	for _, c := range list {
		if c.Name == name {
			return c, nil
		}
	}
	return clubs.Club{}, errors.Errorf("club %q not found in %s", name, path)
}

func readResume(cmd *cobra.Command, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "read resume")
	}
	name := filepath.Base(path)
	text, err := extract.ExtractTextFromBytes(cmd.Context(), data, extract.MimeFromFileName(name), name)
	return text, errors.Wrap(err, "extract resume text")
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
