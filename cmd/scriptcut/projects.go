package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/scriptcut/scriptcut-editor/internal/config"
	"github.com/scriptcut/scriptcut-editor/internal/db"
	"github.com/scriptcut/scriptcut-editor/internal/logging"
	"github.com/scriptcut/scriptcut-editor/internal/project"
	"github.com/scriptcut/scriptcut-editor/internal/store"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage projects in the local database",
	Long: `Create and list projects kept in the local database. These are the
projects the editor opens when no backend is configured.`,
}

var (
	createName string
	createType string
)

var projectsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a local project",
	RunE: func(cmd *cobra.Command, args []string) error {
		if createType != project.TypeScript && createType != project.TypeVideo {
			return fmt.Errorf("invalid --type %q: must be %s or %s", createType, project.TypeScript, project.TypeVideo)
		}
		repo, closeDB, err := openLocalRepository()
		if err != nil {
			return err
		}
		defer closeDB()

		p := &project.Project{Name: createName, Type: createType}
		if err := repo.CreateProject(cmd.Context(), p); err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), p.ID)
		return nil
	},
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local projects, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeDB, err := openLocalRepository()
		if err != nil {
			return err
		}
		defer closeDB()

		projects, err := repo.ListProjects(cmd.Context())
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tUPDATED")
		for _, p := range projects {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Type, p.UpdatedAt.Local().Format(time.DateTime))
		}
		return w.Flush()
	},
}

func init() {
	projectsCreateCmd.Flags().StringVar(&createName, "name", "Untitled", "Project name")
	projectsCreateCmd.Flags().StringVar(&createType, "type", project.TypeScript, "Project type (script or video)")
	projectsCmd.AddCommand(projectsCreateCmd)
	projectsCmd.AddCommand(projectsListCmd)
}

// openLocalRepository opens the configured database with logging kept to
// warnings so command output stays clean.
func openLocalRepository() (*store.SQLiteRepository, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLoggerTo(os.Stderr, "warn")
	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store.NewRepository(database.Conn()), func() { database.Close() }, nil
}
