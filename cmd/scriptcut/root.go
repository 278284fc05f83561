package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scriptcut/scriptcut-editor/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "scriptcut",
	Short: "Local engine for the ScriptCut video editor",
	Long: `ScriptCut keeps an editing session for one project: script sections,
timeline tracks, canvas overlays and playback. It saves to the ScriptCut
backend when EDITOR_BACKEND_URL is set and to a local database otherwise.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "scriptcut %s (commit %s, built %s)\n",
			config.Version, config.GitCommit, config.BuildTime)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(versionCmd)
}
