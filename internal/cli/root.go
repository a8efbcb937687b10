package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	logPath     string
	fixturesDir string
	catalogPath string
	actionsPath string
)

var rootCmd = &cobra.Command{
	Use:   "arbiter",
	Short: "Arbiter - Adversarial review board for agent web access",
	Long: `Arbiter is a local-first review board that sits between an AI agent
and the web content it wants to act on. Fetched pages pass through
content sanitization, suspicious-pattern scoring, plan-conformance
checks, and an optional juror panel before the agent is allowed to
proceed, blocking prompt-injection-driven exfiltration and navigation.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Path to audit log file (default: ~/.arbiter/audit.jsonl)")
	rootCmd.PersistentFlags().StringVar(&fixturesDir, "fixtures", "", "Path to HTML fixtures directory (default: fixtures/html)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "patterns", "", "Path to suspicious-pattern catalog YAML (default: built-in)")
	rootCmd.PersistentFlags().StringVar(&actionsPath, "actions", "", "Path to dangerous-action catalog YAML (default: built-in)")
}

func Execute() error {
	// Optional .env for ARB_* settings; absence is fine.
	_ = godotenv.Load()
	return rootCmd.Execute()
}
