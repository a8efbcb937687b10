package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/agentgauntlet/arbiter/internal/approval"
	"github.com/agentgauntlet/arbiter/internal/board"
	"github.com/agentgauntlet/arbiter/internal/config"
	"github.com/agentgauntlet/arbiter/internal/conformance"
	"github.com/agentgauntlet/arbiter/internal/fetch"
	"github.com/agentgauntlet/arbiter/internal/gate"
	"github.com/agentgauntlet/arbiter/internal/logger"
	"github.com/agentgauntlet/arbiter/internal/referee"
	"github.com/agentgauntlet/arbiter/internal/sanitize"
	"github.com/spf13/cobra"
)

var (
	evalTool        string
	evalAction      string
	evalDomain      string
	evalObjectives  []string
	evalJurors      int
	evalLLM         bool
	evalInteractive bool
	evalJSON        bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <url>",
	Short: "Evaluate a proposed page access through the review board",
	Long: `Fetch a local fixture by URL and run the full review: sanitization,
suspicious-pattern scoring, domain allowlist, plan conformance, and the
optional juror panel. The decision is printed and recorded in the audit log.

Examples:
  arbiter evaluate http://localhost/safe_store.html
  arbiter evaluate http://localhost/trap_hidden_text.html --jurors 3 --llm
  arbiter evaluate http://localhost/trap_offscreen.html --interactive`,
	Args: cobra.ExactArgs(1),
	RunE: evaluateCommand,
}

func init() {
	evaluateCmd.Flags().StringVar(&evalTool, "tool", "read_page", "Tool the agent proposes to use")
	evaluateCmd.Flags().StringVar(&evalAction, "action", "read_page", "Action the agent proposes to take")
	evaluateCmd.Flags().StringVar(&evalDomain, "domain", "localhost", "Contract domain")
	evaluateCmd.Flags().StringSliceVar(&evalObjectives, "objective", []string{"refund", "policy"}, "Contract objective tags")
	evaluateCmd.Flags().IntVar(&evalJurors, "jurors", -1, "Number of juror personas (0-3, overrides ARB_JURORS)")
	evaluateCmd.Flags().BoolVar(&evalLLM, "llm", false, "Enable the juror panel (overrides ARB_LLM)")
	evaluateCmd.Flags().BoolVar(&evalInteractive, "interactive", false, "Prompt for human approval on denial")
	evaluateCmd.Flags().BoolVar(&evalJSON, "json", false, "Print the full decision as JSON")
	rootCmd.AddCommand(evaluateCmd)
}

func evaluateCommand(cmd *cobra.Command, args []string) error {
	url := args[0]

	cfg, err := config.Load(logPath, fixturesDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	auditLogger, err := logger.New(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("failed to initialize audit logger: %w", err)
	}
	defer auditLogger.Close()

	store := fetch.NewStore(cfg.FixturesDir)
	html, err := store.Fetch(url)
	if err != nil {
		return err
	}

	catalog, err := gate.LoadCatalog(catalogPath)
	if err != nil {
		return fmt.Errorf("failed to load pattern catalog: %w", err)
	}
	if err := conformance.LoadDangerousActions(actionsPath); err != nil {
		return fmt.Errorf("failed to load dangerous-action catalog: %w", err)
	}

	settings := config.SettingsFromEnv()
	if cmd.Flags().Changed("llm") {
		settings.LLMEnabled = evalLLM
	}
	if evalJurors >= 0 {
		settings.JurorCount = evalJurors
		if evalJurors > 0 {
			settings.LLMEnabled = true
		}
	}
	settings = settings.Normalized()

	step := conformance.Step{
		Action:  evalAction,
		Tool:    evalTool,
		URL:     url,
		Fixture: fixtureName(url),
	}
	contract := conformance.Contract{
		Domain:        evalDomain,
		Tool:          evalTool,
		ObjectiveTags: evalObjectives,
	}

	b := board.New(gate.New(catalog), nil)
	decision := b.Evaluate(context.Background(), board.Request{
		Step:       step,
		URL:        url,
		RawContent: html,
		Contract:   contract,
		Settings:   settings,
	})

	event := logger.AuditEvent{
		Timestamp:           time.Now().UTC().Format(time.RFC3339),
		DecisionID:          decision.DecisionID,
		URL:                 url,
		Fixture:             step.Fixture,
		Approved:            decision.Approved,
		Confidence:          decision.Confidence,
		StaticScore:         decision.Signals.StaticScore,
		DefensesUsed:        decision.DefensesUsed,
		Reasons:             decision.Reasons,
		Snippet:             decision.Signals.Snippet,
		FallbackRecommended: decision.FallbackRecommended,
		LatencyMS:           decision.Signals.AnalysisTimeMS,
	}

	if evalJSON {
		data, err := json.MarshalIndent(decision, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		fmt.Printf("Page: %s (%s)\n", sanitize.Title(html), url)
		printDecision(decision)
	}

	if decision.Approved {
		if err := auditLogger.Log(event); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write audit log: %v\n", err)
		}
		return nil
	}

	if evalInteractive {
		prompt := approval.Prompt{
			URL:      url,
			Defenses: decision.DefensesUsed,
			Reasons:  decision.Reasons,
		}
		if decision.RevisedStep != nil {
			prompt.Revision = decision.RevisedStep.URL
		}

		result := approval.Ask(prompt)
		event.UserAction = result.UserAction

		if result.Approved {
			fmt.Fprintln(os.Stderr, "\n✅ Approved by operator")
			if err := auditLogger.Log(event); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to write audit log: %v\n", err)
			}
			return nil
		}
	}

	if err := auditLogger.Log(event); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write audit log: %v\n", err)
	}

	fmt.Fprintln(os.Stderr, "\n❌ DENIED by Arbiter")
	os.Exit(1)
	return nil
}

func printDecision(d board.Decision) {
	verdict := "DENIED"
	icon := "❌"
	if d.Approved {
		verdict = "APPROVED"
		icon = "✅"
	}

	fmt.Printf("%s %s (confidence %.2f)\n", icon, verdict, d.Confidence)
	fmt.Printf("   Static score: %d/5\n", d.Signals.StaticScore)
	if len(d.Signals.StaticPatterns) > 0 {
		fmt.Printf("   Patterns: %s\n", strings.Join(d.Signals.StaticPatterns, ", "))
	}
	fmt.Printf("   Defenses: %s\n", strings.Join(d.DefensesUsed, ", "))
	for _, def := range d.DefensesUsed {
		if why, ok := referee.DefenseExplanations[def]; ok {
			fmt.Printf("     %s: %s\n", def, why)
		}
	}
	for _, r := range d.Reasons {
		fmt.Printf("   Reason: %s\n", r)
	}
	if d.Signals.JurorMedianRisk != nil {
		fmt.Printf("   Juror median risk: %g/5 (%s)\n", *d.Signals.JurorMedianRisk, d.Signals.JurySummary)
	}
	if d.RevisedStep != nil {
		fmt.Printf("   Safe alternative: %s via %s\n", d.RevisedStep.URL, d.RevisedStep.Tool)
	}
	if d.FallbackRecommended {
		fmt.Println("   ⚠  Fallback recommended: repeated denials this session")
	}
}

func fixtureName(url string) string {
	name := url
	if i := strings.LastIndex(url, "/"); i >= 0 {
		name = url[i+1:]
	}
	if name == "" {
		return "safe_store.html"
	}
	if !strings.HasSuffix(name, ".html") {
		name += ".html"
	}
	return name
}
