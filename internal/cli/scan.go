package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/agentgauntlet/arbiter/internal/board"
	"github.com/agentgauntlet/arbiter/internal/config"
	"github.com/agentgauntlet/arbiter/internal/conformance"
	"github.com/agentgauntlet/arbiter/internal/fetch"
	"github.com/agentgauntlet/arbiter/internal/gate"
	"github.com/agentgauntlet/arbiter/internal/referee"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Self-test: verify the board blocks the trap fixtures and passes safe ones",
	Long: `Run every HTML fixture through the review board and check the outcome
against expectations: safe pages must be approved, trap pages denied.
Nothing is executed and nothing is written to the audit log.

  arbiter scan`,
	RunE: scanCommand,
}

var scanExportPath string

func init() {
	scanCmd.Flags().StringVar(&scanExportPath, "export", "", "Write the session ledger as JSON to this path")
	rootCmd.AddCommand(scanCmd)
}

func scanCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(logPath, fixturesDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	catalog, err := gate.LoadCatalog(catalogPath)
	if err != nil {
		return fmt.Errorf("failed to load pattern catalog: %w", err)
	}
	if err := conformance.LoadDangerousActions(actionsPath); err != nil {
		return fmt.Errorf("failed to load dangerous-action catalog: %w", err)
	}

	store := fetch.NewStore(cfg.FixturesDir)
	fixtures := store.List()
	if len(fixtures) == 0 {
		return fmt.Errorf("no fixtures found in %s", cfg.FixturesDir)
	}

	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Println("  Arbiter Self-Test")
	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Println()

	contract := conformance.Contract{
		Domain:        "localhost",
		Tool:          "read_page",
		ObjectiveTags: []string{"refund", "policy"},
	}
	settings := config.DefaultSettings()

	b := board.New(gate.New(catalog), nil)

	pass := 0
	fail := 0
	for _, name := range fixtures {
		url := "http://localhost/" + name
		html, err := store.Fetch(url)
		if err != nil {
			fmt.Printf("  ❌  %-28s fetch failed: %v\n", name, err)
			fail++
			continue
		}

		decision := b.Evaluate(context.Background(), board.Request{
			Step: conformance.Step{
				Action:  "read_page",
				Tool:    "read_page",
				URL:     url,
				Fixture: name,
			},
			URL:        url,
			RawContent: html,
			Contract:   contract,
			Settings:   settings,
		})

		wantApproved := !strings.HasPrefix(name, "trap_")
		ok := decision.Approved == wantApproved
		icon := "✅"
		if !ok {
			icon = "❌"
			fail++
		} else {
			pass++
		}

		verdict := "denied"
		if decision.Approved {
			verdict = "approved"
		}
		card := referee.Score(referee.Trace{
			URL:           url,
			Reason:        strings.Join(decision.Reasons, "; "),
			Score:         decision.Signals.StaticScore,
			Patterns:      decision.Signals.StaticPatterns,
			Success:       ok,
			AttackBlocked: wantApproved == false && !decision.Approved,
			DefensesUsed:  decision.DefensesUsed,
		})

		fmt.Printf("  %s  %-28s %s (score %d/5, %s)\n", icon, name, verdict,
			decision.Signals.StaticScore, card.AttackType)
	}

	fmt.Printf("\n  Fixtures: %d/%d passed\n\n", pass, len(fixtures))

	// ── Session report ───────────────────────────────────────────

	fmt.Println("─── Session Summary ───────────────────────────────────")

	summary := b.Ledger().Summary()
	fmt.Printf("  Decisions:       %d (%d approved, %d denied)\n",
		summary.TotalDecisions, summary.Approvals, summary.Denials)
	fmt.Printf("  Denial streak:   %d\n", summary.CurrentDenialStreak)
	fmt.Printf("  Risk trend:      %s (avg %.2f, denial rate %.0f%%)\n",
		summary.RiskTrend.Trend, summary.RiskTrend.AverageRisk, summary.RiskTrend.DenialRate*100)
	fmt.Println()

	stats := b.Ledger().ByFixture()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := stats[name]
		fmt.Printf("  %-28s %d attempts, %.0f%% denied, avg risk %.1f\n",
			name, s.TotalAttempts, s.DenialRate*100, s.AverageRisk)
	}
	fmt.Println()

	fmt.Println("═══════════════════════════════════════════════════════")
	if fail == 0 {
		fmt.Printf("  ✅ All %d fixtures behaved as expected\n", len(fixtures))
	} else {
		fmt.Printf("  ⚠  %d/%d fixtures passed, %d failed\n", pass, len(fixtures), fail)
		fmt.Println("  Review your pattern catalog.")
	}
	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Println()

	if scanExportPath != "" {
		data, err := b.Ledger().ExportJSON()
		if err != nil {
			return fmt.Errorf("failed to export session ledger: %w", err)
		}
		if err := os.WriteFile(scanExportPath, data, 0600); err != nil {
			return fmt.Errorf("failed to write session ledger: %w", err)
		}
		fmt.Printf("Session ledger written to %s\n", scanExportPath)
	}

	return nil
}
