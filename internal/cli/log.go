package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/agentgauntlet/arbiter/internal/config"
	"github.com/agentgauntlet/arbiter/internal/logger"
	"github.com/spf13/cobra"
)

var (
	logFilterDenied bool
	logLast         int
	logSummary      bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View and filter the audit log",
	Long: `View the Arbiter audit log with filtering and summary options.

Examples:
  arbiter log                  # Show all entries
  arbiter log --last 20        # Show last 20 entries
  arbiter log --denied         # Show only denied steps
  arbiter log --summary        # Show session summary stats`,
	RunE: logCommand,
}

func init() {
	logCmd.Flags().BoolVar(&logFilterDenied, "denied", false, "Show only denied entries")
	logCmd.Flags().IntVar(&logLast, "last", 0, "Show last N entries")
	logCmd.Flags().BoolVar(&logSummary, "summary", false, "Show summary statistics")
	rootCmd.AddCommand(logCmd)
}

func logCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(logPath, fixturesDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	events, err := readAuditLog(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("failed to read audit log: %w", err)
	}

	if len(events) == 0 {
		fmt.Println("No audit log entries found.")
		return nil
	}

	filtered := events
	if logFilterDenied {
		filtered = nil
		for _, e := range events {
			if !e.Approved {
				filtered = append(filtered, e)
			}
		}
	}

	if logLast > 0 && logLast < len(filtered) {
		filtered = filtered[len(filtered)-logLast:]
	}

	if logSummary {
		printSummary(events)
		return nil
	}

	printEvents(filtered)
	return nil
}

func readAuditLog(path string) ([]logger.AuditEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var events []logger.AuditEvent
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		var event logger.AuditEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue // skip malformed lines
		}
		events = append(events, event)
	}
	return events, scanner.Err()
}

func printEvents(events []logger.AuditEvent) {
	for _, e := range events {
		ts := formatTimestamp(e.Timestamp)
		icon := "❌"
		if e.Approved {
			icon = "✅"
		}

		fmt.Printf("%s %s %s (score %d/5)\n", icon, ts, e.URL, e.StaticScore)

		if len(e.DefensesUsed) > 0 {
			fmt.Printf("     Defenses: %s\n", strings.Join(e.DefensesUsed, ", "))
		}
		for _, r := range e.Reasons {
			fmt.Printf("     Reason: %s\n", r)
		}
		if e.FallbackRecommended {
			fmt.Println("     Fallback recommended")
		}
		if e.UserAction != "" {
			fmt.Printf("     Operator: %s\n", e.UserAction)
		}
		if e.Error != "" {
			fmt.Printf("     Error: %s\n", e.Error)
		}
		fmt.Println()
	}
}

func printSummary(all []logger.AuditEvent) {
	approvals := 0
	denials := 0
	errorCount := 0
	fallbacks := 0

	for _, e := range all {
		if e.Approved {
			approvals++
		} else {
			denials++
		}
		if e.Error != "" {
			errorCount++
		}
		if e.FallbackRecommended {
			fallbacks++
		}
	}

	fmt.Println("═══════════════════════════════════════════")
	fmt.Println("  Arbiter Audit Summary")
	fmt.Println("═══════════════════════════════════════════")
	fmt.Printf("  Total events:  %d\n", len(all))
	fmt.Printf("  Approved:      %d\n", approvals)
	fmt.Printf("  Denied:        %d\n", denials)
	fmt.Printf("  Fallbacks:     %d\n", fallbacks)
	fmt.Printf("  Errors:        %d\n", errorCount)
	fmt.Println("═══════════════════════════════════════════")

	if len(all) > 0 {
		fmt.Printf("  First event:   %s\n", formatTimestamp(all[0].Timestamp))
		fmt.Printf("  Last event:    %s\n", formatTimestamp(all[len(all)-1].Timestamp))
	}

	denied := []logger.AuditEvent{}
	for _, e := range all {
		if !e.Approved {
			denied = append(denied, e)
		}
	}
	if len(denied) > 0 {
		fmt.Println()
		fmt.Println("  Recently denied:")
		limit := len(denied)
		if limit > 10 {
			limit = 10
		}
		for _, e := range denied[len(denied)-limit:] {
			fmt.Printf("    %s %s\n", formatTimestamp(e.Timestamp), e.URL)
		}
	}

	fmt.Println()
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
