package approval

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

type Result struct {
	Approved   bool
	UserAction string
}

type Prompt struct {
	URL      string
	Defenses []string
	Reasons  []string
	Revision string
}

func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Ask prompts the operator to override a denial. Non-interactive
// sessions auto-deny.
func Ask(p Prompt) Result {
	if !IsInteractive() {
		return Result{
			Approved:   false,
			UserAction: "auto_deny_non_interactive",
		}
	}

	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "╔══════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(os.Stderr, "║              ⚠️  APPROVAL REQUIRED                            ║")
	fmt.Fprintln(os.Stderr, "╚══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintf(os.Stderr, "URL: %s\n", p.URL)
	fmt.Fprintln(os.Stderr, "")

	if len(p.Defenses) > 0 {
		fmt.Fprintf(os.Stderr, "Defenses triggered: %s\n", strings.Join(p.Defenses, ", "))
	}

	if len(p.Reasons) > 0 {
		fmt.Fprintln(os.Stderr, "Reasons:")
		for _, reason := range p.Reasons {
			fmt.Fprintf(os.Stderr, "  • %s\n", reason)
		}
	}

	if p.Revision != "" {
		fmt.Fprintf(os.Stderr, "Suggested safe alternative: %s\n", p.Revision)
	}

	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "  [a] Approve once - proceed with this step")
	fmt.Fprintln(os.Stderr, "  [d] Deny - block this step")
	fmt.Fprintln(os.Stderr, "")

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Fprint(os.Stderr, "Your choice [a/d]: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return Result{
				Approved:   false,
				UserAction: "error_reading_input",
			}
		}

		input = strings.TrimSpace(strings.ToLower(input))

		switch input {
		case "a", "approve", "yes", "y":
			return Result{
				Approved:   true,
				UserAction: "approve_once",
			}
		case "d", "deny", "no", "n":
			return Result{
				Approved:   false,
				UserAction: "deny",
			}
		default:
			fmt.Fprintln(os.Stderr, "Invalid input. Please enter 'a' to approve or 'd' to deny.")
		}
	}
}
