package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var testJSON bool

func init() {
	rootCmd.AddCommand(testCmd)
	testCmd.Flags().BoolVar(&testJSON, "json", false, "Print the interaction analysis as JSON")
}

var testCmd = &cobra.Command{
	Use:   "test <session-id>",
	Short: "Re-test a session's countermeasure and reconcile its metrics",
	Long:  "Loads a session from history, re-runs the countermeasure against its attack script, and updates the session in place with the new effectiveness score and reconciled metrics.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	orc, _, err := buildOrchestrator()
	if err != nil {
		return err
	}

	if _, err := orc.LoadFromHistory(args[0]); err != nil {
		return err
	}

	ia, err := orc.TestCountermeasure(context.Background())
	if err != nil {
		return fmt.Errorf("countermeasure test failed: %w", err)
	}

	if testJSON {
		out, _ := json.MarshalIndent(ia, "", "  ")
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Effectiveness: %d/100\n", ia.EffectivenessScore)
	fmt.Println(ia.OutcomeSummary)
	if cur := orc.Current(); cur != nil {
		fmt.Printf("Blocked attacks (reconciled): %d\n", cur.Metrics.BlockedAttacks)
	}
	if ia.ModifiedDefenseScript != "" {
		fmt.Println("\nRevised countermeasure adopted.")
	}
	return nil
}
