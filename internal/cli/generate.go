package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate <description>",
	Short: "Generate a simulated attack script from a description",
	Long:  "Produces a plausible-looking but inert attack script for use with 'threatstage run'. The script is printed to stdout.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	orc, _, err := buildOrchestrator()
	if err != nil {
		return err
	}

	script, err := orc.GenerateScript(context.Background(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("script generation failed: %w", err)
	}
	fmt.Println(script)
	return nil
}
