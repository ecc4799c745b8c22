package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/threatstage/internal/playback"
	"github.com/ppiankov/threatstage/internal/scenario"
)

var (
	runScriptPath  string
	runDescription string
	runPlay        bool
	runJSON        bool
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runScriptPath, "script", "s", "", "Path to attack script file ('-' for stdin)")
	runCmd.Flags().StringVarP(&runDescription, "description", "d", "", "Short description used as the session name")
	runCmd.Flags().BoolVar(&runPlay, "play", false, "Replay the engagement log step by step after the run")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the full session as JSON")
	_ = runCmd.MarkFlagRequired("script")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Model an attack script and test its countermeasure",
	Long:  "Runs the full pipeline: models the script into a threat scenario, tests the suggested countermeasure against it, and reconciles the dashboard metrics. The completed session is appended to history.",
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	script, err := readScript(runScriptPath)
	if err != nil {
		return err
	}

	orc, cfg, err := buildOrchestrator()
	if err != nil {
		return err
	}

	sess, err := orc.StartSimulation(context.Background(), script, runDescription)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	if runJSON {
		out, _ := json.MarshalIndent(sess, "", "  ")
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Session:        %s\n", sess.ID)
	fmt.Printf("Name:           %s\n", sess.Name)
	fmt.Printf("Risk score:     %d/100\n", sess.Analysis.RiskScore)
	fmt.Printf("Events:         %d\n", len(sess.Events))
	fmt.Printf("Active threats: %d\n", sess.Metrics.ActiveThreats)
	fmt.Printf("Blocked:        %d\n", sess.Metrics.BlockedAttacks)
	fmt.Println()
	fmt.Println(sess.Analysis.ExecutiveSummary)

	if sess.Interaction != nil {
		fmt.Println()
		fmt.Printf("Countermeasure effectiveness: %d/100\n", sess.Interaction.EffectivenessScore)
		fmt.Println(sess.Interaction.OutcomeSummary)
		if runPlay {
			fmt.Println()
			playLog(sess.Interaction.InteractionLog, cfg.PlaybackInterval)
		}
	}
	return nil
}

// playLog replays the engagement log on the configured cadence.
func playLog(log []scenario.InteractionStep, interval time.Duration) {
	done := make(chan struct{})
	total := len(log)
	player := playback.NewPlayer(
		playback.WithInterval(interval),
		playback.WithOnStep(func(s scenario.InteractionStep) {
			fmt.Printf("[%d/%d] %-7s %s — %s\n", s.Step, total, s.Actor, s.Description, s.Result)
			if s.Step == total {
				close(done)
			}
		}),
	)
	player.Play(log)
	<-done
}

func readScript(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	script := strings.TrimSpace(string(data))
	if script == "" {
		return "", fmt.Errorf("script is empty")
	}
	return script, nil
}
