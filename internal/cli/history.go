package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyJSON bool

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRemoveCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyListCmd.Flags().BoolVar(&historyJSON, "json", false, "Print history as JSON")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past scenario sessions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, _, err := buildOrchestrator()
		if err != nil {
			return err
		}
		sessions := orc.History()

		if historyJSON {
			out, _ := json.MarshalIndent(sessions, "", "  ")
			fmt.Println(string(out))
			return nil
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions.")
			return nil
		}
		for _, s := range sessions {
			fmt.Printf("%-28s  %-20s  risk %3d  %s\n",
				s.ID, s.CreatedAt.Local().Format(time.DateTime), s.Analysis.RiskScore, s.Name)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print one session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, _, err := buildOrchestrator()
		if err != nil {
			return err
		}
		sess, err := orc.LoadFromHistory(args[0])
		if err != nil {
			return err
		}
		out, _ := json.MarshalIndent(sess, "", "  ")
		fmt.Println(string(out))
		return nil
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove <session-id>",
	Short: "Delete one session from history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, _, err := buildOrchestrator()
		if err != nil {
			return err
		}
		orc.RemoveFromHistory(args[0])
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all sessions from history",
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, _, err := buildOrchestrator()
		if err != nil {
			return err
		}
		orc.ClearHistory()
		fmt.Println("History cleared.")
		return nil
	},
}
