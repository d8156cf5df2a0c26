package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	goalsCmd := &cobra.Command{Use: "goals", Short: "Goal operations"}

	var text, target string
	createCmd := &cobra.Command{
		Use:   "create USER_ID",
		Short: "Create a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"text": text}
			if target != "" {
				payload["targetDate"] = target
			}
			url := fmt.Sprintf("%s/api/users/%s/goals", apiFlag, args[0])
			data, err := doPostJSON(url, payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&text, "text", "t", "", "Goal text (required)")
	createCmd.Flags().StringVarP(&target, "target", "d", "", "Target date 2006-01-02")
	_ = createCmd.MarkFlagRequired("text")
	goalsCmd.AddCommand(createCmd)

	listCmd := &cobra.Command{
		Use:   "list USER_ID",
		Short: "List open goals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/users/%s/goals", apiFlag, args[0])
			data, err := doGet(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	goalsCmd.AddCommand(listCmd)

	rootCmd.AddCommand(goalsCmd)
}
