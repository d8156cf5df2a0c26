package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	schedulesCmd := &cobra.Command{Use: "schedules", Short: "Schedule entry operations"}

	var text, start, end, date, color string
	var days []int
	createCmd := &cobra.Command{
		Use:   "create USER_ID",
		Short: "Create a one-off or recurring schedule entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"text": text}
			if start != "" {
				payload["startTime"] = start
			}
			if end != "" {
				payload["endTime"] = end
			}
			if date != "" {
				payload["specificDate"] = date
			}
			if len(days) > 0 {
				payload["daysOfWeek"] = days
			}
			if color != "" {
				payload["color"] = color
			}
			url := fmt.Sprintf("%s/api/users/%s/schedules", apiFlag, args[0])
			data, err := doPostJSON(url, payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&text, "text", "t", "", "Entry text (required)")
	createCmd.Flags().StringVar(&start, "start", "", "Start time HH:MM")
	createCmd.Flags().StringVar(&end, "end", "", "End time HH:MM")
	createCmd.Flags().StringVarP(&date, "date", "d", "", "One-off date 2006-01-02")
	createCmd.Flags().IntSliceVar(&days, "days", nil, "Recurring days of week, 0=Sunday")
	createCmd.Flags().StringVar(&color, "color", "", "Display color")
	_ = createCmd.MarkFlagRequired("text")
	schedulesCmd.AddCommand(createCmd)

	listCmd := &cobra.Command{
		Use:   "list USER_ID",
		Short: "List schedule entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/users/%s/schedules", apiFlag, args[0])
			data, err := doGet(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	schedulesCmd.AddCommand(listCmd)

	rootCmd.AddCommand(schedulesCmd)
}
