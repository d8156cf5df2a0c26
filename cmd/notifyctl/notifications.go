package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	notifCmd := &cobra.Command{Use: "notifications", Short: "Notification decision and feedback operations"}

	// evaluate
	var nowFlag string
	evaluateCmd := &cobra.Command{
		Use:   "evaluate USER_ID",
		Short: "Run one evaluation pass for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{}
			if nowFlag != "" {
				payload["now"] = nowFlag
			}
			url := fmt.Sprintf("%s/api/users/%s/notifications/evaluate", apiFlag, args[0])
			data, err := doPostJSON(url, payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	evaluateCmd.Flags().StringVar(&nowFlag, "now", "", "Evaluation timestamp, RFC3339 (defaults to server time)")
	notifCmd.AddCommand(evaluateCmd)

	// dismiss
	var dismissType string
	dismissCmd := &cobra.Command{
		Use:   "dismiss USER_ID NOTIFICATION_ID",
		Short: "Dismiss a notification and record the strike",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/users/%s/notifications/%s/dismiss", apiFlag, args[0], args[1])
			data, err := doPostJSON(url, map[string]interface{}{"type": dismissType})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	dismissCmd.Flags().StringVarP(&dismissType, "type", "t", "", "Notification type (enables escalation tracking)")
	notifCmd.AddCommand(dismissCmd)

	// dismiss-today
	dismissTodayCmd := &cobra.Command{
		Use:   "dismiss-today USER_ID TYPE",
		Short: "Mute a notification type for the rest of the day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/users/%s/notifications/types/%s/dismiss-today", apiFlag, args[0], args[1])
			data, err := doPostJSON(url, nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	notifCmd.AddCommand(dismissTodayCmd)

	// shown
	var shownType string
	shownCmd := &cobra.Command{
		Use:   "shown USER_ID NOTIFICATION_ID",
		Short: "Mark a notification as shown (consumes daily quota)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/users/%s/notifications/%s/shown", apiFlag, args[0], args[1])
			data, err := doPostJSON(url, map[string]interface{}{"type": shownType})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	shownCmd.Flags().StringVarP(&shownType, "type", "t", "", "Notification type (required)")
	_ = shownCmd.MarkFlagRequired("type")
	notifCmd.AddCommand(shownCmd)

	// accept
	var acceptType, actionType, startTime, text string
	var scheduleIDs []string
	var daysOfWeek []int
	acceptCmd := &cobra.Command{
		Use:   "accept USER_ID NOTIFICATION_ID",
		Short: "Accept a notification, optionally converting mined entries to a recurring schedule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"type":       acceptType,
				"actionType": actionType,
			}
			if actionType == "convert_to_recurring" {
				payload["actionPayload"] = map[string]interface{}{
					"scheduleIds": scheduleIDs,
					"daysOfWeek":  daysOfWeek,
					"startTime":   startTime,
					"text":        text,
				}
			}
			url := fmt.Sprintf("%s/api/users/%s/notifications/%s/accept", apiFlag, args[0], args[1])
			data, err := doPostJSON(url, payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	acceptCmd.Flags().StringVarP(&acceptType, "type", "t", "", "Notification type (required)")
	acceptCmd.Flags().StringVar(&actionType, "action", "", "Action type, e.g. convert_to_recurring")
	acceptCmd.Flags().StringSliceVar(&scheduleIDs, "schedule-ids", nil, "Source one-off schedule entry IDs")
	acceptCmd.Flags().IntSliceVar(&daysOfWeek, "days", nil, "Days of week, 0=Sunday")
	acceptCmd.Flags().StringVar(&startTime, "start", "", "Start time HH:MM")
	acceptCmd.Flags().StringVar(&text, "text", "", "Recurring entry text")
	_ = acceptCmd.MarkFlagRequired("type")
	notifCmd.AddCommand(acceptCmd)

	rootCmd.AddCommand(notifCmd)
}
