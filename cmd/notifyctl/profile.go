package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	profileCmd := &cobra.Command{Use: "profile", Short: "Profile operations"}

	var name, tz, plan, sleep string
	putCmd := &cobra.Command{
		Use:   "put USER_ID",
		Short: "Create or update a user profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{}
			if name != "" {
				payload["displayName"] = name
			}
			if tz != "" {
				payload["timeZone"] = tz
			}
			if plan != "" {
				payload["plan"] = plan
			}
			if sleep != "" {
				payload["sleepTime"] = sleep
			}
			url := fmt.Sprintf("%s/api/users/%s/profile", apiFlag, args[0])
			data, err := doPutJSON(url, payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	putCmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	putCmd.Flags().StringVarP(&tz, "tz", "t", "", "IANA time zone")
	putCmd.Flags().StringVarP(&plan, "plan", "p", "", "Plan: free, pro or max")
	putCmd.Flags().StringVar(&sleep, "sleep", "", "Sleep time HH:MM")
	profileCmd.AddCommand(putCmd)

	getCmd := &cobra.Command{
		Use:   "get USER_ID",
		Short: "Get a user profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/users/%s/profile", apiFlag, args[0])
			data, err := doGet(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	profileCmd.AddCommand(getCmd)

	rootCmd.AddCommand(profileCmd)
}
