package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	contentCmd := &cobra.Command{Use: "content", Short: "Daily content operations"}

	getCmd := &cobra.Command{
		Use:   "get CONTENT_TYPE DATE",
		Short: "Fetch one day's content (DATE is YYYY-MM-DD)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			url := fmt.Sprintf("%s/api/users/%s/content/%s/%s", apiFlag, userFlag, args[0], args[1])
			data, err := doGet(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	contentCmd.AddCommand(getCmd)

	regenCmd := &cobra.Command{
		Use:   "regenerate CONTENT_TYPE DATE",
		Short: "Force regeneration, replacing any cached record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			url := fmt.Sprintf("%s/api/users/%s/content/%s/%s/regenerate", apiFlag, userFlag, args[0], args[1])
			data, err := doPost(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	contentCmd.AddCommand(regenCmd)

	rootCmd.AddCommand(contentCmd)

	archivesCmd := &cobra.Command{Use: "archives", Short: "Archived day snapshots"}
	archiveGetCmd := &cobra.Command{
		Use:   "get DATE",
		Short: "Fetch the archived snapshot for a closed day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			url := fmt.Sprintf("%s/api/users/%s/archives/%s", apiFlag, userFlag, args[0])
			data, err := doGet(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	archivesCmd.AddCommand(archiveGetCmd)
	rootCmd.AddCommand(archivesCmd)
}
