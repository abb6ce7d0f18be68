package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	summariesCmd := &cobra.Command{Use: "summaries", Short: "Summary operations"}

	// create
	var title, textFile, instruction string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Generate and store a new summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			if textFile == "" || instruction == "" {
				return fmt.Errorf("--text-file and --instruction required")
			}
			text, err := os.ReadFile(textFile)
			if err != nil {
				return err
			}
			payload := map[string]interface{}{
				"originalText": string(text),
				"instruction":  instruction,
			}
			if title != "" {
				payload["title"] = title
			}
			data, err := doPostJSON(fmt.Sprintf("%s/api/summaries", apiFlag), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&title, "title", "t", "", "Summary title")
	createCmd.Flags().StringVarP(&textFile, "text-file", "f", "", "File with the text to summarize (required)")
	createCmd.Flags().StringVarP(&instruction, "instruction", "i", "", "Instruction guiding the summary (required)")
	_ = createCmd.MarkFlagRequired("text-file")
	_ = createCmd.MarkFlagRequired("instruction")
	summariesCmd.AddCommand(createCmd)

	// list
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/summaries", apiFlag))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	summariesCmd.AddCommand(listCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get SUMMARY_ID",
		Short: "Get summary by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/summaries/%s", apiFlag, args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	summariesCmd.AddCommand(getCmd)

	// edit
	var editedFile, newTitle, tagsFlag string
	editCmd := &cobra.Command{
		Use:   "edit SUMMARY_ID",
		Short: "Replace the edited content of a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if editedFile == "" {
				return fmt.Errorf("--content-file required")
			}
			content, err := os.ReadFile(editedFile)
			if err != nil {
				return err
			}
			payload := map[string]interface{}{"editedSummary": string(content)}
			if newTitle != "" {
				payload["title"] = newTitle
			}
			if tagsFlag != "" {
				payload["tags"] = strings.Split(tagsFlag, ",")
			}
			data, err := doPutJSON(fmt.Sprintf("%s/api/summaries/%s", apiFlag, args[0]), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	editCmd.Flags().StringVarP(&editedFile, "content-file", "f", "", "File with the replacement content (required)")
	editCmd.Flags().StringVarP(&newTitle, "title", "t", "", "New title")
	editCmd.Flags().StringVar(&tagsFlag, "tags", "", "Comma-separated tags")
	_ = editCmd.MarkFlagRequired("content-file")
	summariesCmd.AddCommand(editCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete SUMMARY_ID",
		Short: "Delete a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doDelete(fmt.Sprintf("%s/api/summaries/%s", apiFlag, args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	summariesCmd.AddCommand(deleteCmd)

	// share
	var recipients, subject, message string
	shareCmd := &cobra.Command{
		Use:   "share SUMMARY_ID",
		Short: "Email a summary to recipients",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if recipients == "" {
				return fmt.Errorf("--to required")
			}
			payload := map[string]interface{}{
				"recipients": strings.Split(recipients, ","),
			}
			if subject != "" {
				payload["subject"] = subject
			}
			if message != "" {
				payload["message"] = message
			}
			data, err := doPostJSON(fmt.Sprintf("%s/api/summaries/%s/share", apiFlag, args[0]), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	shareCmd.Flags().StringVar(&recipients, "to", "", "Comma-separated recipient addresses (required)")
	shareCmd.Flags().StringVarP(&subject, "subject", "s", "", "Custom email subject")
	shareCmd.Flags().StringVarP(&message, "message", "m", "", "Personal message included in the email")
	_ = shareCmd.MarkFlagRequired("to")
	summariesCmd.AddCommand(shareCmd)

	rootCmd.AddCommand(summariesCmd)
}
