package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	mailCmd := &cobra.Command{Use: "mail", Short: "Mail transport operations"}

	testCmd := &cobra.Command{
		Use:   "test",
		Short: "Send a configuration test email to your own address",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON(fmt.Sprintf("%s/api/mail/test", apiFlag), map[string]interface{}{})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	mailCmd.AddCommand(testCmd)

	rootCmd.AddCommand(mailCmd)
}
