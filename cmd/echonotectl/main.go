package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag string
	rootCmd = &cobra.Command{
		Use:   "echonotectl",
		Short: "CLI client for the echonote REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "echonote service base URL")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List memory cards, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return runList(apiFlag, limit, os.Stdout)
		},
	}
	listCmd.Flags().IntP("limit", "n", 20, "Maximum number of cards to return")
	rootCmd.AddCommand(listCmd)

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one memory card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(apiFlag, args[0], os.Stdout)
		},
	}
	rootCmd.AddCommand(getCmd)

	toggleCmd := &cobra.Command{
		Use:   "toggle <id> <index>",
		Short: "Toggle completion of an action item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggle(apiFlag, args[0], args[1], os.Stdout)
		},
	}
	rootCmd.AddCommand(toggleCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a memory card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(apiFlag, args[0], os.Stdout)
		},
	}
	rootCmd.AddCommand(deleteCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
