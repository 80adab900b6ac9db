// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage local accounts and their credits",
	Long: `Account manages the local credit ledger that gates pipeline runs. Each
generate run requires the account to be subscribed and to hold at least
one credit; a successful run deducts one.`,
}

var accountAddCmd = &cobra.Command{
	Use:   "add [user-id]",
	Short: "Create or update an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountAdd,
}

func runAccountAdd(cmd *cobra.Command, args []string) error {
	credits, _ := cmd.Flags().GetInt("credits")
	subscribed, _ := cmd.Flags().GetBool("subscribed")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.EnsureUser(context.Background(), args[0], credits, subscribed); err != nil {
		return err
	}
	fmt.Printf("Account %s: %d credits, subscribed=%v\n", args[0], credits, subscribed)
	return nil
}

var accountShowCmd = &cobra.Command{
	Use:   "show [user-id]",
	Short: "Show an account's credits and subscription state",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountShow,
}

func runAccountShow(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	credits, subscribed, err := s.GetUser(context.Background(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Account %s: %d credits, subscribed=%v\n", args[0], credits, subscribed)
	return nil
}

func init() {
	accountAddCmd.Flags().Int("credits", 5, "credit balance to set")
	accountAddCmd.Flags().Bool("subscribed", true, "subscription state to set")

	accountCmd.AddCommand(accountAddCmd)
	accountCmd.AddCommand(accountShowCmd)
	rootCmd.AddCommand(accountCmd)
}
