/*
Copyright 2025 PickManager Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/brian-nguyen/pickmanager/model"
)

// accountCommands groups local account operations. Mutating commands
// run a pull cycle first so the coordinator is in a ready state.
func accountCommands(m *managerInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "manage ledger accounts",
	}

	cmd.AddCommand(listAccountsCommand(m))
	cmd.AddCommand(createAccountCommand(m))
	cmd.AddCommand(depositCommand(m))
	cmd.AddCommand(balanceCommand(m))
	cmd.AddCommand(resetAccountCommand(m))
	cmd.AddCommand(deleteAccountCommand(m))
	cmd.AddCommand(wipeAccountsCommand(m))

	return cmd
}

func listAccountsCommand(m *managerInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list accounts with totals and balances",
		Run: func(cmd *cobra.Command, args []string) {
			accounts, err := m.manager.GetAccounts()
			if err != nil {
				log.Fatal(err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDEPOSITS\tBALANCE\tRANGE")
			for _, account := range accounts {
				var balance float64
				if account.Balance != nil {
					balance = account.Balance.Amount
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					account.Name,
					model.FormatAmount(account.TotalDeposits()),
					model.FormatAmount(balance),
					account.Range)
			}
			_ = w.Flush()
		},
	}
}

func ready(m *managerInstance) context.Context {
	ctx := context.Background()
	if err := m.manager.Initialize(ctx); err != nil {
		log.Fatalf("sync failed: %v", err)
	}
	return ctx
}

func createAccountCommand(m *managerInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "register a new account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := ready(m)
			account, err := m.manager.RegisterAccount(ctx, args[0])
			if err != nil && account == nil {
				log.Fatal(err)
			}
			if err != nil {
				log.Printf("account created locally, remote copy is stale: %v", err)
			}
			fmt.Printf("Created account %s (%s)\n", account.Name, account.AccountID)
		},
	}
}

func depositCommand(m *managerInstance) *cobra.Command {
	var amount float64

	cmd := &cobra.Command{
		Use:   "deposit <name>",
		Short: "append a deposit to an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := ready(m)
			deposit, err := m.manager.RecordDeposit(ctx, args[0], amount)
			if err != nil && deposit == nil {
				log.Fatal(err)
			}
			if err != nil {
				log.Printf("deposit recorded locally, remote copy is stale: %v", err)
			}
			fmt.Printf("Recorded deposit of %s for %s\n", model.FormatAmount(amount), args[0])
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "deposit amount")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func balanceCommand(m *managerInstance) *cobra.Command {
	var amount float64

	cmd := &cobra.Command{
		Use:   "balance <name>",
		Short: "replace an account's balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := ready(m)
			balance, err := m.manager.RecordBalance(ctx, args[0], amount)
			if err != nil && balance == nil {
				log.Fatal(err)
			}
			if err != nil {
				log.Printf("balance recorded locally, remote copy is stale: %v", err)
			}
			fmt.Printf("Recorded balance of %s for %s\n", model.FormatAmount(amount), args[0])
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "balance amount")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func resetAccountCommand(m *managerInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <name>",
		Short: "reset an account to a zero deposit and zero balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := ready(m)
			if err := m.manager.ResetAccount(ctx, args[0]); err != nil {
				log.Fatal(err)
			}
			fmt.Printf("Reset account %s\n", args[0])
		},
	}
}

func wipeAccountsCommand(m *managerInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "wipe",
		Short: "delete every account, deposit and balance",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := ready(m)
			if err := m.manager.Wipe(ctx); err != nil {
				log.Fatal(err)
			}
			fmt.Println("Wiped all accounts")
		},
	}
}

func deleteAccountCommand(m *managerInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "delete an account and its history",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := ready(m)
			if err := m.manager.DeleteAccount(ctx, args[0]); err != nil {
				log.Fatal(err)
			}
			fmt.Printf("Deleted account %s\n", args[0])
		},
	}
}
