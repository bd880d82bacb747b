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

	"github.com/spf13/cobra"
)

// syncCommands groups one-shot sync operations: pull the remote table
// into the store, or push the store back out.
func syncCommands(m *managerInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "synchronize with the remote sheet",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "pull",
		Short: "fetch the remote table and project it into the store",
		Run: func(cmd *cobra.Command, args []string) {
			if err := m.manager.Initialize(context.Background()); err != nil {
				log.Fatalf("sync failed: %v", err)
			}
			fmt.Printf("Synced range %s\n", m.manager.ResolvedRange())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "rebuild the table from the store and overwrite the remote range",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			if err := m.manager.Initialize(ctx); err != nil {
				log.Fatalf("sync failed: %v", err)
			}
			if err := m.manager.PushAll(ctx); err != nil {
				log.Fatalf("push failed: %v", err)
			}
			fmt.Println("Pushed all accounts")
		},
	})

	return cmd
}
