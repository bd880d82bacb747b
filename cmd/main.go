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
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/brian-nguyen/pickmanager"
	"github.com/brian-nguyen/pickmanager/config"
	"github.com/brian-nguyen/pickmanager/database"
	"github.com/brian-nguyen/pickmanager/internal/notification"
)

// CLI wraps the root Cobra command.
type CLI struct {
	cmd *cobra.Command
}

// managerInstance holds the PickManager instance and its configuration,
// shared by every subcommand.
type managerInstance struct {
	manager *pickmanager.PickManager
	cnf     *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and wires the PickManager instance
// before any command runs.
func preRun(app *managerInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig(*configFile)
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newManager, err := setupPickManager(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.manager = newManager
		app.cnf = cnf

		return nil
	}
}

func setupPickManager(cfg *config.Configuration) (*pickmanager.PickManager, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newManager, err := pickmanager.NewPickManager(db)
	if err != nil {
		return nil, fmt.Errorf("error creating pickmanager: %v", err)
	}
	return newManager, nil
}

// NewCLI creates the command-line interface for the PickManager server.
func NewCLI() *CLI {
	var configFile string
	m := &managerInstance{}

	var rootCmd = &cobra.Command{
		Use:   "pickmanager",
		Short: "Spreadsheet-synced ledger",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./pickmanager.json", "Configuration file for pickmanager")
	rootCmd.PersistentPreRunE = preRun(m, &configFile)

	rootCmd.AddCommand(serverCommands(m))
	rootCmd.AddCommand(syncCommands(m))
	rootCmd.AddCommand(accountCommands(m))
	rootCmd.AddCommand(migrateCommands(m))

	return &CLI{cmd: rootCmd}
}

func (w CLI) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()
	cli := NewCLI()
	cli.executeCLI()
}
