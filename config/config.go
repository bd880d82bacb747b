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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT        = "5001"
	DEFAULT_SHEETS_BASE = "https://sheets.googleapis.com/v4/spreadsheets"
	DEFAULT_TIMEOUT_SEC = 30
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"PICKMANAGER_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"PICKMANAGER_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"PICKMANAGER_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"PICKMANAGER_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"PICKMANAGER_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"PICKMANAGER_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"PICKMANAGER_DATA_SOURCE_DNS"`
}

// SheetsConfig addresses the remote spreadsheet. DirectoryRange is the
// manager sheet mapping (name, email) pairs to each identity's data
// range; LogSheet receives one cell per deposit.
type SheetsConfig struct {
	BaseUrl        string `json:"base_url" envconfig:"PICKMANAGER_SHEETS_BASE_URL"`
	SpreadsheetId  string `json:"spreadsheet_id" envconfig:"PICKMANAGER_SHEETS_SPREADSHEET_ID"`
	DirectoryRange string `json:"directory_range" envconfig:"PICKMANAGER_SHEETS_DIRECTORY_RANGE"`
	LogSheet       string `json:"log_sheet" envconfig:"PICKMANAGER_SHEETS_LOG_SHEET"`
	TimeoutSec     int    `json:"timeout_sec" envconfig:"PICKMANAGER_SHEETS_TIMEOUT_SEC"`
}

type IdentityConfig struct {
	DisplayName string `json:"display_name" envconfig:"PICKMANAGER_IDENTITY_DISPLAY_NAME"`
	Email       string `json:"email" envconfig:"PICKMANAGER_IDENTITY_EMAIL"`
	AccessToken string `json:"access_token" envconfig:"PICKMANAGER_IDENTITY_ACCESS_TOKEN"`
	TokenFile   string `json:"token_file" envconfig:"PICKMANAGER_IDENTITY_TOKEN_FILE"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"PICKMANAGER_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"PICKMANAGER_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"PICKMANAGER_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"PICKMANAGER_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Sheets       SheetsConfig     `json:"sheets"`
	Identity     IdentityConfig   `json:"identity"`
	Notification Notification     `json:"notification"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("pickmanager", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called pickmanager.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "PickManager Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Sheets.SpreadsheetId == "" {
		log.Println("Error: Spreadsheet id is empty. It's a required field.")
		return errors.New("sheets spreadsheet id is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Sheets.SpreadsheetId = strings.TrimSpace(cnf.Sheets.SpreadsheetId)

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Sheets.BaseUrl == "" {
		cnf.Sheets.BaseUrl = DEFAULT_SHEETS_BASE
	}

	if cnf.Sheets.DirectoryRange == "" {
		cnf.Sheets.DirectoryRange = "Manager!A1:C100"
	}

	if cnf.Sheets.LogSheet == "" {
		cnf.Sheets.LogSheet = "Sheet2"
	}

	if cnf.Sheets.TimeoutSec <= 0 {
		cnf.Sheets.TimeoutSec = DEFAULT_TIMEOUT_SEC
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}

	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
