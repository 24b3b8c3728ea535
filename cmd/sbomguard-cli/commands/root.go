// Copyright (C) 2024 Tim Bastin, l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	defaultConfigFilename = ".sbomguard"
	envPrefix             = "SBOMGUARD"
)

var RootCmd = &cobra.Command{
	SilenceUsage:      true,
	Use:               "sbomguard-cli",
	Short:             "Analyze software bills of materials for known vulnerabilities",
	Version:           shared.Version,
	DisableAutoGenTag: true,
	Long: `Analyze software bills of materials for known vulnerabilities

The sbomguard cli runs the analysis pipeline of the server locally against the
OSV database. Configuration can be provided via a ./.sbomguard config file or
environment variables (prefix SBOMGUARD_).`,
	Example: `  # Analyze a CycloneDX or SPDX json document
  sbomguard-cli analyze bom.json

  # Render the result as a CycloneDX document with vulnerabilities
  sbomguard-cli analyze bom.json --output cyclonedx > vex.json

  # Apply the database migrations
  sbomguard-cli migrate up`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := cmd.Flags().GetString("logLevel")
		if err != nil {
			return err
		}
		shared.InitLoggerWithLevel(shared.ParseLogLevel(level))

		return initializeConfig(cmd)
	},
}

func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sbomguard\n")
			fmt.Printf("Version:    %s\n", shared.Version)
			fmt.Printf("Commit:     %s\n", shared.Commit)
			fmt.Printf("Built:      %s\n", shared.BuildDate)
		},
	}

	RootCmd.AddCommand(
		versionCmd,
		NewAnalyzeCommand(),
		NewMigrateCommand(),
	)

	RootCmd.PersistentFlags().StringP("logLevel", "l", "warn", "Set the log level. Options: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.sbomguard.yaml)")
}

func initializeConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(defaultConfigFilename)
	}

	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/sbomguard/")
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if there isn't a config file
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		slog.Debug("no config file found")
	}

	viper.SetEnvPrefix(envPrefix)
	// --osv-url is read from SBOMGUARD_OSV_URL
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	bindFlags(cmd)
	return nil
}

// Bind each cobra flag to its associated viper configuration (config file and environment variable)
func bindFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		configName := f.Name

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && viper.IsSet(configName) {
			val := viper.Get(configName)
			cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)) // nolint: errcheck
		}

		if err := viper.BindPFlag(configName, f); err != nil {
			slog.Error("could not bind flag to viper", "err", err)
		}
	})
}
