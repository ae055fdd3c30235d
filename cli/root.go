// Package cli implements the taskboard command-line interface.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskboard/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "Task board backend-for-frontend",
	Long: `taskboard serves the task board API in front of the upstream REST backend.

  taskboard serve                        Run the HTTP server (default)
  taskboard projects --email --password  Print derived project progress`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return readConfig(viper.GetViper(), cfgFile, ".")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./taskboard.yaml)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newProjectsCmd())
}

// readConfig loads the config file and the environment into v. A missing
// default file is fine; an explicit file that is missing, or any file that
// does not parse, is an error.
func readConfig(v *viper.Viper, file string, searchPaths ...string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		for _, p := range searchPaths {
			v.AddConfigPath(p)
		}
		v.SetConfigType("yaml")
		v.SetConfigName("taskboard")
	}
	config.SetDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
