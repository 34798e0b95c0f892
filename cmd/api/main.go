package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "taskmap",
	Short:         "TaskMap marketplace API",
	SilenceUsage:  true,
	SilenceErrors: true,
	// без подкоманды запускаем сервер
	RunE: serveCmd.RunE,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "путь к config.yml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "taskmap:", err)
		os.Exit(1)
	}
}
