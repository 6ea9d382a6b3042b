package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turbolytics/curator/internal/cmd/sync"
)

func NewRootCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "curator",
		Short: "Synchronizes source control metadata into a service catalog",
		Long:  ``,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Welcome to curator!")
		},
	}

	cmd.AddCommand(sync.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
