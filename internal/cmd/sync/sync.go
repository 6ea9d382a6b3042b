package sync

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "sync",
		Short: "Manages catalog synchronization",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("welcome to curator sync!")
			return nil
		},
	}
	cmd.AddCommand(newInvokeCommand())
	return cmd
}
