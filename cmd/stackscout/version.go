package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ternarybob/stackscout/internal/common"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// No configuration needed
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("StackScout version %s\n", common.GetFullVersion())
	},
}
