package main

import (
	"os"

	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {

	var listenAddr string

	// rootCmd represents the base command when called without any subcommands
	var rootCmd = &cobra.Command{
		Use: "reporting-gateway",
	}

	// apiServerCmd runs the long lived gateway: scheduled sync jobs plus the
	// monitoring and management HTTP endpoints
	var apiServerCmd = &cobra.Command{
		Use:   "api_server",
		Short: "Reporting Gateway API Server",
		Run: func(cmd *cobra.Command, args []string) {
			startApiServer(listenAddr)
		},
	}

	var inventorySyncCmd = &cobra.Command{
		Use:   "inventory_sync",
		Short: "Run a single inventory catalog reconciliation pass",
		Run: func(cmd *cobra.Command, args []string) {
			startOneShotInventorySync()
		},
	}

	var rosterSyncCmd = &cobra.Command{
		Use:   "roster_sync",
		Short: "Run a single user roster synchronization pass",
		Run: func(cmd *cobra.Command, args []string) {
			startOneShotRosterSync()
		},
	}

	var settlementAnalysisCmd = &cobra.Command{
		Use:   "settlement_analysis",
		Short: "Run a single settlement analysis pass",
		Run: func(cmd *cobra.Command, args []string) {
			startOneShotSettlementAnalysis()
		},
	}

	rootCmd.AddCommand(apiServerCmd)
	apiServerCmd.Flags().StringVarP(&listenAddr, "listen-addr", "l", ":8081", "Hostname:port")

	rootCmd.AddCommand(inventorySyncCmd)
	rootCmd.AddCommand(rosterSyncCmd)
	rootCmd.AddCommand(settlementAnalysisCmd)

	return rootCmd
}

func main() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
