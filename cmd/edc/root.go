package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tarancss/educertify/dashboard/client"
)

var (
	// Global flags
	server  string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "edc",
	Short: "EduCertify command line client",
	Long: `edc drives an educertify server from the command line.

Teachers issue and revoke certificates, students initialize their
certificate store, fetch their certificates and get share links.
Actions are signed in the wallet connected to the server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&server, "server", "s", "http://127.0.0.1:3030", "educertify server url")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 2*time.Minute, "time to wait for the server")

	// Add subcommands
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(initIssuerCmd)
	rootCmd.AddCommand(issueCmd)
	rootCmd.AddCommand(revokeCmd)
	rootCmd.AddCommand(initStoreCmd)
	rootCmd.AddCommand(certificatesCmd)
	rootCmd.AddCommand(certificateCmd)
	rootCmd.AddCommand(qrCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(actionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newClient returns a client of the server flag and a context bounded by the timeout flag.
func newClient(cmd *cobra.Command) (*client.Client, context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	return client.New(server), ctx, cancel
}

// printJSON writes v indented to stdout.
func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
