package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	allNotifications bool
	actionsAddress   string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show the wallet session of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel := newClient(cmd)
		defer cancel()

		st, err := c.Session(ctx)
		if err != nil {
			return err
		}
		return printJSON(st)
	},
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect the wallet of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel := newClient(cmd)
		defer cancel()

		addr, err := c.Connect(ctx)
		if err != nil {
			return err
		}
		fmt.Println(addr)
		return nil
	},
}

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"n"},
	Short:   "List the notifications of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel := newClient(cmd)
		defer cancel()

		ns, err := c.Notifications(ctx, allNotifications)
		if err != nil {
			return err
		}
		for _, n := range ns {
			line := fmt.Sprintf("%s [%s] %s", n.Time.Format("15:04:05"), n.Kind, n.Text)
			if n.Link != "" {
				line += " " + n.Link
			}
			fmt.Println(line)
		}
		return nil
	},
}

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the activity log of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel := newClient(cmd)
		defer cancel()

		actions, err := c.Actions(ctx, actionsAddress)
		if err != nil {
			return err
		}
		return printJSON(actions)
	},
}

func init() {
	notificationsCmd.Flags().BoolVarP(&allNotifications, "all", "a", false, "include dismissed and expired notifications")
	actionsCmd.Flags().StringVar(&actionsAddress, "address", "", "only the actions of this account")
}
