package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"inbox"},
	Short:   "Read your notifications",
}

var listNotificationsCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		p, err := principalFrom(cmd)
		if err != nil {
			return err
		}
		unread, _ := cmd.Flags().GetBool("unread")

		list, err := a.Service.Notifications(cmd.Context(), p, unread)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(list)
		}
		if len(list) == 0 {
			fmt.Println("No notifications.")
			return nil
		}

		fmt.Println(titleStyle.Render("Notifications"))
		for _, n := range list {
			marker := " "
			if !n.IsRead {
				marker = "•"
			}
			fmt.Printf("%s [%d] %s  %s\n", marker, n.ID, labelStyle.Render(n.Title), n.CreatedAt.Format("2006-01-02 15:04"))
			fmt.Printf("    %s\n", n.Message)
		}
		return nil
	},
}

var readNotificationsCmd = &cobra.Command{
	Use:   "read [notification-id]",
	Short: "Mark one or all notifications as read",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		p, err := principalFrom(cmd)
		if err != nil {
			return err
		}

		if all, _ := cmd.Flags().GetBool("all"); all {
			n, err := a.Service.MarkAllRead(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Marked %d notification(s) as read\n", n)
			return nil
		}

		if len(args) == 0 {
			return cmd.Usage()
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := a.Service.MarkRead(cmd.Context(), p, id); err != nil {
			return err
		}
		fmt.Printf("✓ Notification %d marked as read\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
	notificationsCmd.AddCommand(listNotificationsCmd)
	notificationsCmd.AddCommand(readNotificationsCmd)

	listNotificationsCmd.Flags().Bool("unread", false, "only unread notifications")
	readNotificationsCmd.Flags().Bool("all", false, "mark every notification as read")
}
