package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"taskagent-portal/internal/chat"
	"taskagent-portal/internal/client"
	"taskagent-portal/internal/config"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the agent from the terminal through a running portal",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().String("server", "http://localhost:8080", "portal base URL")
	chatCmd.Flags().String("company", "", "company id (defaults to the first catalog company)")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	catalog, err := config.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		return err
	}
	serverURL, _ := cmd.Flags().GetString("server")
	company, _ := cmd.Flags().GetString("company")

	out := cmd.OutOrStdout()
	w := chat.NewWindow(
		client.New(serverURL, cfg.ClientTimeout),
		client.NewSession(),
		catalog,
		chat.NotifierFunc(func(n chat.Notice) {
			if n.Kind != chat.NoticeSuccess {
				fmt.Fprintf(out, "[%s] %s\n", n.Kind, n.Text)
			}
		}),
	)
	if company != "" && !w.SelectCompany(company) {
		return fmt.Errorf("unknown company %q", company)
	}
	return chatLoop(cmd.Context(), w, catalog, cmd.InOrStdin(), out)
}

func chatLoop(ctx context.Context, w *chat.Window, catalog *config.Catalog, in io.Reader, out io.Writer) error {
	printed := printMessages(out, w.Messages(), 0)
	fmt.Fprintln(out, "Commands: /quick [N], /company [ID], /reset, /quit")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/reset":
			fmt.Fprintf(out, "new session %s\n", w.ResetSession().ID)
			continue
		case line == "/quick":
			for i, a := range catalog.QuickActions {
				fmt.Fprintf(out, "  %d. %s\n", i+1, a)
			}
			continue
		case strings.HasPrefix(line, "/quick "):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "/quick ")))
			if err != nil || !w.QuickAction(ctx, n-1) {
				fmt.Fprintln(out, "no such quick action")
			}
		case line == "/company":
			for _, c := range catalog.Companies {
				mark := " "
				if c.ID == w.Company() {
					mark = "*"
				}
				fmt.Fprintf(out, " %s %s  %s %s\n", mark, c.ID, c.Logo, c.Name)
			}
			continue
		case strings.HasPrefix(line, "/company "):
			id := strings.TrimSpace(strings.TrimPrefix(line, "/company "))
			if !w.SelectCompany(id) {
				fmt.Fprintf(out, "unknown company %q\n", id)
			}
			continue
		default:
			w.SetInput(line)
			w.Submit(ctx)
		}
		printed = printMessages(out, w.Messages(), printed)
	}
}

// printMessages writes messages[from:] and returns the new count, skipping
// the user's own lines which are already on screen.
func printMessages(out io.Writer, msgs []chat.Message, from int) int {
	for _, m := range msgs[from:] {
		if m.Role == chat.RoleUser {
			continue
		}
		fmt.Fprintf(out, "agent [%s]: %s\n", m.Timestamp.Format("15:04:05"), m.Content)
	}
	return len(msgs)
}
