// Package main is the operator CLI: inspect users and chats, adjust
// experience, consume cards, and reset the store. It talks to the same
// database as the bot and applies the same level rules.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/cookie-hub/cookie-growth-bot/config"
	"github.com/cookie-hub/cookie-growth-bot/internal/application/command"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
	"github.com/cookie-hub/cookie-growth-bot/internal/infrastructure/persistence/postgres"
)

// resetPhrase must be typed to confirm a full wipe.
const resetPhrase = "wipe everything"

const usage = `usage: admin <command> [args]

commands:
  users                     list all users
  chats                     list chats with activity totals
  user <id>                 show one user
  add-exp <id> <delta>      adjust experience (negative to debit)
  set-exp <id> <value>      overwrite experience
  use-card <id> <key>       consume one owned card unit
  delete-user <id>          remove a user and all their data
  reset --confirm           wipe the whole store (asks to type a phrase)
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	conn    *postgres.Connection
	users   *postgres.UserRepo
	events  *postgres.EventRepo
	admin   *command.AdminHandler
	content config.Content
}

func run(ctx context.Context, cmd string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	content, err := config.LoadContent(cfg.App.ContentPath)
	if err != nil {
		return err
	}

	conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer conn.Close()

	users := postgres.NewUserRepo(conn)
	a := &app{
		conn:    conn,
		users:   users,
		events:  postgres.NewEventRepo(conn),
		content: content,
		admin: command.NewAdminHandler(
			users,
			postgres.NewCardRepo(conn),
			postgres.NewResetStore(conn),
			content.Catalog.Levels,
		),
	}

	switch cmd {
	case "users":
		return a.listUsers(ctx)
	case "chats":
		return a.listChats(ctx)
	case "user":
		return a.showUser(ctx, args)
	case "add-exp":
		return a.addExp(ctx, args)
	case "set-exp":
		return a.setExp(ctx, args)
	case "use-card":
		return a.useCard(ctx, args)
	case "delete-user":
		return a.deleteUser(ctx, args)
	case "reset":
		return a.reset(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) listUsers(ctx context.Context) error {
	users, err := a.users.ListAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%-12s %-24s %8s %6s\n", "ID", "NAME", "EXP", "LVL")
	for _, u := range users {
		fmt.Printf("%-12d %-24s %8d %6d\n", u.ID, u.DisplayName(), u.TotalExperience, u.Level)
	}
	fmt.Printf("%d user(s)\n", len(users))
	return nil
}

func (a *app) listChats(ctx context.Context) error {
	summaries, err := a.events.ChatSummaries(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%-14s %-28s %10s %10s %-20s\n", "ID", "TITLE", "MESSAGES", "SCORE", "LAST ACTIVITY")
	for _, s := range summaries {
		fmt.Printf("%-14d %-28s %10d %10d %-20s\n",
			s.ChatID, s.Title, s.Messages, s.Score, s.LastAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("%d chat(s)\n", len(summaries))
	return nil
}

func (a *app) showUser(ctx context.Context, args []string) error {
	id, err := parseUserID(args, 0)
	if err != nil {
		return err
	}
	u, err := a.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	counts, err := a.events.CountsByUser(ctx, id, stats.AllTime)
	if err != nil {
		return err
	}

	fmt.Printf("id:         %d\n", u.ID)
	fmt.Printf("name:       %s\n", u.DisplayName())
	fmt.Printf("username:   %s\n", u.Username)
	fmt.Printf("experience: %d\n", u.TotalExperience)
	fmt.Printf("level:      %d\n", u.Level)
	fmt.Printf("messages:   %d", counts.Total)
	for _, t := range stats.AllMessageTypes {
		if n := counts.Count(t); n > 0 {
			fmt.Printf(" %s=%d", t, n)
		}
	}
	fmt.Println()
	return nil
}

func (a *app) addExp(ctx context.Context, args []string) error {
	id, err := parseUserID(args, 0)
	if err != nil {
		return err
	}
	delta, err := parseInt(args, 1, "delta")
	if err != nil {
		return err
	}
	total, level, err := a.admin.AddExperience(ctx, id, delta)
	if err != nil {
		return err
	}
	fmt.Printf("user %d: experience %d, level %d\n", id, total, level)
	return nil
}

func (a *app) setExp(ctx context.Context, args []string) error {
	id, err := parseUserID(args, 0)
	if err != nil {
		return err
	}
	value, err := parseInt(args, 1, "value")
	if err != nil {
		return err
	}
	level, err := a.admin.SetExperience(ctx, id, value)
	if err != nil {
		return err
	}
	fmt.Printf("user %d: experience %d, level %d\n", id, value, level)
	return nil
}

func (a *app) useCard(ctx context.Context, args []string) error {
	id, err := parseUserID(args, 0)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("card key required")
	}
	if err := a.admin.UseCard(ctx, id, args[1]); err != nil {
		return err
	}
	fmt.Printf("user %d: consumed one %q\n", id, args[1])
	return nil
}

func (a *app) deleteUser(ctx context.Context, args []string) error {
	id, err := parseUserID(args, 0)
	if err != nil {
		return err
	}
	if err := a.admin.DeleteUser(ctx, id); err != nil {
		return err
	}
	fmt.Printf("user %d deleted\n", id)
	return nil
}

// reset requires both the --confirm flag and an interactively typed
// phrase. Destroying the whole store should never be one keystroke.
func (a *app) reset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	confirm := fs.Bool("confirm", false, "acknowledge that this wipes all data")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*confirm {
		return fmt.Errorf("refusing to reset without --confirm")
	}

	fmt.Printf("This deletes every user, message, achievement, badge and card.\nType %q to proceed: ", resetPhrase)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return err
	}
	if strings.TrimSpace(line) != resetPhrase {
		return fmt.Errorf("confirmation did not match, nothing was changed")
	}

	if err := a.admin.ResetStore(ctx); err != nil {
		return err
	}
	fmt.Println("store reset, schema rebuilt")
	return nil
}

func parseUserID(args []string, i int) (stats.UserID, error) {
	n, err := parseInt(args, i, "user id")
	if err != nil {
		return 0, err
	}
	return stats.UserID(n), nil
}

func parseInt(args []string, i int, what string) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("%s required", what)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[i])
	}
	return n, nil
}
