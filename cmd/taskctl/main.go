// Command taskctl signs in to the task API and manages tasks from the terminal.
// The token and user are kept in a session file, so later commands run as that user
// until logout or until the token expires.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"task_backend/internal/client"
	taskdto "task_backend/internal/feature/tasks/transport/http/dto"
)

const usage = `usage: taskctl <command> [flags]

commands:
  register -name N -email E -password P
  login    -email E -password P
  logout
  whoami
  profile  [-name N]
  list     [-search S] [-filter all|active|completed]
  add      -title T [-description D]
  update   -id ID [-title T] [-description D] [-done=true|false]
  delete   -id ID

environment:
  TASKCTL_API      API base URL (default http://localhost:5000/api)
  TASKCTL_SESSION  session file (default in the user config directory)
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "taskctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	cmd, rest := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(out)

	switch cmd {
	case "register":
		name := fs.String("name", "", "display name")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password (min 6 characters)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		user, err := c.Register(ctx, *name, *email, *password)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "registered and signed in as %s <%s>\n", user.Name, user.Email)

	case "login":
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		user, err := c.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "signed in as %s <%s>\n", user.Name, user.Email)

	case "logout":
		if err := c.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(out, "signed out")

	case "whoami":
		s, err := c.Session()
		if err != nil {
			return err
		}
		if !s.Authenticated() || s.User == nil {
			fmt.Fprintln(out, "not signed in")
			return nil
		}
		fmt.Fprintf(out, "%s <%s>\n", s.User.Name, s.User.Email)

	case "profile":
		name := fs.String("name", "", "new display name")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *name != "" {
			p, err := c.UpdateProfile(ctx, *name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "name updated to %s\n", p.Name)
			return nil
		}
		p, err := c.Profile(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "name:    %s\nemail:   %s\nsince:   %s\n", p.Name, p.Email, p.CreatedAt.Format(time.DateOnly))

	case "list":
		search := fs.String("search", "", "case-insensitive title search")
		filter := fs.String("filter", client.FilterAll, "all, active or completed")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		tasks, err := c.ListTasks(ctx, *search, *filter)
		if err != nil {
			return err
		}
		printTasks(out, tasks, *search != "")

	case "add":
		title := fs.String("title", "", "task title")
		description := fs.String("description", "", "task description")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		t, err := c.CreateTask(ctx, *title, *description)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "created %s\n", t.ID)

	case "update":
		id := fs.String("id", "", "task ID")
		var patch taskdto.UpdateTaskReq
		fs.Func("title", "new title", func(s string) error { patch.Title = &s; return nil })
		fs.Func("description", "new description", func(s string) error { patch.Description = &s; return nil })
		fs.Func("done", "mark completed (true) or active (false)", func(s string) error {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return err
			}
			patch.Completed = &b
			return nil
		})
		if err := fs.Parse(rest); err != nil {
			return err
		}
		t, err := c.UpdateTask(ctx, *id, patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "updated %s\n", t.ID)

	case "delete":
		id := fs.String("id", "", "task ID")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := c.DeleteTask(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %s\n", *id)

	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func newClient() (*client.Client, error) {
	base := os.Getenv("TASKCTL_API")
	if base == "" {
		base = "http://localhost:5000/api"
	}
	path := os.Getenv("TASKCTL_SESSION")
	if path == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return client.New(base, client.NewHTTPClient(10*time.Second), client.NewFileStore(path)), nil
}

func printTasks(out io.Writer, tasks []taskdto.TaskRes, searching bool) {
	if len(tasks) == 0 {
		if searching {
			fmt.Fprintln(out, "No tasks match your search.")
		} else {
			fmt.Fprintln(out, "No tasks yet.")
		}
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tTITLE\tCREATED")
	for _, t := range tasks {
		done := " "
		if t.Completed {
			done = "x"
		}
		fmt.Fprintf(w, "%s\t[%s]\t%s\t%s\n", t.ID, done, t.Title, t.CreatedAt.Format(time.DateOnly))
	}
	_ = w.Flush()
}
