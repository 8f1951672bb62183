// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tripmart/cli/internal/catalog"
	"tripmart/cli/internal/collection"
	"tripmart/cli/internal/editsession"
	apperrors "tripmart/cli/internal/errors"
	"tripmart/cli/internal/query"
	"tripmart/cli/internal/render"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// browser is the command surface of the browse loop. browseSession
// implements it; tests provide a lightweight stub.
type browser interface {
	List(ctx context.Context) error
	Search(ctx context.Context, pairs []string) error
	Show(id string) error
	Edit(id string) error
	Set(key, value string) error
	Draft() error
	Save(ctx context.Context) error
	Cancel() error
	Remove(ctx context.Context, id string) error
	Toggle(ctx context.Context, id, field string) error
	Status() error
}

const browseHelp = `Commands:
  list                  reload the whole collection
  search key=value...   server-side search (e.g. search minPrice=10 order=asc)
  show <id>             show one record
  edit <id>             start editing a record
  set <key> <value>     change an attribute of the draft
  draft                 show the draft
  save                  send the draft
  cancel                discard the draft
  rm <id>               delete a record
  toggle <id> <field>   flip a true/false attribute
  status                repeat the last status message
  exit | quit           leave`

// runBrowse reads commands from scanner and dispatches them to b until EOF,
// "exit" or "quit". Errors are reported by the handlers through the status
// channel, so they are ignored here.
func runBrowse(ctx context.Context, b browser, promptFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("tripmart> %s > ", promptFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help", "?":
			printlnFn(browseHelp)

		case "l", "list":
			_ = b.List(ctx)

		case "search":
			_ = b.Search(ctx, args)

		case "show":
			if len(args) != 1 {
				printlnFn("Usage: show <id>")
				continue
			}
			_ = b.Show(args[0])

		case "edit":
			if len(args) != 1 {
				printlnFn("Usage: edit <id>")
				continue
			}
			_ = b.Edit(args[0])

		case "set":
			if len(args) < 2 {
				printlnFn("Usage: set <key> <value>")
				continue
			}
			_ = b.Set(args[0], strings.Join(args[1:], " "))

		case "draft":
			_ = b.Draft()

		case "save":
			_ = b.Save(ctx)

		case "cancel":
			_ = b.Cancel()

		case "rm", "delete":
			if len(args) != 1 {
				printlnFn("Usage: rm <id>")
				continue
			}
			_ = b.Remove(ctx, args[0])

		case "toggle":
			if len(args) != 2 {
				printlnFn("Usage: toggle <id> <field>")
				continue
			}
			_ = b.Toggle(ctx, args[0], args[1])

		case "status":
			_ = b.Status()

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// browseSession binds one view, one edit session and the app's status
// channel for the lifetime of the loop.
type browseSession struct {
	a    *app
	r    catalog.Resource
	view *collection.View
	edit *editsession.Session
}

func newBrowseSession(a *app, r catalog.Resource) *browseSession {
	v := a.view(r)
	return &browseSession{a: a, r: r, view: v, edit: a.editSession(r, v)}
}

func (b *browseSession) prompt() string {
	p := fmt.Sprintf("%s [%s, %d]", b.r.Name, b.view.State(), b.view.Len())
	if id, ok := b.edit.Active(); ok {
		p += fmt.Sprintf(" %s %s", b.edit.State(), id)
	}
	return p
}

func (b *browseSession) List(ctx context.Context) error {
	if err := withSpinner(ctx, "loading "+b.r.Name, b.view.Load); err != nil {
		return err
	}
	return b.a.showItems(b.r, b.view)
}

func (b *browseSession) Search(ctx context.Context, pairs []string) error {
	d, err := query.ParseAssignments(pairs)
	if err != nil {
		b.a.status.PublishError(err)
		return err
	}
	err = withSpinner(ctx, "searching "+b.r.Name, func(ctx context.Context) error {
		return b.view.Search(ctx, d)
	})
	if err != nil {
		return err
	}
	return b.a.showItems(b.r, b.view)
}

func (b *browseSession) Show(id string) error {
	item, ok := b.view.Get(id)
	if !ok {
		err := apperrors.Newf(apperrors.NotFound, "%s %s is not in the list", b.r.Singular, id)
		b.a.status.PublishError(err)
		return err
	}
	return render.Item(b.a.out, b.a.format(), item)
}

func (b *browseSession) Edit(id string) error {
	if err := b.edit.Begin(id); err != nil {
		return err
	}
	b.a.status.Info(fmt.Sprintf("Editing %s %s. Use set, draft, save or cancel.", b.r.Singular, id))
	return nil
}

func (b *browseSession) Set(key, value string) error {
	v, err := b.r.Coerce(key, value)
	if err == nil {
		err = b.edit.SetField(key, v)
	}
	if err != nil {
		b.a.status.PublishError(err)
		return err
	}
	return nil
}

func (b *browseSession) Draft() error {
	d, ok := b.edit.Draft()
	if !ok {
		b.a.status.Info("Nothing is being edited.")
		return nil
	}
	return render.Item(b.a.out, b.a.format(), d)
}

func (b *browseSession) Save(ctx context.Context) error {
	saved, err := b.edit.Save(ctx)
	if err != nil {
		return err
	}
	return render.Item(b.a.out, b.a.format(), saved)
}

func (b *browseSession) Cancel() error {
	if _, ok := b.edit.Active(); !ok {
		b.a.status.Info("Nothing is being edited.")
		return nil
	}
	b.edit.Cancel()
	b.a.status.Info("Edit discarded.")
	return nil
}

func (b *browseSession) Remove(ctx context.Context, id string) error {
	if active, ok := b.edit.Active(); ok && active == id {
		err := apperrors.Newf(apperrors.EditInProgress, "%s is being edited; save or cancel it first", id)
		b.a.status.PublishError(err)
		return err
	}
	return b.view.Remove(ctx, id)
}

func (b *browseSession) Toggle(ctx context.Context, id, field string) error {
	if !b.r.CanToggle(field) {
		err := apperrors.Newf(apperrors.Validation, "%s cannot be toggled; use one of: %s", field, strings.Join(b.r.Toggles, ", "))
		b.a.status.PublishError(err)
		return err
	}
	_, err := b.view.ToggleFlag(ctx, id, field)
	return err
}

func (b *browseSession) Status() error {
	if m, ok := b.a.status.Current(); ok {
		printlnFn(fmt.Sprintf("[%s] %s", m.Severity, m.Text))
		return nil
	}
	printlnFn("No status.")
	return nil
}

var browseCmd = &cobra.Command{
	Use:   "browse <resource>",
	Short: "Browse and edit a resource interactively",
	Long: fmt.Sprintf(`The browse command opens an interactive loop over one resource. The list is
loaded once; search, edit, toggle and delete work on it without reloading.

Resources: %s`, strings.Join(catalog.Names(), ", ")),
	Args: cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return catalog.Names(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		r, ok := catalog.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown resource %q; use one of: %s", args[0], strings.Join(catalog.Names(), ", "))
		}
		b := newBrowseSession(a, r)
		defer b.view.Close()

		ctx := cmd.Context()
		_ = b.List(ctx)
		printlnFn("Type 'help' for commands.")
		runBrowse(ctx, b, b.prompt, bufio.NewScanner(os.Stdin))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
