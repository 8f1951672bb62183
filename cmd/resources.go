// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tripmart/cli/internal/backend"
	"tripmart/cli/internal/catalog"
	"tripmart/cli/internal/collection"
	"tripmart/cli/internal/editsession"
	apperrors "tripmart/cli/internal/errors"
	"tripmart/cli/internal/query"
	"tripmart/cli/internal/render"
)

// newResourceCmd builds the command group of one marketplace resource.
func newResourceCmd(r catalog.Resource) *cobra.Command {
	group := &cobra.Command{
		Use:   r.Name,
		Short: fmt.Sprintf("List, search and edit %s", r.Name),
		Long: fmt.Sprintf(`Commands for the %s collection (%s).

Typed attributes for --set: %s`, r.Name, r.Path, strings.Join(r.Describe(), ", ")),
	}
	group.AddCommand(
		newListCmd(r),
		newSearchCmd(r),
		newGetCmd(r),
		newDeleteCmd(r),
		newEditCmd(r),
		newCreateCmd(r),
	)
	if len(r.Toggles) > 0 {
		group.AddCommand(newToggleCmd(r))
	}
	return group
}

func (a *app) view(r catalog.Resource) *collection.View {
	return collection.New(a.gw, r.CollectionSpec(), a.status, collection.WithLogger(a.logger))
}

func (a *app) editSession(r catalog.Resource, v *collection.View) *editsession.Session {
	return editsession.New(v, a.gw, r.ItemPath, a.status,
		editsession.WithValidator(r.ValidateDraft),
		editsession.WithLogger(a.logger),
	)
}

// loadView fetches the unfiltered list of r behind a spinner.
func (a *app) loadView(ctx context.Context, r catalog.Resource) (*collection.View, error) {
	v := a.view(r)
	if err := withSpinner(ctx, "loading "+r.Name, v.Load); err != nil {
		v.Close()
		return nil, reported(err)
	}
	return v, nil
}

func (a *app) showItems(r catalog.Resource, v *collection.View) error {
	items := v.Items()
	if len(items) == 0 && a.format() == render.Table {
		return nil
	}
	return render.Items(a.out, a.format(), r.Columns, items)
}

func newListCmd(r catalog.Resource) *cobra.Command {
	var sortDate string
	c := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   fmt.Sprintf("List all %s", r.Name),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current
			descending, err := parseSortOrder(sortDate)
			if err != nil {
				return a.fail(err)
			}
			v, err := a.loadView(cmd.Context(), r)
			if err != nil {
				return err
			}
			defer v.Close()
			if sortDate != "" {
				if err := v.SortByDate(descending); err != nil {
					return a.fail(err)
				}
			}
			return a.showItems(r, v)
		},
	}
	if r.DateSort != nil {
		c.Flags().StringVar(&sortDate, "sort-date", "", "Sort by "+r.DateSort.Field+" on the client: asc or desc")
	}
	return c
}

// parseSortOrder reads a --sort-date value. Empty means no client-side sort.
func parseSortOrder(s string) (descending bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return false, nil
	case "desc":
		return true, nil
	default:
		return false, apperrors.Newf(apperrors.Validation, "--sort-date must be asc or desc, got %q", s)
	}
}

func newSearchCmd(r catalog.Resource) *cobra.Command {
	var where []string
	values := make(map[string]*string)
	c := &cobra.Command{
		Use:   "search",
		Short: fmt.Sprintf("Search %s with server-side filters", r.Name),
		Long: fmt.Sprintf(`Search %s through %s. The server decides which records
match and in which order. Filters: %s.`, r.Name, r.SearchPath, strings.Join(r.Fields.Keys(), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current
			d, err := searchDescriptor(cmd.Flags(), values, where)
			if err != nil {
				return a.fail(err)
			}
			v := a.view(r)
			defer v.Close()
			err = withSpinner(cmd.Context(), "searching "+r.Name, func(ctx context.Context) error {
				return v.Search(ctx, d)
			})
			if err != nil {
				return reported(err)
			}
			return a.showItems(r, v)
		},
	}
	for _, key := range r.Fields.Keys() {
		usage := fmt.Sprintf("Filter %s (%s)", key, r.Fields[key].Name)
		switch r.Fields[key].Kind {
		case query.Date:
			usage += ", a date as YYYY-MM-DD"
		case query.Number:
			usage += ", a number"
		case query.Order:
			usage += ", asc or desc"
		}
		values[key] = c.Flags().String(flagName(key), "", usage)
	}
	c.Flags().StringArrayVar(&where, "where", nil, "Extra filter as key=value (repeatable)")
	return c
}

// searchDescriptor builds a descriptor from --where pairs and explicitly set
// filter flags. Flags win over --where.
func searchDescriptor(flags *pflag.FlagSet, values map[string]*string, where []string) (query.Descriptor, error) {
	d, err := query.ParseAssignments(where)
	if err != nil {
		return nil, err
	}
	for key, val := range values {
		if flags.Changed(flagName(key)) {
			d[key] = *val
		}
	}
	return d, nil
}

// flagName turns a descriptor key such as "minPrice" into "min-price".
func flagName(key string) string {
	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func newGetCmd(r catalog.Resource) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Show one %s", r.Singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current
			v, err := a.loadView(cmd.Context(), r)
			if err != nil {
				return err
			}
			defer v.Close()
			item, ok := v.Get(args[0])
			if !ok {
				return a.fail(apperrors.Newf(apperrors.NotFound, "%s %s not found", r.Singular, args[0]))
			}
			return render.Item(a.out, a.format(), item)
		},
	}
}

func newDeleteCmd(r catalog.Resource) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   fmt.Sprintf("Delete a %s", r.Singular),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current
			v, err := a.loadView(cmd.Context(), r)
			if err != nil {
				return err
			}
			defer v.Close()
			return reported(v.Remove(cmd.Context(), args[0]))
		},
	}
}

func newToggleCmd(r catalog.Resource) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id> <field>",
		Short: fmt.Sprintf("Flip a true/false field of a %s (%s)", r.Singular, strings.Join(r.Toggles, ", ")),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current
			id, field := args[0], args[1]
			if !r.CanToggle(field) {
				return a.fail(apperrors.Newf(apperrors.Validation, "%s cannot be toggled; use one of: %s", field, strings.Join(r.Toggles, ", ")))
			}
			v, err := a.loadView(cmd.Context(), r)
			if err != nil {
				return err
			}
			defer v.Close()
			item, err := v.ToggleFlag(cmd.Context(), id, field)
			if err != nil {
				return reported(err)
			}
			if a.format() == render.JSON {
				return render.Item(a.out, render.JSON, item)
			}
			return nil
		},
	}
}

func newEditCmd(r catalog.Resource) *cobra.Command {
	var set []string
	c := &cobra.Command{
		Use:   "edit <id> --set key=value...",
		Short: fmt.Sprintf("Change attributes of a %s", r.Singular),
		Long: fmt.Sprintf(`Edit a %s. The whole record, with the --set changes applied, is sent in
one update request. Typed attributes: %s.`, r.Singular, strings.Join(r.Describe(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current
			changes, err := r.Assign(set)
			if err != nil {
				return a.fail(err)
			}
			if len(changes) == 0 {
				return a.fail(apperrors.New(apperrors.Validation, "nothing to change; pass --set key=value"))
			}
			v, err := a.loadView(cmd.Context(), r)
			if err != nil {
				return err
			}
			defer v.Close()

			s := a.editSession(r, v)
			if err := s.Begin(args[0]); err != nil {
				return reported(err)
			}
			for k, val := range changes {
				if err := s.SetField(k, val); err != nil {
					return a.fail(err)
				}
			}
			saved, err := s.Save(cmd.Context())
			if err != nil {
				return reported(err)
			}
			return render.Item(a.out, a.format(), saved)
		},
	}
	c.Flags().StringArrayVar(&set, "set", nil, "Attribute assignment key=value (repeatable)")
	return c
}

func newCreateCmd(r catalog.Resource) *cobra.Command {
	var (
		set      []string
		filePath string
	)
	c := &cobra.Command{
		Use:   "create --set key=value...",
		Short: fmt.Sprintf("Create a %s", r.Singular),
		Long: fmt.Sprintf(`Create a %s. Required: %s. Typed attributes: %s.`,
			r.Singular, strings.Join(r.Required, ", "), strings.Join(r.Describe(), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current
			body, err := r.Assign(set)
			if err != nil {
				return a.fail(err)
			}
			if err := r.Validate(body); err != nil {
				return a.fail(err)
			}

			var file *backend.File
			if filePath != "" {
				f, err := os.Open(filePath)
				if err != nil {
					return a.fail(apperrors.Wrap(apperrors.Validation, "cannot read "+filePath, err))
				}
				defer f.Close()
				file = &backend.File{Field: r.UploadField, Name: filepath.Base(filePath), Content: f}
			}

			v := a.view(r)
			defer v.Close()
			created, err := v.Create(cmd.Context(), body, file)
			if err != nil {
				return reported(err)
			}
			if created == nil {
				return nil
			}
			return render.Item(a.out, a.format(), created)
		},
	}
	c.Flags().StringArrayVar(&set, "set", nil, "Attribute assignment key=value (repeatable)")
	if r.UploadField != "" {
		c.Flags().StringVar(&filePath, r.UploadField, "", "File to upload as the "+r.UploadField)
	}
	return c
}
