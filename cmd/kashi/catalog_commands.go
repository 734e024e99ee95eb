package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"kashi/internal/catalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse songs recorded by batch runs",
	}

	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogShowCommand(ctx))
	catalogCmd.AddCommand(newCatalogRunsCommand(ctx))

	return catalogCmd
}

func (c *commandContext) withCatalog(fn func(*catalog.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.Catalog.Enabled {
		return errors.New("catalog is disabled (set catalog.enabled = true)")
	}
	store, err := catalog.Open(cfg.Paths.CatalogPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogued songs by artist and title",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(func(store *catalog.Store) error {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(out, "Catalog is empty")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						strconv.FormatInt(e.ID, 10),
						e.Title,
						e.Artist,
						e.Composer,
						e.Format,
						strconv.Itoa(e.Compounds),
						strconv.Itoa(e.Warnings),
					})
				}
				renderTable(out, []string{"ID", "Title", "Artist", "Composer", "Format", "Compounds", "Warnings"}, rows, 0, 5, 6)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit entries as JSON")
	return cmd
}

func newCatalogShowCommand(ctx *commandContext) *cobra.Command {
	var documentOnly bool

	cmd := &cobra.Command{
		Use:   "show <id|digest>",
		Short: "Show one catalogued song and its stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(func(store *catalog.Store) error {
				entry, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !documentOnly {
					printEntry(out, entry)
				}
				if !entry.HasDocument {
					if documentOnly {
						return fmt.Errorf("entry %d has no stored document", entry.ID)
					}
					return nil
				}
				doc, err := store.Document(cmd.Context(), entry.ID)
				if err != nil {
					return err
				}
				if !documentOnly {
					fmt.Fprintln(out)
				}
				_, err = out.Write(doc)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&documentOnly, "document", false, "Print only the stored document")
	return cmd
}

func printEntry(out io.Writer, e catalog.Entry) {
	fmt.Fprintf(out, "ID:        %d\n", e.ID)
	fmt.Fprintf(out, "Title:     %s\n", e.Title)
	fmt.Fprintf(out, "Artist:    %s\n", e.Artist)
	if e.Writer != "" {
		fmt.Fprintf(out, "Writer:    %s\n", e.Writer)
	}
	if e.Composer != "" {
		fmt.Fprintf(out, "Composer:  %s\n", e.Composer)
	}
	fmt.Fprintf(out, "Format:    %s\n", e.Format)
	fmt.Fprintf(out, "Path:      %s\n", e.Path)
	fmt.Fprintf(out, "Size:      %d bytes\n", e.Size)
	fmt.Fprintf(out, "Digest:    %s\n", e.Digest)
	fmt.Fprintf(out, "Compounds: %d\n", e.Compounds)
	fmt.Fprintf(out, "Warnings:  %d\n", e.Warnings)
	fmt.Fprintf(out, "Document:  %s\n", yesNo(e.HasDocument))
	fmt.Fprintf(out, "Run:       %s\n", e.RunID)
	fmt.Fprintf(out, "Updated:   %s\n", e.UpdatedAt.Format(time.RFC3339))
}

func newCatalogRunsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List batch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(func(store *catalog.Store) error {
				runs, err := store.Runs(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(runs))
				for _, r := range runs {
					finished := "running"
					if !r.FinishedAt.IsZero() {
						finished = r.FinishedAt.Format(time.RFC3339)
					}
					rows = append(rows, []string{
						r.ID,
						r.StartedAt.Format(time.RFC3339),
						finished,
						strconv.Itoa(r.Files),
						strconv.Itoa(r.Failures),
					})
				}
				renderTable(cmd.OutOrStdout(), []string{"Run", "Started", "Finished", "Files", "Failures"}, rows, 3, 4)
				return nil
			})
		},
	}
}
