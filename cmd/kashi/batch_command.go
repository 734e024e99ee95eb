package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kashi/internal/catalog"
	"kashi/internal/config"
	"kashi/internal/decode"
	"kashi/internal/decodeerr"
	"kashi/internal/fileutil"
	"kashi/internal/logging"
	"kashi/internal/preflight"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var workers int
	var noCatalog bool

	cmd := &cobra.Command{
		Use:   "batch <path>...",
		Short: "Decode files and directories in parallel and index them in the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			opts, err := ctx.decodeOptions()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Batch.Workers
			}
			useCatalog := cfg.Catalog.Enabled && !noCatalog

			checks := preflight.RunAll(cfg)
			if !useCatalog {
				checks = withoutCheck(checks, "Catalog")
			}
			if failed := preflight.Failed(checks); len(failed) > 0 {
				return fmt.Errorf("preflight: %s: %s", failed[0].Name, failed[0].Detail)
			}

			inputs, err := collectInputs(cfg, args)
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				return errors.New("no input files matched")
			}
			paths := make([]string, len(inputs))
			for i, in := range inputs {
				paths[i] = in.path
			}

			var store *catalog.Store
			var run catalog.Run
			if useCatalog {
				store, err = catalog.OpenWriter(cfg.Paths.CatalogPath)
				if err != nil {
					return err
				}
				defer store.Close()
				if run, err = store.StartRun(cmd.Context()); err != nil {
					return err
				}
			} else {
				run.ID = uuid.NewString()
			}

			runCtx := logging.WithRunID(cmd.Context(), run.ID)
			runLogger := logging.NewComponentLogger(logging.WithContext(runCtx, logger), "batch")
			runLogger.Info("batch started", logging.Int("files", len(paths)), logging.Int("workers", workers))

			results, err := decode.DecodeAll(runCtx, paths, workers, opts)
			if err != nil {
				return err
			}

			failures := 0
			for i := range results {
				res := &results[i]
				if res.Err == nil {
					res.Err = writeResult(inputs[i].target, res)
				}
				if res.Err != nil {
					failures++
					continue
				}
				if store != nil {
					if err := store.Record(runCtx, run.ID, *res, cfg.Catalog.StoreDocuments); err != nil {
						return err
					}
				}
			}
			if store != nil {
				if err := store.FinishRun(runCtx, &run, len(results), failures); err != nil {
					return err
				}
			}
			runLogger.Info("batch finished", logging.Int("files", len(results)), logging.Int("failures", failures))

			printBatchSummary(cmd.OutOrStdout(), results)
			if failures > 0 {
				return fmt.Errorf("%d of %d files failed", failures, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "Concurrent decodes (0 uses one per CPU), overrides batch.workers")
	cmd.Flags().BoolVar(&noCatalog, "no-catalog", false, "Skip recording results in the catalog")
	return cmd
}

type batchInput struct {
	path   string
	target string
}

// collectInputs expands directories recursively, keeping files that pass the
// extension filter. Files named explicitly are always kept. Documents for
// walked files mirror their place below the walked directory. Two inputs that
// would write the same document are an error.
func collectInputs(cfg *config.Config, args []string) ([]batchInput, error) {
	var inputs []batchInput
	seen := make(map[string]bool)
	owner := make(map[string]string)
	add := func(path, rel string) error {
		if seen[path] {
			return nil
		}
		seen[path] = true
		target := cfg.DocumentPath(rel)
		if prev, ok := owner[target]; ok {
			return fmt.Errorf("%s and %s would both write %s; decode them in separate runs or rename one", prev, path, target)
		}
		owner[target] = path
		inputs = append(inputs, batchInput{path: path, target: target})
		return nil
	}

	for _, arg := range args {
		root, err := config.ExpandPath(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("inspect path %q: %w", root, err)
		}
		if !info.IsDir() {
			if err := add(root, filepath.Base(root)); err != nil {
				return nil, err
			}
			continue
		}
		var found []string
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() && cfg.MatchesExtension(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
		sort.Strings(found)
		for _, path := range found {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil, err
			}
			if err := add(path, rel); err != nil {
				return nil, err
			}
		}
	}
	return inputs, nil
}

func writeResult(target string, res *decode.FileResult) error {
	err := fileutil.WriteAtomic(target, 0o644, func(w io.Writer) error {
		_, err := res.Document.WriteTo(w)
		return err
	})
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func withoutCheck(results []preflight.Result, name string) []preflight.Result {
	out := results[:0]
	for _, r := range results {
		if r.Name != name {
			out = append(out, r)
		}
	}
	return out
}

func printBatchSummary(out io.Writer, results []decode.FileResult) {
	headers := []string{"File", "Format", "Compounds", "Warnings", "Status"}
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		status := "ok"
		compounds := "-"
		if res.Err != nil {
			status = decodeerr.Kind(res.Err) + ": " + res.Err.Error()
		} else {
			compounds = strconv.Itoa(len(res.Document.Compounds))
		}
		rows = append(rows, []string{
			filepath.Base(res.Path),
			res.Format.String(),
			compounds,
			strconv.Itoa(len(res.Warnings)),
			status,
		})
	}
	renderTable(out, headers, rows, 2, 3)
}
