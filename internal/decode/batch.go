package decode

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"runtime"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"kashi/internal/container"
	"kashi/internal/decodeerr"
	"kashi/internal/logging"
	"kashi/internal/lyrics"
)

// FileResult is the outcome of decoding one file in a batch.
type FileResult struct {
	Path string
	// Digest is the BLAKE3 hash of the input bytes, hex encoded.
	Digest   string
	Size     int64
	Format   container.Format
	Document *lyrics.Document
	Warnings []Warning
	Err      error
}

// Digest returns the hex BLAKE3 hash identifying input bytes.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DecodeAll decodes paths with at most workers files in flight. Per-file
// failures are recorded in the results; only cancellation of ctx returns an
// error. Results keep the order of paths.
func DecodeAll(ctx context.Context, paths []string, workers int, opts Options) ([]FileResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := logging.NewComponentLogger(logging.WithContext(ctx, opts.Logger), "batch")
	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = decodeOne(path, opts)
			if results[i].Err != nil {
				logger.Error("decode failed",
					logging.String(logging.FieldPath, path),
					logging.String(logging.FieldErrorKind, decodeerr.Kind(results[i].Err)),
					logging.Error(results[i].Err),
				)
			} else {
				logger.Info("decoded",
					logging.String(logging.FieldPath, path),
					logging.String("format", results[i].Format.String()),
					logging.Int("compounds", len(results[i].Document.Compounds)),
					logging.Int("warnings", len(results[i].Warnings)),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func decodeOne(path string, opts Options) FileResult {
	res := FileResult{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", path, err)
		return res
	}
	res.Size = int64(len(data))
	res.Digest = Digest(data)
	// Format is reported from the magic alone, so a file that fails later in
	// Decode still records what it claimed to be. Unknown magic leaves
	// FormatUnknown and Decode returns the same error.
	res.Format, _ = container.Detect(data)
	res.Document, res.Warnings, res.Err = Decode(data, opts)
	return res
}
