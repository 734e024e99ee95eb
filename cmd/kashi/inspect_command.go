package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"kashi/internal/decode"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the container layout and record counts of a song file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ctx.decodeOptions()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			rep, inspectErr := decode.Inspect(data, opts)
			if rep == nil {
				return inspectErr
			}
			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, rep); err != nil {
					return err
				}
			} else {
				printReport(out, rep)
			}
			return inspectErr
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the report as JSON")
	return cmd
}

func printReport(out io.Writer, rep *decode.Report) {
	fmt.Fprintf(out, "Format:   %s\n", rep.Format)
	fmt.Fprintf(out, "Digest:   %s\n", rep.Digest)
	if rep.Schema != "" {
		fmt.Fprintf(out, "Schema:   %s\n", rep.Schema)
		fmt.Fprintf(out, "Codec:    %s\n", rep.Codec)
	}
	if rep.Meta.Title != "" || rep.Meta.Artist != "" {
		fmt.Fprintf(out, "Title:    %s\n", rep.Meta.Title)
		fmt.Fprintf(out, "Artist:   %s\n", rep.Meta.Artist)
	}
	fmt.Fprintln(out)

	headerRows := make([][]string, 0, len(rep.Header))
	for _, f := range rep.Header {
		headerRows = append(headerRows, []string{f.Name, fmt.Sprintf("0x%08x", f.Value), strconv.FormatUint(uint64(f.Value), 10)})
	}
	renderTable(out, []string{"Header", "Hex", "Decimal"}, headerRows, 1, 2)
	fmt.Fprintln(out)

	sectionRows := make([][]string, 0, len(rep.Sections))
	for _, s := range rep.Sections {
		sectionRows = append(sectionRows, []string{s.Name, s.Parent, strconv.Itoa(s.Offset), strconv.Itoa(s.Size)})
	}
	renderTable(out, []string{"Section", "Parent", "Offset", "Size"}, sectionRows, 2, 3)

	if rep.Schema == "" {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Blocks:   %d (%d instant)\n", rep.Blocks, rep.Instant)
	fmt.Fprintf(out, "Glyphs:   %d\n", rep.Glyphs)
	fmt.Fprintf(out, "Furigana: %d\n", rep.Furigana)
	fmt.Fprintf(out, "Events:   %d\n", rep.Events)

	if len(rep.Styles) == 0 {
		return
	}
	fmt.Fprintln(out)
	styleRows := make([][]string, 0, len(rep.Styles))
	for _, st := range rep.Styles {
		styleRows = append(styleRows, []string{st.Tag, st.Idle.Fill, st.Idle.Border, st.Active.Fill, st.Active.Border})
	}
	renderTable(out, []string{"Style", "Fill", "Border", "Fill (sung)", "Border (sung)"}, styleRows)
}
