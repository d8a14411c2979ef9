// Package clitree is a thin adapter over cobra giving every Foundry CLI
// node a uniform `--format text|json` output contract:
// each command's Run renders its result through a Formatter instead of
// calling fmt.Println directly, so the same command tree serves both a
// human terminal and a machine-readable integration (an editor calling
// `foundry --format json doc query ...`, for example).
package clitree

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/spf13/cobra"
)

// Format selects how a Formatter renders a result.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

const flagName = "format"

// Row is one line of tabular human-readable output; Columns is the text
// table header and, paired with the same-order Values, the keys of the
// row's JSON object. JSON objects are written with their keys sorted,
// not in Columns order.
type Row struct {
	Columns []string
	Values  []string
}

// Formatter renders command results according to the --format flag
// registered on its root command.
type Formatter struct {
	out    io.Writer
	format Format
}

// Register attaches a persistent --format flag to cmd, defaulting to
// text, and returns a function that builds a Formatter from the flag's
// current value at Run time.
func Register(cmd *cobra.Command, out io.Writer) func() *Formatter {
	var raw string
	cmd.PersistentFlags().StringVar(&raw, flagName, string(FormatText), "output format: text or json")
	return func() *Formatter {
		f := Format(raw)
		if f != FormatJSON {
			f = FormatText
		}
		return &Formatter{out: out, format: f}
	}
}

// NewFormatter builds a Formatter directly, bypassing flag registration
// (used by tests and by commands composing output programmatically).
func NewFormatter(out io.Writer, format Format) *Formatter {
	if format != FormatJSON {
		format = FormatText
	}
	return &Formatter{out: out, format: format}
}

// Value renders a single JSON-marshalable result. In text mode it
// writes fmt.Sprintf("%v\n", v).
func (f *Formatter) Value(v any) error {
	if f.format == FormatJSON {
		enc := json.NewEncoder(f.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return ferr.Wrap(ferr.Io, err, "encoding json output")
		}
		return nil
	}
	_, err := fmt.Fprintf(f.out, "%v\n", v)
	if err != nil {
		return ferr.Wrap(ferr.Io, err, "writing text output")
	}
	return nil
}

// Rows renders a table: in JSON mode an array of objects keyed by each
// row's Columns, in text mode a whitespace-aligned table with a header.
func (f *Formatter) Rows(rows []Row) error {
	if f.format == FormatJSON {
		out := make([]map[string]string, 0, len(rows))
		for _, r := range rows {
			obj := make(map[string]string, len(r.Columns))
			for i, col := range r.Columns {
				if i < len(r.Values) {
					obj[col] = r.Values[i]
				}
			}
			out = append(out, obj)
		}
		enc := json.NewEncoder(f.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return ferr.Wrap(ferr.Io, err, "encoding json output")
		}
		return nil
	}

	if len(rows) == 0 {
		return nil
	}
	widths := make([]int, len(rows[0].Columns))
	for i, col := range rows[0].Columns {
		widths[i] = len(col)
	}
	for _, r := range rows {
		for i, v := range r.Values {
			if i < len(widths) && len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
	}
	writeRow := func(values []string) error {
		for i, v := range values {
			pad := widths[i] - len(v)
			if _, err := fmt.Fprintf(f.out, "%s", v); err != nil {
				return ferr.Wrap(ferr.Io, err, "writing text output")
			}
			if i < len(values)-1 {
				if _, err := fmt.Fprintf(f.out, "%*s  ", pad, ""); err != nil {
					return ferr.Wrap(ferr.Io, err, "writing text output")
				}
			}
		}
		_, err := fmt.Fprintln(f.out)
		return err
	}
	if err := writeRow(rows[0].Columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writeRow(r.Values); err != nil {
			return err
		}
	}
	return nil
}
