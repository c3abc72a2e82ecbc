package cmd

import (
	"fmt"
	"github.com/cottand/ileproto/internal/log"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"io"
	"log/slog"
	"os"
	"strings"
)

// commonFlags are shared by every subcommand
type commonFlags struct {
	logLevel *int
	sections *[]string
	color    *string
}

func addCommonFlags(cmd *cobra.Command) *commonFlags {
	return &commonFlags{
		logLevel: cmd.Flags().IntP("log-level", "l", int(slog.LevelError), "log level"),
		sections: cmd.Flags().StringSlice("sections", nil, "log sections to show debug records for, e.g. proto,constraint,scenario"),
		color:    cmd.Flags().String("color", "auto", "colorize output: auto, always or never"),
	}
}

func (f *commonFlags) apply() {
	log.SetLevel(slog.Level(*f.logLevel))
	if len(*f.sections) > 0 {
		log.EnableSections(*f.sections...)
	}
}

// printer writes to w, in color when w is a terminal that accepts it
type printer struct {
	w     io.Writer
	color bool

	pass, fail, dim *color.Color
}

func newPrinter(w io.Writer, mode string) (*printer, error) {
	p := &printer{
		w:    w,
		pass: color.New(color.FgGreen),
		fail: color.New(color.FgRed),
		dim:  color.New(color.Faint),
	}
	switch strings.ToLower(mode) {
	case "always":
		p.color = true
	case "never":
	case "auto", "":
		p.color = detectColor(w)
	default:
		return nil, fmt.Errorf("unknown color mode '%s'", mode)
	}
	for _, c := range []*color.Color{p.pass, p.fail, p.dim} {
		if p.color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p, nil
}

func detectColor(w io.Writer) bool {
	// https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

func (p *printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}
