package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/ericfisherdev/tootgroup/internal/application"
	"github.com/ericfisherdev/tootgroup/internal/domain/model"
)

// printer writes human-readable summaries. Colour is only used when the
// destination is a terminal.
type printer struct {
	w io.Writer

	ok   *color.Color
	warn *color.Color
	fail *color.Color
	dim  *color.Color
}

func newPrinter(w io.Writer) *printer {
	colorize := false
	if f, ok := w.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return newPrinterWithColor(w, colorize)
}

func newPrinterWithColor(w io.Writer, colorize bool) *printer {
	p := &printer{
		w:    w,
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.ok, p.warn, p.fail, p.dim} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// RunReport prints the one-line summary of a run.
func (p *printer) RunReport(r model.RunReport) {
	status := p.ok.Sprint("ok")
	switch {
	case r.Error != "":
		status = p.fail.Sprint("failed")
	case r.Failed > 0:
		status = p.warn.Sprint("partial")
	}

	prefix := ""
	if r.DryRun {
		prefix = p.dim.Sprint("[dry run] ")
	}

	fmt.Fprintf(p.w, "%s%s %s: scanned %d, boosted %d, reposted %d, skipped %d, failed %d, cursor %d -> %d (%s)\n",
		prefix,
		r.GroupName,
		status,
		r.Scanned,
		r.Boosted,
		r.Reposted,
		r.Skipped,
		r.Failed,
		int64(r.CursorBefore),
		int64(r.CursorAfter),
		r.Duration().Round(time.Millisecond),
	)
	if r.Error != "" {
		fmt.Fprintf(p.w, "  %s\n", p.fail.Sprint(r.Error))
	}
}

// Groups prints a table of registered groups.
func (p *printer) Groups(groups []model.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(p.w, "No groups registered. Add one with `tootgroup register`.")
		return
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tINSTANCE\tCURSOR\tDMS\tRETOOTS\tUPDATED")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			g.Name,
			g.InstanceURL,
			int64(g.Cursor),
			yesNo(g.Policy.AcceptDirectMessages),
			yesNo(g.Policy.AcceptPublicRetoots),
			formatDate(g.UpdatedAt),
		)
	}
	_ = tw.Flush()
}

// Policy prints the policy of one group.
func (p *printer) Policy(g model.Group) {
	fmt.Fprintf(p.w, "%s: accept DMs %s, accept public retoots %s\n",
		g.Name,
		yesNo(g.Policy.AcceptDirectMessages),
		yesNo(g.Policy.AcceptPublicRetoots),
	)
}

// Update prints the outcome of a release check.
func (p *printer) Update(info application.UpdateInfo) {
	if !info.Available {
		fmt.Fprintf(p.w, "tootgroup %s is up to date\n", info.Current)
		return
	}
	fmt.Fprintf(p.w, "%s %s (running %s)\n",
		p.warn.Sprint("New release available:"),
		info.Latest.Tag,
		info.Current,
	)
	if info.Latest.URL != "" {
		fmt.Fprintf(p.w, "  %s\n", info.Latest.URL)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
