package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli"

	"github.com/preflight/preflight/internal/journal"
)

func report(ctx *cli.Context) error {
	j, err := journal.Open(ctx.String("journal"))
	if err != nil {
		return err
	}
	defer j.Close()

	records, err := j.Recent(ctx.Int("limit"))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no recorded loads")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tOUTCOME\tTYPE\tATTEMPTS\tDURATION\tURL")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.At.Format(time.DateTime), r.Outcome, r.Type, r.Attempts,
			r.Duration.Round(time.Millisecond), r.URL)
	}
	return w.Flush()
}
