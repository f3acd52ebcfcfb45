package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/efreitasn/gbce/internal/domain"
)

type sampleCmd struct {
	price int64
}

func (*sampleCmd) Name() string { return "sample" }
func (*sampleCmd) Synopsis() string {
	return "list the GBCE sample stocks and print their metrics and the all-share index"
}
func (*sampleCmd) Usage() string {
	return `gbce sample [-price <price>]

  Lists the GBCE sample stocks (TEA, POP, ALE, GIN, JOE), records one buy
  at -price for each, then prints a quote per stock and the index.
`
}

func (c *sampleCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.price, "price", 100, "Price used for the quotes and the recorded trades.")
}

func (c *sampleCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var script strings.Builder
	script.WriteString("sample\n")
	for _, s := range domain.SampleStocks() {
		fmt.Fprintf(&script, "trade %s buy 1 %d\n", s.Symbol, c.price)
		fmt.Fprintf(&script, "quote %s %d\n", s.Symbol, c.price)
	}
	script.WriteString("index\n")

	if err := a.router.Serve(ctx, strings.NewReader(script.String()), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
