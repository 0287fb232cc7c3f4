package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/flexium/flexium-go/reactive"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	itersKey   = "iters"
	profileKey = "profile"
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure flexium signal propagation latency",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  itersKey,
				Usage: "Writes per grid cell",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  profileKey,
				Usage: "CPU profile output path, empty to disable",
				Value: "default.pgo",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	iters := int(cmd.Uint(itersKey))

	if path := cmd.String(profileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	log.Printf("warming up")
	benchmarkPropagate(iters, true)
	benchmarkDiamond(iters, true)
	benchmarkBatch(iters, true)
	return nil
}

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100, 1_000}
)

func newSystem() *reactive.ReactiveSystem {
	return reactive.CreateReactiveSystem(func(rec reactive.ErrorRecord) {
		log.Panic(rec)
	})
}

// benchmarkPropagate drives a w*h grid: w independent computed chains of
// depth h hanging off one source signal, each chain observed by one
// effect, timing how long a single source write takes to settle.
func benchmarkPropagate(iters int, shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Flexium Signals")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			rs := newSystem()
			src := reactive.Signal(rs, 1)
			for i := 0; i < w; i++ {
				var last interface{ Value() int } = src
				for j := 0; j < h; j++ {
					prev := last
					last = reactive.Computed(rs, func(oldValue int) int {
						return prev.Value() + 1
					})
				}

				final := last
				reactive.Effect(rs, func() error {
					final.Value()
					return nil
				})
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				src.SetValue(src.Value() + 1)
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

// benchmarkDiamond fans one source out to n computeds joined back by a
// single sum, the worst case for glitch avoidance.
func benchmarkDiamond(iters int, shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Flexium Diamond")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, n := range []int{2, 10, 100, 1_000} {
		tach := tachymeter.New(&tachymeter.Config{Size: iters})

		rs := newSystem()
		src := reactive.Signal(rs, 1)
		arms := make([]*reactive.ReadonlySignal[int], n)
		for i := 0; i < n; i++ {
			arms[i] = reactive.Computed(rs, func(oldValue int) int {
				return src.Value() * 2
			})
		}
		join := reactive.Computed(rs, func(oldValue int) int {
			total := 0
			for _, arm := range arms {
				total += arm.Value()
			}
			return total
		})
		reactive.Effect(rs, func() error {
			join.Value()
			return nil
		})

		for i := 0; i < iters; i++ {
			start := time.Now()
			src.SetValue(src.Value() + 1)
			tach.AddTime(time.Since(start))
		}

		calc := tach.Calc()
		tbl.AppendRows([]table.Row{
			{
				fmt.Sprintf("diamond: 1 -> %d -> 1", n),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
			},
		})
	}

	if shouldRender {
		tbl.Render()
	}
}

// benchmarkBatch writes n signals observed by one effect inside a single
// batch, so each iteration pays for one flush no matter how wide n gets.
func benchmarkBatch(iters int, shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Flexium Batch")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, n := range []int{1, 10, 100, 1_000} {
		tach := tachymeter.New(&tachymeter.Config{Size: iters})

		rs := newSystem()
		sigs := make([]*reactive.WriteableSignal[int], n)
		for i := range sigs {
			sigs[i] = reactive.Signal(rs, 0)
		}
		reactive.Effect(rs, func() error {
			for _, s := range sigs {
				s.Value()
			}
			return nil
		})

		for i := 0; i < iters; i++ {
			start := time.Now()
			rs.Batch(func() {
				for _, s := range sigs {
					s.SetValue(i + 1)
				}
			})
			tach.AddTime(time.Since(start))
		}

		calc := tach.Calc()
		tbl.AppendRows([]table.Row{
			{
				fmt.Sprintf("batch: %d writes", n),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
			},
		})
	}

	if shouldRender {
		tbl.Render()
	}
}
