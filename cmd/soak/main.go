package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/flexium/flexium-go/reactive"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const (
	roundsKey  = "rounds"
	widgetsKey = "widgets"
	writesKey  = "writes"
)

func main() {
	cmd := &cli.Command{
		Name:  "soak",
		Usage: "Churn scopes, effects and keyed signals to shake out leaks",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  roundsKey,
				Usage: "Mount/dispose rounds",
				Value: 100,
			},
			&cli.UintFlag{
				Name:  widgetsKey,
				Usage: "Widgets mounted per round",
				Value: 1_000,
			},
			&cli.UintFlag{
				Name:  writesKey,
				Usage: "Writes per round while mounted",
				Value: 100,
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// soakCounters tallies lifecycle events so the run can prove that what
// was created was also torn down.
type soakCounters struct {
	signalsCreated uint64
	signalUpdates  uint64
	effectsCreated uint64
	effectRuns     uint64
	effectErrors   uint64
	scopesDisposed uint64
}

func (c *soakCounters) SignalCreated(id uint64)                 { c.signalsCreated++ }
func (c *soakCounters) SignalUpdated(id uint64, version uint64) { c.signalUpdates++ }
func (c *soakCounters) EffectCreated(id uint64)                 { c.effectsCreated++ }
func (c *soakCounters) EffectRan(id uint64, status reactive.EffectStatus) {
	switch status {
	case reactive.EffectStatusRunning:
		c.effectRuns++
	case reactive.EffectStatusError:
		c.effectErrors++
	}
}
func (c *soakCounters) ScopeDisposed(id uint64) { c.scopesDisposed++ }

func run(ctx context.Context, cmd *cli.Command) error {
	rounds := int(cmd.Uint(roundsKey))
	widgets := int(cmd.Uint(widgetsKey))
	writes := int(cmd.Uint(writesKey))

	rs := reactive.CreateReactiveSystem(func(rec reactive.ErrorRecord) {
		log.Printf("uncaught: %s", rec)
	})
	counters := &soakCounters{}
	detach := rs.AttachInspector(counters)
	defer detach()

	reg := reactive.NewRegistry(rs)
	shared := reactive.Signal(rs, 0)

	log.Printf("soaking: %d rounds x %d widgets x %d writes", rounds, widgets, writes)
	start := time.Now()

	for round := 0; round < rounds; round++ {
		releases := make([]func(), 0, widgets)
		_, dispose := reactive.Root(rs, func(dispose func()) any {
			for i := 0; i < widgets; i++ {
				local, release, err := reactive.AcquireSignal(reg, 0, "widget", fmt.Sprint(i%16))
				if err != nil {
					log.Fatal(err)
				}
				releases = append(releases, release)
				reactive.Effect(rs, func() error {
					_ = shared.Value() + local.Value()
					return nil
				})
			}
			return nil
		})

		for i := 0; i < writes; i++ {
			shared.SetValue(shared.Value() + 1)
		}

		dispose()
		for _, release := range releases {
			release()
		}
	}

	elapsed := time.Since(start)
	var mem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&mem)

	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.SetHeader([]string{"metric", "value"})
	tbl.Append([]string{"elapsed", elapsed.String()})
	tbl.Append([]string{"signals created", humanize.Comma(int64(counters.signalsCreated))})
	tbl.Append([]string{"signal updates", humanize.Comma(int64(counters.signalUpdates))})
	tbl.Append([]string{"effects created", humanize.Comma(int64(counters.effectsCreated))})
	tbl.Append([]string{"effect runs", humanize.Comma(int64(counters.effectRuns))})
	tbl.Append([]string{"effect errors", humanize.Comma(int64(counters.effectErrors))})
	tbl.Append([]string{"scopes disposed", humanize.Comma(int64(counters.scopesDisposed))})
	tbl.Append([]string{"registry keys live", humanize.Comma(int64(reg.Len()))})
	tbl.Append([]string{"heap in use", humanize.IBytes(mem.HeapInuse)})
	tbl.Render()

	if reg.Len() != 0 {
		return fmt.Errorf("registry leak: %d keys still live", reg.Len())
	}
	return nil
}
