package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"portfolio-dashboard/internal/feeds"
	"portfolio-dashboard/internal/scheduler"
	"portfolio-dashboard/internal/store"
	"portfolio-dashboard/pkg/utils"
)

// addPriceCommands adds the live price commands.
func addPriceCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newRefreshCmd(app))
	rootCmd.AddCommand(newWatchCmd(app))
	rootCmd.AddCommand(newStatusCmd(app))
}

type refreshJSON struct {
	Updated  []string          `json:"updated"`
	Failed   map[string]string `json:"failed"`
	Duration string            `json:"duration"`
	USDINR   float64           `json:"usdinr"`
}

func reportJSON(app *App, r feeds.Report) refreshJSON {
	failed := make(map[string]string, len(r.Failed))
	for k, err := range r.Failed {
		failed[k] = err.Error()
	}
	return refreshJSON{
		Updated:  r.Updated,
		Failed:   failed,
		Duration: r.Duration.Round(time.Millisecond).String(),
		USDINR:   app.Cache.USDINR(),
	}
}

// refreshPrices runs one refresh pass and records it when anything updated.
func refreshPrices(ctx context.Context, app *App) feeds.Report {
	report := app.Refresher.Refresh(ctx, app.Store.Portfolio())
	if len(report.Updated) > 0 {
		if err := app.Store.MarkSynced(store.SyncTypePrices, time.Now()); err != nil {
			app.Logger.Warn().Err(err).Msg("Failed to record price refresh time")
		}
	}
	return report
}

func printReport(output *Output, r feeds.Report) {
	output.Success("✓ %d prices updated in %s", len(r.Updated), FormatDuration(r.Duration))
	if len(r.Failed) == 0 {
		return
	}
	output.Warning("⚠ %d unavailable:", len(r.Failed))
	for _, key := range r.FailedKeys() {
		output.Printf("  %-16s %s\n", key, output.DimText(r.Failed[key].Error()))
	}
}

func newRefreshCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch live prices for every holding",
		Long: `Fetch mutual fund NAVs from AMFI and stock, gold, and USDINR quotes from
Yahoo Finance. Every lookup settles independently; holdings whose price
cannot be fetched fall back to cost basis.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			report := refreshPrices(cmd.Context(), app)
			if output.IsJSON() {
				return output.JSON(reportJSON(app, report))
			}
			printReport(output, report)
			output.Dim("USDINR %.2f", app.Cache.USDINR())
			return nil
		},
	}
}

func newWatchCmd(app *App) *cobra.Command {
	var schedule string
	var allHours bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh prices on a schedule",
		Long: `Refresh prices on a cron schedule and print the portfolio total after
each pass. By default passes outside Indian and US market hours are skipped.
Stop with Ctrl+C.

Examples:
  portfolio watch
  portfolio watch --schedule "@every 1m"
  portfolio watch --schedule "*/10 9-16 * * 1-5" --all-hours`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if schedule == "" {
				schedule = app.Config.Watch.Schedule
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sched := scheduler.New(app.Logger.With().Str("component", "watch").Logger(), scheduler.Options{
				MarketHoursOnly: app.Config.Watch.MarketHoursOnly && !allHours,
			})
			job := scheduler.JobFunc{
				JobName: "refresh-prices",
				Fn: func(ctx context.Context) error {
					report := refreshPrices(ctx, app)
					sum := app.Aggregator.Summary(app.Store.Portfolio())
					if output.IsJSON() {
						return output.JSON(map[string]any{
							"at":      time.Now().Format(time.RFC3339),
							"refresh": reportJSON(app, report),
							"total":   sum.Total,
						})
					}
					output.Printf("%s  %s  %s  %s\n",
						output.DimText(FormatDateTime(time.Now())),
						output.BoldText(FormatIndianCurrency(sum.Total.Current)),
						output.FormatPnL(sum.Total.GainLoss),
						output.FormatPercent(sum.Total.ReturnPct))
					if len(report.Failed) > 0 {
						output.Warning("  ⚠ %d prices unavailable", len(report.Failed))
					}
					return nil
				},
			}

			id, err := sched.AddJob(schedule, job)
			if err != nil {
				return err
			}
			if !output.IsJSON() {
				output.Info("Watching prices on %q. Press Ctrl+C to stop.", schedule)
			}
			if err := sched.RunNow(ctx, job); err != nil {
				app.Logger.Warn().Err(err).Msg("Initial refresh failed")
			}

			sched.Start(ctx)
			if !output.IsJSON() {
				output.Dim("Next refresh %s", FormatDateTime(sched.Next(id)))
			}
			<-ctx.Done()
			sched.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule (default from config)")
	cmd.Flags().BoolVar(&allHours, "all-hours", false, "refresh outside market hours too")
	return cmd
}

type providerJSON struct {
	Name        string `json:"name"`
	State       string `json:"state"`
	Available   bool   `json:"available"`
	Latency     string `json:"latency,omitempty"`
	Failures    int64  `json:"failures"`
	Rejected    int64  `json:"rejected"`
	LastError   string `json:"lastError,omitempty"`
	LastSuccess string `json:"lastSuccess,omitempty"`
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show market hours, data freshness, and feed health",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			now := time.Now()

			var report *feeds.Report
			if offline, _ := cmd.Flags().GetBool("offline"); !offline {
				r := refreshPrices(cmd.Context(), app)
				report = &r
			}

			india := utils.IndianMarketStatus(now)
			us := utils.USMarketStatus(now)
			pricesFresh := app.Store.Freshness(store.SyncTypePrices, now)
			remoteFresh := app.Store.Freshness(store.SyncTypeRemote, now)

			var providers []providerJSON
			for _, st := range app.Refresher.Breakers().AllStats() {
				p := providerJSON{
					Name:     st.Name,
					State:    string(st.State),
					Failures: st.TotalFailures,
					Rejected: st.TotalRejected,
				}
				if svc, ok := app.Refresher.Monitor().GetStatus(st.Name); ok {
					p.Available = svc.Available
					p.Latency = svc.Latency.Round(time.Millisecond).String()
					if svc.LastError != nil {
						p.LastError = svc.LastError.Error()
					}
					if !svc.LastSuccess.IsZero() {
						p.LastSuccess = svc.LastSuccess.Format(time.RFC3339)
					}
				}
				providers = append(providers, p)
			}

			if output.IsJSON() {
				out := map[string]any{
					"markets": map[string]utils.MarketStatus{"india": india, "us": us},
					"prices":  pricesFresh,
					"remote":  remoteFresh,
					"feeds":   providers,
				}
				if report != nil {
					out["refresh"] = reportJSON(app, *report)
				}
				return output.JSON(out)
			}

			output.Bold("Markets")
			output.Printf("  India (NSE/BSE):  %s\n", output.MarketStatus(india))
			if india != utils.MarketOpen {
				output.Printf("  %s\n", output.DimText("Opens "+FormatDateTime(utils.NextIndianMarketOpen(now))))
			}
			output.Printf("  US (NASDAQ):      %s\n", output.MarketStatus(us))
			output.Println()

			output.Bold("Data")
			output.Printf("  Prices:           %s\n", store.FormatFreshness(pricesFresh))
			output.Printf("  GitHub sync:      %s\n", store.FormatFreshness(remoteFresh))
			output.Println()

			output.Bold("Feeds")
			if len(providers) == 0 {
				output.Dim("  No requests made (offline)")
				return nil
			}
			table := NewTable(output, "Feed", "Circuit", "Available", "Latency", "Failures", "Last Error")
			table.AlignRight(3)
			table.AlignRight(4)
			for _, p := range providers {
				avail := output.Green("yes")
				if !p.Available {
					avail = output.Red("no")
				}
				state := output.Green(p.State)
				if p.State != "CLOSED" {
					state = output.Yellow(p.State)
				}
				table.AddRow(p.Name, state, avail, p.Latency, FormatUnits(int(p.Failures)),
					TruncateString(p.LastError, 40))
			}
			table.Render()
			return nil
		},
	}
}
