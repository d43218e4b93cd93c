package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "portfolio-dashboard/internal/errors"
	"portfolio-dashboard/internal/portfolio"
	"portfolio-dashboard/internal/store"
	"portfolio-dashboard/internal/tableview"
)

// addViewCommands adds the read-only dashboard views.
func addViewCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newSummaryCmd(app))
	rootCmd.AddCommand(newTableCmd(app))
	rootCmd.AddCommand(newColumnsCmd(app))
}

func tableIDList() string {
	ids := make([]string, len(tableview.TableIDs))
	for i, id := range tableview.TableIDs {
		ids[i] = string(id)
	}
	return strings.Join(ids, ", ")
}

func parseTableArg(arg string) (tableview.TableID, error) {
	id, ok := tableview.ParseTableID(arg)
	if !ok {
		return "", apperrors.Wrapf(apperrors.ErrUnknownTable, "%q (want one of %s)", arg, tableIDList())
	}
	return id, nil
}

type summaryJSON struct {
	portfolio.Summary
	Allocation map[portfolio.BucketKind]float64 `json:"allocation"`
	Prices     store.DataFreshness              `json:"prices"`
}

func newSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show portfolio totals by asset class",
		Long: `Show the total portfolio value and each bucket: fixed deposits, mutual
funds (primary owner and family), Indian and US equity, and gold.

US holdings are converted to INR at the live USDINR rate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			app.loadPrices(cmd, output)

			p := app.Store.Portfolio()
			sum := app.Aggregator.Summary(p)
			alloc := allocation(sum)
			fresh := app.Store.Freshness(store.SyncTypePrices, time.Now())

			if output.IsJSON() {
				return output.JSON(summaryJSON{Summary: sum, Allocation: alloc, Prices: fresh})
			}

			if len(sum.Buckets) == 0 {
				output.Info("No holdings yet. Add one with 'portfolio add <fd|mf|stock|gold> --set key=value ...'")
				return nil
			}

			var lines []string
			for _, c := range sum.Cards {
				if !c.Present {
					continue
				}
				lines = append(lines, fmt.Sprintf("%s %-16s %16s  %s  %s",
					c.Icon, c.Title, FormatIndianCurrency(c.Current),
					output.FormatPnL(c.GainLoss), output.FormatPercent(c.ReturnPct)))
			}
			output.Box("Portfolio Summary", lines)
			output.Println()

			table := NewTable(output, "Bucket", "Holdings", "Invested", "Current", "Gain / Loss", "Return", "Allocation")
			for i := 2; i <= 6; i++ {
				table.AlignRight(i)
			}
			for _, b := range sum.Buckets {
				table.AddRow(
					b.Icon+" "+b.Label,
					fmt.Sprintf("%d", b.Count),
					FormatIndianCurrency(b.Invested),
					FormatIndianCurrency(b.Current),
					output.FormatPnL(b.GainLoss),
					output.FormatPercent(b.ReturnPct),
					fmt.Sprintf("%.1f%%", alloc[b.Kind]),
				)
			}
			table.AddRow(
				output.BoldText("Total"),
				"",
				output.BoldText(FormatIndianCurrency(sum.Total.Invested)),
				output.BoldText(FormatIndianCurrency(sum.Total.Current)),
				output.FormatPnL(sum.Total.GainLoss),
				output.FormatPercent(sum.Total.ReturnPct),
				"100.0%",
			)
			table.Render()
			output.Println()

			output.Dim("USDINR %.2f · %s", sum.USDINR, store.FormatFreshness(fresh))
			return nil
		},
	}
}

// allocation returns each bucket's share of current value in percent.
func allocation(sum portfolio.Summary) map[portfolio.BucketKind]float64 {
	out := make(map[portfolio.BucketKind]float64, len(sum.Buckets))
	for _, b := range sum.Buckets {
		if sum.Total.Current > 0 {
			out[b.Kind] = b.Current / sum.Total.Current * 100
		} else {
			out[b.Kind] = 0
		}
	}
	return out
}

func newTableCmd(app *App) *cobra.Command {
	var (
		search string
		filter string
		sortBy string
		asc    bool
		desc   bool
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "table <id>",
		Short: "Show one holdings table",
		Long: fmt.Sprintf(`Show one holdings table with search, gain/loss filter, and sort.

Tables: %s

The '#' column is the holding's index, used by update and delete.
Use --save to remember the sort, search, and filter for next time.`, tableIDList()),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			id, err := parseTableArg(args[0])
			if err != nil {
				return err
			}

			state := app.States.Get(id)
			if cmd.Flags().Changed("search") {
				state.Query = search
			}
			if cmd.Flags().Changed("filter") {
				cat, ok := tableview.ParseCategory(filter)
				if !ok {
					return apperrors.NewValidationError("filter", filter, "must be all, gain, or loss")
				}
				state.Category = cat
			}
			if sortBy != "" {
				if !sortable(id, sortBy) {
					return apperrors.NewValidationError("sort", sortBy, "not a column of "+string(id))
				}
				state.ToggleSort(sortBy)
			}
			switch {
			case asc:
				state.Asc = true
			case desc:
				state.Asc = false
			}

			if save {
				app.States.Update(id, func(s *tableview.ViewState) { *s = state })
				if err := app.Store.SaveViewStates(cmd.Context(), app.States); err != nil {
					return err
				}
			}

			app.loadPrices(cmd, output)
			res := app.Model.Table(id, app.Store.Portfolio(), state)

			if output.IsJSON() {
				return output.JSON(res)
			}
			renderTable(output, res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive substring match over every field")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "gain/loss filter: all, gain, loss")
	cmd.Flags().StringVar(&sortBy, "sort", "", "column key to sort by; repeating the saved column reverses it")
	cmd.Flags().BoolVar(&asc, "asc", false, "sort ascending")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&save, "save", false, "remember this view")
	cmd.MarkFlagsMutuallyExclusive("asc", "desc")
	return cmd
}

func sortable(id tableview.TableID, key string) bool {
	for _, c := range tableview.ColumnsFor(id) {
		if c.Key == key && c.Key != tableview.ColActions {
			return true
		}
	}
	return false
}

func renderTable(output *Output, res tableview.Result) {
	if res.NoData() {
		output.Info("No holdings in %s yet.", res.Table)
		return
	}
	if res.NoResults() {
		output.Warning("No holdings match the current search and filter (0 of %d).", res.Total)
		return
	}

	currency := "INR"
	if res.Table.Foreign() {
		currency = "USD"
	}

	// Actions render first as the row index.
	cols := make([]tableview.Column, 0, len(res.Columns))
	positions := make([]int, 0, len(res.Columns))
	for i, c := range res.Columns {
		if c.Key == tableview.ColActions {
			cols = append([]tableview.Column{c}, cols...)
			positions = append([]int{i}, positions...)
			continue
		}
		cols = append(cols, c)
		positions = append(positions, i)
	}

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Label
		if c.Key == tableview.ColActions {
			headers[i] = "#"
		}
	}
	table := NewTable(output, headers...)
	for i, c := range cols {
		switch c.Kind {
		case tableview.KindAmount, tableview.KindAmountINR, tableview.KindPercent,
			tableview.KindUnits, tableview.KindLivePrice, tableview.KindGainLoss, tableview.KindRate:
			table.AlignRight(i)
		}
	}

	for _, row := range res.Rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = output.FormatCell(c, row.Cells[positions[i]], currency, row.Valuation.IsLive)
		}
		table.AddRow(cells...)
	}
	table.Render()
	output.Dim("Showing %d of %d", res.Matched, res.Total)
}

func newColumnsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns <id> [show|hide <key> | reset]",
		Short: "List or change visible columns of a table",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			id, err := parseTableArg(args[0])
			if err != nil {
				return err
			}

			if len(args) > 1 {
				if err := changeColumns(id, args[1:], app); err != nil {
					return err
				}
				if err := app.Store.SaveViewStates(cmd.Context(), app.States); err != nil {
					return err
				}
			}

			state := app.States.Get(id)
			type columnJSON struct {
				Key     string `json:"key"`
				Label   string `json:"label"`
				Visible bool   `json:"visible"`
			}
			var cols []columnJSON
			for _, c := range tableview.ColumnsFor(id) {
				cols = append(cols, columnJSON{Key: c.Key, Label: c.Label, Visible: state.IsVisible(c.Key)})
			}

			if output.IsJSON() {
				return output.JSON(cols)
			}
			table := NewTable(output, "Key", "Label", "Visible")
			for _, c := range cols {
				mark := output.Green("✓")
				if !c.Visible {
					mark = output.DimText("hidden")
				}
				table.AddRow(c.Key, c.Label, mark)
			}
			table.Render()
			return nil
		},
	}
	return cmd
}

func changeColumns(id tableview.TableID, args []string, app *App) error {
	switch args[0] {
	case "reset":
		app.States.Update(id, func(s *tableview.ViewState) { s.Columns = nil })
		return nil
	case "show", "hide":
		if len(args) != 2 {
			return apperrors.NewValidationError("column", "", "missing column key")
		}
		key := args[1]
		known := make([]string, 0)
		found := false
		for _, c := range tableview.ColumnsFor(id) {
			known = append(known, c.Key)
			if c.Key == key {
				found = true
			}
		}
		if !found {
			sort.Strings(known)
			return apperrors.NewValidationError("column", key, "unknown; columns are "+strings.Join(known, ", "))
		}
		if key == tableview.ColActions && args[0] == "hide" {
			return apperrors.NewValidationError("column", key, "the actions column cannot be hidden")
		}
		app.States.Update(id, func(s *tableview.ViewState) { s.SetColumnVisible(key, args[0] == "show") })
		return nil
	}
	return apperrors.NewValidationError("action", args[0], "must be show, hide, or reset")
}
