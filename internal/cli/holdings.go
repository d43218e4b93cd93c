package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	apperrors "portfolio-dashboard/internal/errors"
	"portfolio-dashboard/internal/models"
)

// addHoldingCommands adds the commands that change recorded holdings.
func addHoldingCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newAddCmd(app))
	rootCmd.AddCommand(newUpdateCmd(app))
	rootCmd.AddCommand(newDeleteCmd(app))
	rootCmd.AddCommand(newGoldValueCmd(app))
}

type mutationJSON struct {
	Class   models.AssetClass `json:"class"`
	Index   int               `json:"index"`
	Holding models.Holding    `json:"holding,omitempty"`
}

func parseClassArg(arg string) (models.AssetClass, error) {
	class, ok := models.ParseAssetClass(arg)
	if !ok {
		return "", apperrors.Wrapf(apperrors.ErrUnknownAssetClass, "%q (want fd, mf, stock or gold)", arg)
	}
	return class, nil
}

func parseIndexArg(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil || index < 0 {
		return 0, apperrors.NewValidationError("index", arg, "must be a non-negative integer")
	}
	return index, nil
}

func zeroHolding(class models.AssetClass) models.Holding {
	switch class {
	case models.ClassFixedDeposit:
		return models.FixedDeposit{Status: models.FDActive}
	case models.ClassMutualFund:
		return models.MutualFund{}
	case models.ClassStock:
		return models.Stock{Exchange: models.NSE}
	case models.ClassGold:
		return models.Gold{}
	}
	return nil
}

// fieldKinds maps every editable key of class to a sample value of its type.
// The gold override is edited with gold-value, not --set.
func fieldKinds(class models.AssetClass) map[string]any {
	kinds := make(map[string]any)
	for _, f := range zeroHolding(class).Fields() {
		kinds[f.Key] = f.Value
	}
	return kinds
}

// applySets merges key=value assignments onto base and decodes the result
// as a holding of class. Values are parsed by the type of the field they
// replace; unknown keys are rejected.
func applySets(class models.AssetClass, base models.Holding, sets []string) (models.Holding, error) {
	kinds := fieldKinds(class)
	raw := make(map[string]any)
	for _, f := range base.Fields() {
		raw[f.Key] = f.Value
	}

	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, apperrors.NewValidationError("set", set, "want key=value")
		}
		kind, known := kinds[key]
		if !known {
			return nil, apperrors.NewValidationError(key, value,
				fmt.Sprintf("unknown field for %s (want one of %s)", class, strings.Join(sortedKeys(kinds), ", ")))
		}
		v, err := coerce(kind, strings.TrimSpace(value))
		if err != nil {
			return nil, apperrors.NewValidationError(key, value, err.Error())
		}
		raw[key] = v
	}
	return models.DecodeAs(class, raw)
}

func coerce(kind any, value string) (any, error) {
	switch kind.(type) {
	case float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number")
		}
		return f, nil
	case int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("not a whole number")
		}
		return n, nil
	}
	return value, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func holdingAt(app *App, class models.AssetClass, index int) (models.Holding, error) {
	holdings := app.Store.Portfolio().Holdings(class)
	if index >= len(holdings) {
		return nil, apperrors.NewStoreError("get", string(class), index, apperrors.ErrIndexOutOfRange)
	}
	return holdings[index], nil
}

func printHolding(output *Output, h models.Holding) {
	for _, f := range h.Fields() {
		output.Printf("  %-20s %s\n", f.Key+":", models.FormatValue(f.Value))
	}
}

func newAddCmd(app *App) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "add <fd|mf|stock|gold>",
		Short: "Add a holding",
		Long: `Add a holding to the portfolio. Fields are given as key=value pairs and
use the persisted field names.

Examples:
  portfolio add mf --set name="HDFC Flexi Cap" --set schemeCode=100179 \
      --set owner=Self --set units=120.5 --set purchaseNAV=1400 --set invested=168700
  portfolio add stock --set symbol=AAPL --set exchange=NASDAQ --set units=10 \
      --set avgPrice=150 --set invested=1500
  portfolio add fd --set bank=SBI --set invested=100000 --set rate=7.1 \
      --set startDate=2025-01-01 --set maturityDate=2026-01-01 --set maturityValue=107100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			class, err := parseClassArg(args[0])
			if err != nil {
				return err
			}
			h, err := applySets(class, zeroHolding(class), sets)
			if err != nil {
				return err
			}
			index, err := app.Store.Add(cmd.Context(), class, h)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(mutationJSON{Class: class, Index: index, Holding: h})
			}
			output.Success("✓ Added %s #%d", class.Label(), index)
			printHolding(output, h)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field assignment key=value (repeatable)")
	return cmd
}

func newUpdateCmd(app *App) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "update <fd|mf|stock|gold> <index>",
		Short: "Edit fields of a holding",
		Long: `Edit a holding in place. Only the fields given with --set change; the
others, including a gold holding's manual value, are kept.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			class, err := parseClassArg(args[0])
			if err != nil {
				return err
			}
			index, err := parseIndexArg(args[1])
			if err != nil {
				return err
			}
			if len(sets) == 0 {
				return apperrors.NewValidationError("set", "", "nothing to update")
			}
			base, err := holdingAt(app, class, index)
			if err != nil {
				return err
			}
			h, err := applySets(class, base, sets)
			if err != nil {
				return err
			}
			// The override is not a --set field, so carry it over explicitly.
			if g, ok := base.(models.Gold); ok {
				updated := h.(models.Gold)
				updated.ManualCurrentValue = g.ManualCurrentValue
				h = updated
			}
			if err := app.Store.Update(cmd.Context(), class, index, h); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(mutationJSON{Class: class, Index: index, Holding: h})
			}
			output.Success("✓ Updated %s #%d", class.Label(), index)
			printHolding(output, h)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field assignment key=value (repeatable)")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <fd|mf|stock|gold> <index>",
		Aliases: []string{"rm"},
		Short:   "Delete a holding",
		Long:    "Delete a holding. Later holdings of the same class move down by one index.",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			class, err := parseClassArg(args[0])
			if err != nil {
				return err
			}
			index, err := parseIndexArg(args[1])
			if err != nil {
				return err
			}
			h, err := holdingAt(app, class, index)
			if err != nil {
				return err
			}

			if !yes {
				if output.IsJSON() {
					return output.JSON(map[string]any{"class": class, "index": index, "deleted": false, "holding": h})
				}
				output.Warning("This will delete %s #%d:", class.Label(), index)
				printHolding(output, h)
				output.Warning("Use --yes to confirm")
				return nil
			}

			removed, err := app.Store.Delete(cmd.Context(), class, index)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]any{"class": class, "index": index, "deleted": true, "holding": removed})
			}
			output.Success("✓ Deleted %s #%d", class.Label(), index)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

func newGoldValueCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "gold-value <index> <amount|clear>",
		Short: "Set or clear the manual current value of a gold holding",
		Long: `Physical gold has no market quote. Record its current value by hand;
the value replaces the price based valuation until cleared.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			index, err := parseIndexArg(args[0])
			if err != nil {
				return err
			}

			var value *float64
			if !strings.EqualFold(args[1], "clear") {
				v, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return apperrors.NewValidationError("manualCurrentValue", args[1], "not a number")
				}
				value = &v
			}
			if err := app.Store.SetGoldManualValue(cmd.Context(), index, value); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]any{"index": index, "manualCurrentValue": value})
			}
			if value == nil {
				output.Success("✓ Cleared manual value of gold #%d", index)
			} else {
				output.Success("✓ Gold #%d valued at %s", index, FormatIndianCurrency(*value))
			}
			return nil
		},
	}
}
