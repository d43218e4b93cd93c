package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	apperrors "portfolio-dashboard/internal/errors"
	"portfolio-dashboard/internal/models"
	"portfolio-dashboard/internal/store"
)

// addDataCommands adds export, import, and remote sync.
func addDataCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newExportCmd(app))
	rootCmd.AddCommand(newImportCmd(app))
	rootCmd.AddCommand(newSyncCmd(app))
}

// marshalCSV encodes one asset class of p with a header row.
func marshalCSV(p *models.Portfolio, class models.AssetClass) (string, error) {
	switch class {
	case models.ClassFixedDeposit:
		return gocsv.MarshalString(&p.FixedDeposits)
	case models.ClassMutualFund:
		return gocsv.MarshalString(&p.MutualFunds)
	case models.ClassStock:
		return gocsv.MarshalString(&p.Stocks)
	case models.ClassGold:
		return gocsv.MarshalString(&p.Gold)
	}
	return "", apperrors.ErrUnknownAssetClass
}

// unmarshalCSV decodes rows of one asset class. Every row is validated.
func unmarshalCSV(data []byte, class models.AssetClass) ([]models.Holding, error) {
	var out []models.Holding
	collect := func(n int, at func(int) models.Holding) {
		for i := 0; i < n; i++ {
			out = append(out, at(i))
		}
	}
	var err error
	switch class {
	case models.ClassFixedDeposit:
		var rows []models.FixedDeposit
		err = gocsv.UnmarshalBytes(data, &rows)
		collect(len(rows), func(i int) models.Holding { return rows[i] })
	case models.ClassMutualFund:
		var rows []models.MutualFund
		err = gocsv.UnmarshalBytes(data, &rows)
		collect(len(rows), func(i int) models.Holding { return rows[i] })
	case models.ClassStock:
		var rows []models.Stock
		err = gocsv.UnmarshalBytes(data, &rows)
		collect(len(rows), func(i int) models.Holding { return rows[i] })
	case models.ClassGold:
		var rows []models.Gold
		err = gocsv.UnmarshalBytes(data, &rows)
		collect(len(rows), func(i int) models.Holding { return rows[i] })
	default:
		return nil, apperrors.ErrUnknownAssetClass
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "decode csv")
	}
	for i, h := range out {
		if err := models.ValidateHolding(h); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return out, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func newExportCmd(app *App) *cobra.Command {
	var format, classArg, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the portfolio as JSON or CSV",
		Long: `Export the portfolio. JSON carries every asset class in the persisted
layout and can be imported again. CSV exports a single asset class.`,
		Example: `  portfolio export > backup.json
  portfolio export --format csv --class mf --out funds.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := app.Store.Portfolio()

			var data []byte
			switch format {
			case "json":
				b, err := json.MarshalIndent(p, "", "  ")
				if err != nil {
					return err
				}
				data = append(b, '\n')
			case "csv":
				if classArg == "" {
					return apperrors.NewValidationError("class", "", "required for csv export")
				}
				class, err := parseClassArg(classArg)
				if err != nil {
					return err
				}
				s, err := marshalCSV(p, class)
				if err != nil {
					return err
				}
				data = []byte(s)
			default:
				return apperrors.NewValidationError("format", format, "must be json or csv")
			}

			if err := writeOutput(cmd, out, data); err != nil {
				return err
			}
			if out != "" && out != "-" {
				NewOutput(cmd).Success("✓ Exported to %s", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "export format: json or csv")
	cmd.Flags().StringVar(&classArg, "class", "", "asset class for csv export (fd, mf, stock, gold)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	var format, classArg string
	var yes bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import holdings from a JSON or CSV file",
		Long: `Import a portfolio. A JSON file replaces the whole portfolio; it may be
an object keyed by asset class or a flat array whose records are classified
by their fields. A CSV file appends rows to one asset class.`,
		Example: `  portfolio import backup.json --yes
  portfolio import funds.csv --format csv --class mf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			switch format {
			case "json":
				p, err := store.DecodePortfolio(data)
				if err != nil {
					return err
				}
				counts := make(map[models.AssetClass]int, len(models.AssetClasses))
				for _, class := range models.AssetClasses {
					counts[class] = p.Len(class)
				}
				if !yes {
					if output.IsJSON() {
						return output.JSON(map[string]any{"imported": false, "counts": counts})
					}
					output.Warning("This will replace the current portfolio with:")
					for _, class := range models.AssetClasses {
						output.Printf("  %-14s %d\n", class.Label(), counts[class])
					}
					output.Warning("Use --yes to confirm")
					return nil
				}
				if err := app.Store.Replace(cmd.Context(), p); err != nil {
					return err
				}
				if output.IsJSON() {
					return output.JSON(map[string]any{"imported": true, "counts": counts})
				}
				output.Success("✓ Imported %d holdings from %s", len(p.All()), args[0])

			case "csv":
				class, err := parseClassArg(classArg)
				if err != nil {
					return err
				}
				rows, err := unmarshalCSV(data, class)
				if err != nil {
					return err
				}
				next := app.Store.Portfolio()
				for _, h := range rows {
					if _, err := next.Append(h); err != nil {
						return err
					}
				}
				if err := app.Store.Replace(cmd.Context(), next); err != nil {
					return err
				}
				if output.IsJSON() {
					return output.JSON(map[string]any{"imported": true, "class": class, "rows": len(rows)})
				}
				output.Success("✓ Added %d %s holdings from %s", len(rows), class.Label(), args[0])

			default:
				return apperrors.NewValidationError("format", format, "must be json or csv")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "file format: json or csv")
	cmd.Flags().StringVar(&classArg, "class", "", "asset class of csv rows (fd, mf, stock, gold)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "replace without asking (json)")
	return cmd
}

func newSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push the portfolio to GitHub",
		Long: `Commit the portfolio JSON to the GitHub repository configured in
credentials.toml (or GITHUB_TOKEN and GITHUB_REPO). The file is created when
it does not exist yet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			res, err := app.Syncer.Push(cmd.Context(), app.Store.Portfolio())
			if err != nil {
				if apperrors.Is(err, apperrors.ErrSyncNotConfigured) && !output.IsJSON() {
					output.Error("GitHub sync is not configured. Set token and repo in %s/credentials.toml", app.Config.Dir())
				}
				return err
			}
			if err := app.Store.MarkSynced(store.SyncTypeRemote, res.PushedAt); err != nil {
				app.Logger.Warn().Err(err).Msg("Failed to record sync time")
			}

			if output.IsJSON() {
				return output.JSON(res)
			}
			verb := "Updated"
			if res.Created {
				verb = "Created"
			}
			output.Success("✓ %s %s in %s", verb, res.Path, res.Repo)
			output.Dim("Commit %s at %s", shortSHA(res.CommitSHA), FormatDateTime(res.PushedAt))
			return nil
		},
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
