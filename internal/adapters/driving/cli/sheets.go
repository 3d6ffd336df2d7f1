package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/redoffice/internal/connectors/google"
	"github.com/custodia-labs/redoffice/internal/connectors/google/sheets"
	"github.com/custodia-labs/redoffice/internal/core/domain"
)

var sheetsCmd = &cobra.Command{
	Use:     "sheets",
	Aliases: []string{"spreadsheet"},
	Short:   "Read and write Google Sheets values",
	Long: `Read and write cell values in Google Sheets.

Values are JSON arrays of rows, e.g. [["Name", "Score"], ["Ada", 10]].
Batch updates take a JSON array of {"range": ..., "values": ...} objects.

Examples:
  redoffice sheets get <spreadsheet-id> "Sheet1!A1:C10"
  redoffice sheets batch-get <spreadsheet-id> "Sheet1!A1:B2" "Sheet2"
  redoffice sheets update <spreadsheet-id> "Sheet1!A1:A3" values.json
  redoffice sheets batch-update <spreadsheet-id> data.json
  echo '[["new row"]]' | redoffice sheets append <spreadsheet-id> Sheet1 -`,
}

var sheetsGetCmd = &cobra.Command{
	Use:   "get [spreadsheet-id] [range]",
	Short: "Read one range",
	Args:  cobra.ExactArgs(2),
	RunE:  runSheetsGet,
}

var sheetsBatchGetCmd = &cobra.Command{
	Use:   "batch-get [spreadsheet-id] [range...]",
	Short: "Read several ranges",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSheetsBatchGet,
}

var sheetsUpdateCmd = &cobra.Command{
	Use:   "update [spreadsheet-id] [range] [values.json|-]",
	Short: "Overwrite one range",
	Args:  cobra.ExactArgs(3),
	RunE:  runSheetsUpdate,
}

var sheetsBatchUpdateCmd = &cobra.Command{
	Use:   "batch-update [spreadsheet-id] [data.json|-]",
	Short: "Overwrite several ranges",
	Args:  cobra.ExactArgs(2),
	RunE:  runSheetsBatchUpdate,
}

var sheetsAppendCmd = &cobra.Command{
	Use:   "append [spreadsheet-id] [range] [values.json|-]",
	Short: "Append rows after a table",
	Args:  cobra.ExactArgs(3),
	RunE:  runSheetsAppend,
}

// Flags for sheets commands.
var (
	sheetsRead  sheets.ReadOptions
	sheetsInput string
)

func init() {
	for _, c := range []*cobra.Command{sheetsGetCmd, sheetsBatchGetCmd} {
		c.Flags().StringVar(&sheetsRead.MajorDimension, "major-dimension", "", "ROWS or COLUMNS")
		c.Flags().StringVar(&sheetsRead.ValueRenderOption, "value-render", "",
			"FORMATTED_VALUE, UNFORMATTED_VALUE or FORMULA")
		c.Flags().StringVar(&sheetsRead.DateTimeRenderOption, "datetime-render", "",
			"SERIAL_NUMBER or FORMATTED_STRING")
	}
	for _, c := range []*cobra.Command{sheetsUpdateCmd, sheetsBatchUpdateCmd, sheetsAppendCmd} {
		c.Flags().StringVar(&sheetsInput, "input", sheets.InputUserEntered, "RAW or USER_ENTERED")
	}

	sheetsCmd.AddCommand(sheetsGetCmd)
	sheetsCmd.AddCommand(sheetsBatchGetCmd)
	sheetsCmd.AddCommand(sheetsUpdateCmd)
	sheetsCmd.AddCommand(sheetsBatchUpdateCmd)
	sheetsCmd.AddCommand(sheetsAppendCmd)
	rootCmd.AddCommand(sheetsCmd)
}

// withValues runs fn with a Values client for a spreadsheet session.
func withValues(cmd *cobra.Command, fn func(v *sheets.Values) error) error {
	return withSession(cmd, domain.ServiceSpreadsheet, func(a *app, s *domain.Session) error {
		svc, err := google.SheetsFrom(s)
		if err != nil {
			return err
		}
		return fn(sheets.New(svc, a.logger))
	})
}

// readRows decodes a JSON array of rows.
func readRows(cmd *cobra.Command, path string) ([][]any, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	var rows [][]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: values JSON: %v", domain.ErrInvalidInput, err)
	}
	return rows, nil
}

func runSheetsGet(cmd *cobra.Command, args []string) error {
	return withValues(cmd, func(v *sheets.Values) error {
		resp, err := v.Get(cmd.Context(), args[0], args[1], sheetsRead)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), resp)
	})
}

func runSheetsBatchGet(cmd *cobra.Command, args []string) error {
	return withValues(cmd, func(v *sheets.Values) error {
		resp, err := v.BatchGet(cmd.Context(), args[0], args[1:], sheetsRead)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), resp)
	})
}

func runSheetsUpdate(cmd *cobra.Command, args []string) error {
	rows, err := readRows(cmd, args[2])
	if err != nil {
		return err
	}
	return withValues(cmd, func(v *sheets.Values) error {
		resp, err := v.Update(cmd.Context(), args[0], args[1], sheetsInput, rows)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), resp)
	})
}

func runSheetsBatchUpdate(cmd *cobra.Command, args []string) error {
	payload, err := readInput(cmd, args[1])
	if err != nil {
		return err
	}
	var data []*gsheets.ValueRange
	if err := json.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("%w: batch data JSON: %v", domain.ErrInvalidInput, err)
	}

	return withValues(cmd, func(v *sheets.Values) error {
		resp, err := v.BatchUpdate(cmd.Context(), args[0], sheetsInput, data)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), resp)
	})
}

func runSheetsAppend(cmd *cobra.Command, args []string) error {
	rows, err := readRows(cmd, args[2])
	if err != nil {
		return err
	}
	return withValues(cmd, func(v *sheets.Values) error {
		resp, err := v.Append(cmd.Context(), args[0], args[1], sheetsInput, rows)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), resp)
	})
}
