// Package sheets reads and writes cell values through the Google Sheets API.
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/redoffice/internal/connectors/google"
	"github.com/custodia-labs/redoffice/internal/core/domain"
	"github.com/custodia-labs/redoffice/internal/core/ports/driven"
)

// Value input options.
const (
	// InputRaw stores values as-is.
	InputRaw = "RAW"
	// InputUserEntered parses values as if typed into the UI.
	InputUserEntered = "USER_ENTERED"
)

// ReadOptions controls how values are rendered on read. Empty fields keep
// the API defaults (ROWS, FORMATTED_VALUE, SERIAL_NUMBER).
type ReadOptions struct {
	MajorDimension       string
	ValueRenderOption    string
	DateTimeRenderOption string
}

// Values performs cell value operations for one session.
type Values struct {
	svc    *sheets.Service
	logger driven.Logger
}

// New creates a Values client.
func New(svc *sheets.Service, logger driven.Logger) *Values {
	if logger == nil {
		logger = driven.NopLogger{}
	}
	return &Values{svc: svc, logger: logger}
}

// Get reads one range. A bare sheet name reads the whole sheet.
func (v *Values) Get(ctx context.Context, spreadsheetID, readRange string, opts ReadOptions) (*sheets.ValueRange, error) {
	if err := requireIDs(spreadsheetID, readRange); err != nil {
		return nil, err
	}

	call := v.svc.Spreadsheets.Values.Get(spreadsheetID, readRange)
	if opts.MajorDimension != "" {
		call = call.MajorDimension(opts.MajorDimension)
	}
	if opts.ValueRenderOption != "" {
		call = call.ValueRenderOption(opts.ValueRenderOption)
	}
	if opts.DateTimeRenderOption != "" {
		call = call.DateTimeRenderOption(opts.DateTimeRenderOption)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get values: %w", google.WrapError(err))
	}
	return resp, nil
}

// BatchGet reads several ranges in one call.
func (v *Values) BatchGet(
	ctx context.Context,
	spreadsheetID string,
	ranges []string,
	opts ReadOptions,
) (*sheets.BatchGetValuesResponse, error) {
	if spreadsheetID == "" || len(ranges) == 0 {
		return nil, fmt.Errorf("%w: spreadsheet id and at least one range are required", domain.ErrInvalidInput)
	}

	call := v.svc.Spreadsheets.Values.BatchGet(spreadsheetID).Ranges(ranges...)
	if opts.MajorDimension != "" {
		call = call.MajorDimension(opts.MajorDimension)
	}
	if opts.ValueRenderOption != "" {
		call = call.ValueRenderOption(opts.ValueRenderOption)
	}
	if opts.DateTimeRenderOption != "" {
		call = call.DateTimeRenderOption(opts.DateTimeRenderOption)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("batch get values: %w", google.WrapError(err))
	}
	return resp, nil
}

// Update overwrites the cells of one range.
func (v *Values) Update(
	ctx context.Context,
	spreadsheetID, writeRange, inputOption string,
	values [][]any,
) (*sheets.UpdateValuesResponse, error) {
	if err := requireIDs(spreadsheetID, writeRange); err != nil {
		return nil, err
	}

	resp, err := v.svc.Spreadsheets.Values.Update(spreadsheetID, writeRange, &sheets.ValueRange{Values: values}).
		ValueInputOption(inputOptionOrDefault(inputOption)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("update values: %w", google.WrapError(err))
	}

	v.logger.Info("Updated %d cells in %s", resp.UpdatedCells, resp.UpdatedRange)
	return resp, nil
}

// BatchUpdate overwrites several ranges in one call.
func (v *Values) BatchUpdate(
	ctx context.Context,
	spreadsheetID, inputOption string,
	data []*sheets.ValueRange,
) (*sheets.BatchUpdateValuesResponse, error) {
	if spreadsheetID == "" || len(data) == 0 {
		return nil, fmt.Errorf("%w: spreadsheet id and at least one range are required", domain.ErrInvalidInput)
	}
	for i, d := range data {
		if d == nil || d.Range == "" {
			return nil, fmt.Errorf("%w: data[%d] has no range", domain.ErrInvalidInput, i)
		}
	}

	resp, err := v.svc.Spreadsheets.Values.BatchUpdate(spreadsheetID, &sheets.BatchUpdateValuesRequest{
		Data:             data,
		ValueInputOption: inputOptionOrDefault(inputOption),
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("batch update values: %w", google.WrapError(err))
	}

	v.logger.Info("Updated %d cells across %d ranges", resp.TotalUpdatedCells, len(data))
	return resp, nil
}

// Append adds rows after the table found in appendRange.
func (v *Values) Append(
	ctx context.Context,
	spreadsheetID, appendRange, inputOption string,
	values [][]any,
) (*sheets.AppendValuesResponse, error) {
	if err := requireIDs(spreadsheetID, appendRange); err != nil {
		return nil, err
	}

	resp, err := v.svc.Spreadsheets.Values.Append(spreadsheetID, appendRange, &sheets.ValueRange{Values: values}).
		ValueInputOption(inputOptionOrDefault(inputOption)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("append values: %w", google.WrapError(err))
	}
	return resp, nil
}

func requireIDs(spreadsheetID, a1Range string) error {
	if spreadsheetID == "" || a1Range == "" {
		return fmt.Errorf("%w: spreadsheet id and range are required", domain.ErrInvalidInput)
	}
	return nil
}

func inputOptionOrDefault(opt string) string {
	if opt == "" {
		return InputUserEntered
	}
	return opt
}
