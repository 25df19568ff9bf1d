package export

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sgjt/gestao-forms/model"
	"github.com/xuri/excelize/v2"
)

const sheetResponses = "Respostas"

// WriteXLSX writes the same table as WriteCSV into a single sheet workbook
// with a bold header row.
func WriteXLSX(w io.Writer, form model.FormWithDetails, responses []model.ResponseWithAnswers, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetResponses); err != nil {
		return errors.Wrap(err, "rename sheet")
	}

	rows := [][]string{Header(form)}
	for _, r := range Submitted(responses) {
		rows = append(rows, Row(form, r, loc))
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "cell name")
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err = f.SetSheetRow(sheetResponses, cell, &values); err != nil {
			return errors.Wrap(err, "write row")
		}
	}

	last, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return errors.Wrap(err, "column name")
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "header style")
	}
	if err = f.SetCellStyle(sheetResponses, "A1", last+"1", headerStyle); err != nil {
		return errors.Wrap(err, "header style")
	}
	if err = f.SetColWidth(sheetResponses, "A", last, 24); err != nil {
		return errors.Wrap(err, "column width")
	}

	_, err = f.WriteTo(w)
	return errors.Wrap(err, "write xlsx")
}
