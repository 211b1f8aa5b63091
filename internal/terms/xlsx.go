package terms

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/ucsname/internal/common"
	"github.com/Veraticus/ucsname/internal/model"
)

// LoadXLSX reads the term dataset from a workbook. An empty sheet name
// selects the first sheet. Column semantics match Load.
func (t *Table) LoadXLSX(r io.Reader, sheet string) ([]model.TermRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		t.reset()
		return nil, common.NewFormatError(datasetName, err, "unreadable workbook")
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			common.LogError(closeErr, "Failed to close workbook", nil)
		}
	}()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			t.reset()
			return nil, common.NewFormatError(datasetName, common.ErrEmptyDataset, "workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.reset()
		return nil, common.NewFormatError(datasetName, err, fmt.Sprintf("sheet %q", sheet))
	}

	return t.loadRows(rows)
}
