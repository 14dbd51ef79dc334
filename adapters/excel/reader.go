package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gorepness/domain/core"
	"gorepness/domain/votes"
	"gorepness/internal"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: internal.DefaultLogger.Component("DataReader")}
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	r.logger.Debug("reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcelData reads the first sheet of the workbook
func (r *DataReader) readExcelData() (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	r.logger.Debug("sheet %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("Excel file must have a header row")
	}

	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.logger.Debug("CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("CSV file must have a header row")
	}

	return r.processRows(rows)
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		rowData := make(RawRowData, len(headers))
		for j, cell := range rows[i] {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Debug("%s file processed (%d columns, %d rows)", strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ExcelData{Headers: headers, Rows: dataRows}, nil
}

// ReadVotes reads a votes export. Rows with a missing participant, an
// unparseable statement id or a vote outside {-1,0,1} are skipped.
func (r *DataReader) ReadVotes() ([]votes.Record, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}

	pidCol, err := data.findColumn(participantColumns)
	if err != nil {
		return nil, err
	}
	tidCol, err := data.findColumn(statementColumns)
	if err != nil {
		return nil, err
	}
	voteCol, err := data.findColumn(voteColumns)
	if err != nil {
		return nil, err
	}

	records := make([]votes.Record, 0, len(data.Rows))
	skipped := 0
	for _, row := range data.Rows {
		pid := row[pidCol]
		tid, tidErr := core.ParseStatementID(row[tidCol])
		raw, voteErr := strconv.ParseFloat(row[voteCol], 64)
		if pid == "" || tidErr != nil || voteErr != nil {
			skipped++
			continue
		}
		v, err := votes.ParseVote(int64(raw))
		if err != nil || float64(int64(raw)) != raw {
			skipped++
			continue
		}
		records = append(records, votes.Record{ParticipantID: core.ParticipantID(pid), StatementID: tid, Vote: v})
	}

	if skipped > 0 {
		r.logger.Warn("skipped %d invalid vote rows in %s", skipped, r.filePath)
	}
	r.logger.Info("loaded %d votes from %s", len(records), r.filePath)
	return records, nil
}

// ReadStatements reads a comments export
func (r *DataReader) ReadStatements() ([]votes.Statement, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}

	tidCol, err := data.findColumn(statementColumns)
	if err != nil {
		return nil, err
	}
	textCol, _ := data.findColumn(textColumns)
	modCol, _ := data.findColumn(moderatedColumns)

	statements := make([]votes.Statement, 0, len(data.Rows))
	for _, row := range data.Rows {
		tid, err := core.ParseStatementID(row[tidCol])
		if err != nil {
			continue
		}
		s := votes.Statement{ID: tid}
		if textCol != "" {
			s.Text = row[textCol]
		}
		if modCol != "" {
			if mod, err := votes.ParseModeration(row[modCol]); err == nil {
				s.Moderation = mod
			}
		}
		statements = append(statements, s)
	}

	r.logger.Info("loaded %d statements from %s", len(statements), r.filePath)
	return statements, nil
}

// LabelAssignment pairs participants with their group labels, index aligned
type LabelAssignment struct {
	ParticipantIDs []core.ParticipantID
	Labels         []votes.GroupLabel
}

// ReadLabels reads a participant -> group file. A label column is used as
// is; a color_index column goes through LabelArrayWithOptionalUngrouped,
// where an empty cell means unassigned and -1 means unpainted.
func (r *DataReader) ReadLabels(includeUnpainted bool) (*LabelAssignment, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}

	pidCol, err := data.findColumn(participantColumns)
	if err != nil {
		return nil, err
	}

	out := &LabelAssignment{}
	if labelCol, err := data.findColumn(labelColumns); err == nil {
		for _, row := range data.Rows {
			if row[pidCol] == "" {
				continue
			}
			out.ParticipantIDs = append(out.ParticipantIDs, core.ParticipantID(row[pidCol]))
			out.Labels = append(out.Labels, votes.GroupLabel(row[labelCol]))
		}
		return out, nil
	}

	colorCol, err := data.findColumn(colorIndexColumns)
	if err != nil {
		return nil, fmt.Errorf("labels file needs a label or color_index column")
	}
	indices := make([]*int, 0, len(data.Rows))
	for _, row := range data.Rows {
		if row[pidCol] == "" {
			continue
		}
		out.ParticipantIDs = append(out.ParticipantIDs, core.ParticipantID(row[pidCol]))
		if n, err := strconv.Atoi(row[colorCol]); err == nil {
			indices = append(indices, &n)
		} else {
			indices = append(indices, nil)
		}
	}
	out.Labels = votes.LabelArrayWithOptionalUngrouped(indices, includeUnpainted)
	return out, nil
}

func (d *ExcelData) findColumn(candidates []string) (string, error) {
	for _, c := range candidates {
		for _, h := range d.Headers {
			if h == c {
				return h, nil
			}
		}
	}
	return "", fmt.Errorf("missing column, expected one of %s", strings.Join(candidates, ", "))
}
