// Package ingest converts uploaded tabular files into datasets the
// analysis engine consumes. It guarantees flat key-value records; all type
// interpretation happens downstream in the engine's field classifier.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"datalens/domain/analysis"
	apperrors "datalens/internal/errors"
)

// DataReader reads CSV, XLSX, or JSON files into records.
type DataReader struct {
	filePath string
	fileType string // "csv", "xlsx", or "json"
}

// NewDataReader creates a reader, inferring the format from the extension.
func NewDataReader(filePath string) *DataReader {
	fileType := "csv"
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xls":
		fileType = "xlsx"
	case ".json":
		fileType = "json"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// Read loads the file into an ordered dataset.
func (r *DataReader) Read() (analysis.Dataset, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, apperrors.Wrapf(err, "cannot open %s", r.filePath)
	}
	defer f.Close()

	switch r.fileType {
	case "csv":
		return ReadCSV(f)
	case "json":
		return ReadJSON(f)
	case "xlsx":
		return readExcel(f)
	default:
		return nil, apperrors.IngestFailed(fmt.Sprintf("unsupported file type: %s", r.fileType))
	}
}

// ReadCSV parses a header-first CSV stream into records. Cell values stay
// strings; the engine parses them per field.
func ReadCSV(reader io.Reader) (analysis.Dataset, error) {
	cr := csv.NewReader(reader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return analysis.Dataset{}, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read CSV header")
	}

	var ds analysis.Dataset
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to read CSV row")
		}
		record := make(analysis.DataPoint, len(header))
		for i, name := range header {
			if i < len(row) {
				record[name] = row[i]
			}
		}
		ds = append(ds, record)
	}
	return ds, nil
}

// ReadJSON parses either a top-level array of flat objects or an object
// with a "records" array.
func ReadJSON(reader io.Reader) (analysis.Dataset, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read JSON input")
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		var wrapped struct {
			Records []map[string]interface{} `json:"records"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, apperrors.Wrap(err, "JSON input is neither a record array nor a {records: [...]} object")
		}
		records = wrapped.Records
	}

	ds := make(analysis.Dataset, len(records))
	for i, rec := range records {
		ds[i] = analysis.DataPoint(rec)
	}
	return ds, nil
}

// readExcel reads the first sheet of an XLSX stream, first row as header.
func readExcel(reader io.Reader) (analysis.Dataset, error) {
	book, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open workbook")
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return analysis.Dataset{}, nil
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to read sheet %s", sheets[0])
	}
	if len(rows) == 0 {
		return analysis.Dataset{}, nil
	}

	header := rows[0]
	ds := make(analysis.Dataset, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(analysis.DataPoint, len(header))
		for i, name := range header {
			if i < len(row) {
				record[name] = row[i]
			}
		}
		ds = append(ds, record)
	}
	return ds, nil
}
