/*
Package csv reads input records from CSV streams and writes scored
records back as CSV.
*/
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/antoniomachine/bigml/dataset"
	"github.com/antoniomachine/bigml/field"
)

// Undefined is the cell value that marks a missing value, as an empty cell does.
const Undefined = "?"

/*
Writer is an interface for a destination to which records
can be written to.
*/
type Writer interface {
	// Write will attempt to write the given records
	// and will return the actually written number of
	// records and an error (if not all records could
	// be written)
	Write(context.Context, []dataset.Record) (int, error)
	// Count returns the total number of records written
	// to the writer
	Count() int
	// Flush ensures any pending written operations finish
	// before returning. It returns an error if that cannot
	// be ensured.
	Flush() error
}

type csvWriter struct {
	count   int
	columns []string
	w       *csv.Writer
}

/*
ReadRecords takes an io.Reader for a CSV stream, the fields of a model
(which may be nil) and a lambda function on an integer and a
dataset.Record that returns a boolean value. It parses the records from
the reader and for each it calls the lambda function with the record and
its index as parameters. If the lambda function returns true, it will
continue processing the next record, otherwise it will stop. An error is
returned if something goes wrong when reading the stream or parsing a
record.

The header or first row of the CSV content names the column of every
value, by field name or id. Cells holding the '?' string or nothing are
missing values and left out of the record. Values of numeric fields are
parsed as numbers; any other value is kept as a string.
*/
func ReadRecords(reader io.Reader, fields field.Fields, lambda func(int, dataset.Record) (bool, error)) error {
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %v", err)
	}
	for l := 2; ; l++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading body: %v", err)
		}
		record, err := parseRecordFromCSVRow(header, row, fields)
		if err != nil {
			return fmt.Errorf("parsing line %d: %v", l, err)
		}
		ok, err := lambda(l-2, record)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

/*
ReadRecordsFromFilePath takes a filepath string for a CSV stream, the
fields of a model and a lambda function, opens the file for reading (if
the filepath is "" os.Stdin is used instead) and reads its records with
ReadRecords.
*/
func ReadRecordsFromFilePath(filepath string, fields field.Fields, lambda func(int, dataset.Record) (bool, error)) error {
	f, err := dataset.Open(filepath)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReadRecords(f, fields, lambda)
}

func parseRecordFromCSVRow(header, row []string, fields field.Fields) (dataset.Record, error) {
	record := dataset.Record{}
	for i, column := range header {
		v := row[i]
		if v == "" || v == Undefined {
			continue
		}
		if id, ok := fields.IDFor(column); ok && fields[id].Optype == field.Numeric {
			n, err := field.ToFloat(v)
			if err != nil {
				return nil, fmt.Errorf("column %s: %v", column, err)
			}
			record[column] = n
			continue
		}
		record[column] = v
	}
	return record, nil
}

/*
NewWriter takes an io.Writer and the columns to write and returns a
Writer that will write any records on the io.Writer, after a header row
with the column names.
*/
func NewWriter(writer io.Writer, columns []string) (Writer, error) {
	w := csv.NewWriter(writer)
	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("writing CSV header: %v", err)
	}
	return &csvWriter{columns: columns, w: w}, nil
}

func (cw *csvWriter) Count() int {
	return cw.count
}

func (cw *csvWriter) Write(ctx context.Context, records []dataset.Record) (int, error) {
	for n, r := range records {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := cw.writeRecord(r); err != nil {
			return n, err
		}
	}
	return len(records), nil
}

func (cw *csvWriter) writeRecord(r dataset.Record) error {
	row := make([]string, len(cw.columns))
	for j, c := range cw.columns {
		v := r[c]
		if v == nil {
			row[j] = Undefined
		} else {
			row[j] = fmt.Sprintf("%v", v)
		}
	}
	if err := cw.w.Write(row); err != nil {
		return fmt.Errorf("writing CSV row for record %d: %v", cw.count+1, err)
	}
	cw.count++
	return nil
}

func (cw *csvWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}
