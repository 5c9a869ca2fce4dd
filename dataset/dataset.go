/*
Package dataset reads the input records models are asked to score.
*/
package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

/*
Record is an input record: values keyed by field id or name. An absent
key and a nil value both mean the value is missing.
*/
type Record map[string]interface{}

/*
ReadJSONLines takes an io.Reader with one JSON object per line and a
lambda function on an integer and a Record that returns a boolean value.
It parses the records from the reader and for each it calls the lambda
function with the record and its index. If the lambda function returns
true, it will continue processing the next record, otherwise it will
stop. Blank lines are skipped. An error is returned if something goes
wrong when reading or parsing a line, or if the lambda returns one.
*/
func ReadJSONLines(reader io.Reader, lambda func(int, Record) (bool, error)) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var i int
	for l := 1; scanner.Scan(); l++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		r := Record{}
		if err := json.Unmarshal(line, &r); err != nil {
			return fmt.Errorf("parsing line %d: %v", l, err)
		}
		ok, err := lambda(i, r)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		i++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading records: %v", err)
	}
	return nil
}

/*
ReadJSONLinesFromFilePath takes a filepath string and a lambda function
and reads the records in the file with ReadJSONLines. If the filepath is
"" os.Stdin is used instead.
*/
func ReadJSONLinesFromFilePath(filepath string, lambda func(int, Record) (bool, error)) error {
	f, err := Open(filepath)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReadJSONLines(f, lambda)
}

/*
Open takes a filepath string and opens it for reading. If the filepath
is "" os.Stdin is returned instead.
*/
func Open(filepath string) (io.ReadCloser, error) {
	if filepath == "" {
		return os.Stdin, nil
	}
	f, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("opening records file: %v", err)
	}
	return f, nil
}
