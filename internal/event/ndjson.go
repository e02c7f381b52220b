package event

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ReadNDJSON decodes newline-delimited JSON event records from r. Blank lines
// are skipped; a malformed line fails the whole read with its line number.
func ReadNDJSON(r io.Reader) ([]*Record, error) {
	var records []*Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, &rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
