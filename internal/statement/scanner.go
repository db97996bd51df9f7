package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// DecodeShiftJIS converts statement bytes to UTF-8, rejecting input the
// Shift-JIS decoder cannot represent. The decoder substitutes U+FFFD for
// invalid byte sequences rather than failing, and Shift-JIS itself cannot
// encode U+FFFD, so any replacement rune in the output marks bad input.
func DecodeShiftJIS(data []byte) (string, error) {
	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	text := string(decoded)
	for _, r := range text {
		if r == utf8.RuneError {
			return "", ErrDecode
		}
	}
	return text, nil
}

// Scanner walks statement rows one record at a time. Construction decodes
// the whole input up front so encoding problems surface before any row is
// handed out.
type Scanner struct {
	reader  *csv.Reader
	service string
	file    string
	record  Record
	card    string
	skipped int
	err     error
	done    bool
}

// NewScanner prepares a scanner over a Shift-JIS statement export. The
// service and file labels are stamped onto every record produced.
func NewScanner(r io.Reader, service, file string) (*Scanner, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}
	decoded, err := DecodeShiftJIS(raw)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return &Scanner{reader: reader, service: service, file: file}, nil
}

// Scan advances to the next transaction record. It returns false at end of
// input or on a read error, which Err reports.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}
	for {
		fields, err := s.reader.Read()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = fmt.Errorf("read statement row: %w", err)
			}
			s.done = true
			return false
		}
		if isBlank(fields) {
			continue
		}
		if IsCardMarker(fields) {
			s.card = strings.TrimSpace(fields[1])
			continue
		}
		record, ok := s.buildRecord(fields)
		if !ok {
			s.skipped++
			continue
		}
		s.record = record
		return true
	}
}

// Record returns the record produced by the last successful Scan.
func (s *Scanner) Record() Record {
	return s.record
}

// Skipped reports how many malformed rows were passed over so far.
func (s *Scanner) Skipped() int {
	return s.skipped
}

// Err returns the first read error encountered, if any.
func (s *Scanner) Err() error {
	return s.err
}

// buildRecord maps one CSV row onto a Record. Rows normally hold
// [date, store, price, payment] with an optional trailing note. Some
// exports split the store name across extra middle columns; those fold
// back into a single store value.
func (s *Scanner) buildRecord(fields []string) (Record, bool) {
	if len(fields) < 4 {
		return Record{}, false
	}

	priceIdx, paymentIdx := 2, 3
	noteIdx := -1
	if len(fields) >= 5 {
		priceIdx = len(fields) - 3
		paymentIdx = len(fields) - 2
		noteIdx = len(fields) - 1
	}

	var storeParts []string
	for _, part := range fields[1:priceIdx] {
		if cleaned := NormalizeText(part); cleaned != "" {
			storeParts = append(storeParts, cleaned)
		}
	}

	usedAt, err := ParseDate(fields[0])
	if err != nil {
		return Record{}, false
	}
	price, err := ParseAmount(fields[priceIdx])
	if err != nil {
		return Record{}, false
	}
	payment, err := ParseAmount(fields[paymentIdx])
	if err != nil {
		return Record{}, false
	}

	note := ""
	if noteIdx >= 0 {
		note = NormalizeText(fields[noteIdx])
	}

	return Record{
		UsedAt:     usedAt,
		Store:      strings.Join(storeParts, ", "),
		Price:      price,
		Payment:    payment,
		Note:       note,
		Service:    s.service,
		File:       s.file,
		CardNumber: s.card,
	}, true
}

func isBlank(fields []string) bool {
	for _, field := range fields {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
