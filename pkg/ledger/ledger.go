// Package ledger defines the per-month amortization record and the sinks a
// simulation writes them to.
package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/shopspring/decimal"
)

// Header is the first line of every ledger.
const Header = constants.LedgerHeader

// ErrMalformedLine is returned when a ledger line cannot be parsed.
var ErrMalformedLine = errors.New("malformed ledger line")

// Record is one month of a mortgage's evolution.
type Record struct {
	Month               int     `json:"month"`
	MonthlyInterest     float64 `json:"monthlyInterest"`
	AmortizedLoan       float64 `json:"amortizedLoan"`
	PendingLoan         float64 `json:"pendingLoan"`
	Interest            float64 `json:"interest"`
	MonthlyPayment      float64 `json:"monthlyPayment"`
	AccumulatedInterest float64 `json:"accumulatedInterest"`
}

// Sink receives ledger records in month order. Close must be called once the
// simulation finishes, whether or not it succeeded.
type Sink interface {
	Write(Record) error
	Close() error
}

// FormatRecord renders a record as a ledger line without the trailing newline.
func FormatRecord(r Record) string {
	fields := []string{
		strconv.Itoa(r.Month),
		formatNumber(r.MonthlyInterest),
		formatNumber(r.AmortizedLoan),
		formatNumber(r.PendingLoan),
		formatNumber(r.Interest),
		formatNumber(r.MonthlyPayment),
		formatNumber(r.AccumulatedInterest),
	}
	return strings.Join(fields, constants.LedgerSeparator)
}

// formatNumber renders the shortest decimal that round-trips to v.
func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).String()
}

// ParseRecord parses a single ledger line.
func ParseRecord(line string) (Record, error) {
	fields := strings.Split(strings.TrimSpace(line), constants.LedgerSeparator)
	if len(fields) != 7 {
		return Record{}, fmt.Errorf("%w: expected 7 fields, got %d", ErrMalformedLine, len(fields))
	}

	month, err := strconv.Atoi(fields[0])
	if err != nil {
		return Record{}, fmt.Errorf("%w: month %q: %v", ErrMalformedLine, fields[0], err)
	}

	values := make([]float64, 6)
	for i, field := range fields[1:] {
		d, err := decimal.NewFromString(field)
		if err != nil {
			return Record{}, fmt.Errorf("%w: field %d %q: %v", ErrMalformedLine, i+1, field, err)
		}
		values[i] = d.InexactFloat64()
	}

	return Record{
		Month:               month,
		MonthlyInterest:     values[0],
		AmortizedLoan:       values[1],
		PendingLoan:         values[2],
		Interest:            values[3],
		MonthlyPayment:      values[4],
		AccumulatedInterest: values[5],
	}, nil
}

// Read parses a complete ledger, header included.
func Read(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: missing header", ErrMalformedLine)
	}
	if header := strings.TrimSpace(scanner.Text()); header != Header {
		return nil, fmt.Errorf("%w: unexpected header %q", ErrMalformedLine, header)
	}

	var records []Record
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		record, err := ParseRecord(line)
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
	return records, scanner.Err()
}

// WriterSink writes the ledger text format to an io.Writer. The header is
// written when the sink is created.
type WriterSink struct {
	w *bufio.Writer
}

// NewWriterSink wraps w and writes the header line.
func NewWriterSink(w io.Writer) (*WriterSink, error) {
	s := &WriterSink{w: bufio.NewWriter(w)}
	if _, err := s.w.WriteString(Header + "\n"); err != nil {
		return nil, err
	}
	return s, nil
}

// Write appends one record line.
func (s *WriterSink) Write(r Record) error {
	_, err := s.w.WriteString(FormatRecord(r) + "\n")
	return err
}

// Close flushes buffered lines. The underlying writer is left open.
func (s *WriterSink) Close() error {
	return s.w.Flush()
}

// FileSink is a WriterSink over a single file handle held for the whole
// simulation.
type FileSink struct {
	*WriterSink
	file *os.File
	path string
}

// CreateFile truncates (or creates) dir/name, creating dir if needed, and
// writes the header.
func CreateFile(dir, name string) (*FileSink, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory %s: %w", dir, err)
		}
	}

	path := filepath.Join(dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file %s: %w", path, err)
	}

	ws, err := NewWriterSink(file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to write ledger header to %s: %w", path, err)
	}
	return &FileSink{WriterSink: ws, file: file, path: path}, nil
}

// Path returns the location of the ledger file.
func (s *FileSink) Path() string {
	return s.path
}

// Close flushes and closes the file. The file is closed even if the flush fails.
func (s *FileSink) Close() error {
	flushErr := s.WriterSink.Close()
	closeErr := s.file.Close()
	return errors.Join(flushErr, closeErr)
}

// MemorySink keeps records in memory.
type MemorySink struct {
	Records []Record
	Closed  bool
}

// Write appends r.
func (s *MemorySink) Write(r Record) error {
	s.Records = append(s.Records, r)
	return nil
}

// Close marks the sink closed.
func (s *MemorySink) Close() error {
	s.Closed = true
	return nil
}

type teeSink []Sink

// Tee returns a Sink that forwards to every sink in order. Write stops at the
// first error; Close closes all of them.
func Tee(sinks ...Sink) Sink {
	return teeSink(sinks)
}

func (t teeSink) Write(r Record) error {
	for _, s := range t {
		if err := s.Write(r); err != nil {
			return err
		}
	}
	return nil
}

func (t teeSink) Close() error {
	var errs []error
	for _, s := range t {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
