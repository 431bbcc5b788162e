package ledger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() Record {
	return Record{
		Month:               0,
		MonthlyInterest:     166.66666666666666,
		AmortizedLoan:       476.6160581773,
		PendingLoan:         199523.3839418227,
		Interest:            0.01,
		MonthlyPayment:      643.282724844,
		AccumulatedInterest: 166.66666666666666,
	}
}

func TestHeaderFieldOrder(t *testing.T) {
	assert.Equal(t,
		"month;monthly_interest;amortized_loan;pending_loan;interest;monthly_payment;accumulated_interest",
		Header)
}

func TestFormatRecord(t *testing.T) {
	line := FormatRecord(sampleRecord())
	assert.Equal(t,
		"0;166.66666666666666;476.6160581773;199523.3839418227;0.01;643.282724844;166.66666666666666",
		line)

	negative := Record{Month: 12, Interest: -0.00458, MonthlyPayment: 1000}
	assert.Equal(t, "12;0;0;0;-0.00458;1000;0", FormatRecord(negative))
}

func TestParseRecordRoundTrip(t *testing.T) {
	record := sampleRecord()
	parsed, err := ParseRecord(FormatRecord(record))
	require.NoError(t, err)
	assert.Equal(t, record, parsed)
}

func TestParseRecordMalformed(t *testing.T) {
	tests := map[string]string{
		"too few fields": "1;2;3",
		"bad month":      "x;1;1;1;1;1;1",
		"bad number":     "1;1;abc;1;1;1;1",
	}
	for name, line := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRecord(line)
			assert.True(t, errors.Is(err, ErrMalformedLine), "got %v", err)
		})
	}
}

func TestWriterSinkAndRead(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewWriterSink(&buf)
	require.NoError(t, err)

	first := sampleRecord()
	second := first
	second.Month = 1
	require.NoError(t, sink.Write(first))
	require.NoError(t, sink.Write(second))
	require.NoError(t, sink.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, Header, lines[0])

	records, err := Read(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, []Record{first, second}, records)
}

func TestReadRejectsWrongHeader(t *testing.T) {
	_, err := Read(strings.NewReader("date,amount\n"))
	assert.True(t, errors.Is(err, ErrMalformedLine))

	_, err = Read(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrMalformedLine))
}

func TestCreateFileTruncates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "simulations")
	path := filepath.Join(dir, "fija.txt")

	sink, err := CreateFile(dir, "fija.txt")
	require.NoError(t, err)
	assert.Equal(t, path, sink.Path())
	require.NoError(t, sink.Write(sampleRecord()))
	require.NoError(t, sink.Close())

	// Reopening must discard the previous run.
	sink, err = CreateFile(dir, "fija.txt")
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Header+"\n", string(data))
}

func TestCreateFileUnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	_, err := CreateFile(blocker, "ledger.txt")
	assert.Error(t, err)
}

type failingSink struct{ closed bool }

func (f *failingSink) Write(Record) error { return errors.New("disk full") }
func (f *failingSink) Close() error       { f.closed = true; return nil }

func TestTee(t *testing.T) {
	memory := &MemorySink{}
	failing := &failingSink{}
	sink := Tee(memory, failing)

	err := sink.Write(sampleRecord())
	assert.EqualError(t, err, "disk full")
	assert.Len(t, memory.Records, 1)

	require.NoError(t, sink.Close())
	assert.True(t, memory.Closed)
	assert.True(t, failing.closed)
}
