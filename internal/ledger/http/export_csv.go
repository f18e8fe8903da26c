package http

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

// writeTrialBalanceCSV streams the trial balance as CSV rows plus a leaf
// totals line.
func writeTrialBalanceCSV(w io.Writer, vm TrialBalanceVM) error {
	streamer := newCSVStreamer(w)
	header := []string{"code", "name", "level", "leaf",
		"opening_debit", "opening_credit",
		"period_debit", "period_credit",
		"closing_debit", "closing_credit"}
	if err := streamer.writeRow(header); err != nil {
		return err
	}
	for _, row := range vm.Rows {
		leaf := "no"
		if row.IsLeaf {
			leaf = "yes"
		}
		record := []string{
			row.Code,
			row.Name,
			strconv.Itoa(row.Level),
			leaf,
			row.Opening.Debit,
			row.Opening.Credit,
			row.PeriodDebit,
			row.PeriodCredit,
			row.Closing.Debit,
			row.Closing.Credit,
		}
		if err := streamer.writeRow(record); err != nil {
			return err
		}
	}
	totals := []string{"TOTAL (leaves)", "", "", "", "", "",
		vm.TotalPeriodDebit, vm.TotalPeriodCredit,
		vm.LeafClosingDebit, vm.LeafClosingCredit}
	if err := streamer.writeRow(totals); err != nil {
		return err
	}
	return streamer.Flush()
}
