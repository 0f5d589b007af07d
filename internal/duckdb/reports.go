package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-diff/internal/pipeline"
)

// SampleReport is a stored conversion report with the fingerprint of the
// VCF it was built from.
type SampleReport struct {
	pipeline.Report
	VCFFingerprint FileFingerprint
	CreatedAt      time.Time
}

// NewSampleReport fingerprints the report's VCF file.
func NewSampleReport(rep *pipeline.Report) (SampleReport, error) {
	fp, err := StatFile(rep.VCF)
	if err != nil {
		return SampleReport{}, fmt.Errorf("fingerprint %s: %w", rep.VCF, err)
	}
	return SampleReport{Report: *rep, VCFFingerprint: fp, CreatedAt: time.Now().UTC()}, nil
}

const reportColumns = `sample, output, vcf_path, vcf_size, vcf_modtime, coverage_path,
		variants, records, masked_positions, low_depth_fraction, reference_length,
		min_depth, duration_ms, created_at`

// WriteReports batch-inserts reports using the Appender API. Existing
// reports for the same samples are replaced; the last report for a sample
// wins within a batch. The batch is written in one transaction, so a
// failed write leaves the stored reports unchanged.
func (s *Store) WriteReports(reports []SampleReport) (err error) {
	if len(reports) == 0 {
		return nil
	}

	latest := make(map[string]int, len(reports))
	for i, r := range reports {
		latest[r.Sample] = i
	}

	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	// The appender writes through the raw connection, so the transaction is
	// opened on it with SQL rather than through database/sql.
	if _, err := conn.ExecContext(ctx, "BEGIN TRANSACTION"); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			conn.ExecContext(ctx, "ROLLBACK")
		}
	}()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "report_staging")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}

	for i, r := range reports {
		if latest[r.Sample] != i {
			continue
		}
		if err := appender.AppendRow(
			r.Sample, r.Output, r.VCFFingerprint.Path, r.VCFFingerprint.Size, r.VCFFingerprint.modTime(),
			r.Coverage, int64(r.Variants), int64(r.Records), r.MaskedPositions, r.LowDepthFraction,
			r.ReferenceLength, int64(r.MinDepth), r.Duration.Milliseconds(), r.CreatedAt,
		); err != nil {
			appender.Close()
			return fmt.Errorf("append report: %w", err)
		}
	}
	if err := appender.Close(); err != nil {
		return fmt.Errorf("flush reports: %w", err)
	}

	if _, err := conn.ExecContext(ctx, `INSERT OR REPLACE INTO sample_reports (`+reportColumns+`)
		SELECT `+reportColumns+` FROM report_staging`); err != nil {
		return fmt.Errorf("replace reports: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "DELETE FROM report_staging"); err != nil {
		return fmt.Errorf("clear staged reports: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit reports: %w", err)
	}
	return nil
}

// LookupReport returns the stored report for sample, or nil if there is
// none.
func (s *Store) LookupReport(sample string) (*SampleReport, error) {
	rows, err := s.db.Query(`SELECT `+reportColumns+` FROM sample_reports WHERE sample=?`, sample)
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}
	defer rows.Close()

	reports, err := scanReports(rows)
	if err != nil || len(reports) == 0 {
		return nil, err
	}
	return &reports[0], nil
}

// ListReports returns every stored report ordered by sample name.
func (s *Store) ListReports() ([]SampleReport, error) {
	rows, err := s.db.Query(`SELECT ` + reportColumns + ` FROM sample_reports ORDER BY sample`)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// Completed reports whether sample has a stored report built from a VCF
// with the given fingerprint.
func (s *Store) Completed(sample string, vcf FileFingerprint) (bool, error) {
	var size int64
	var modTime string
	err := s.db.QueryRow(`SELECT vcf_size, vcf_modtime FROM sample_reports WHERE sample=?`, sample).
		Scan(&size, &modTime)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query report: %w", err)
	}
	return size == vcf.Size && modTime == vcf.modTime(), nil
}

// ClearReports removes all stored reports.
func (s *Store) ClearReports() error {
	_, err := s.db.Exec("DELETE FROM sample_reports")
	return err
}

// scanReports scans rows into SampleReport slices.
func scanReports(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]SampleReport, error) {
	var reports []SampleReport
	for rows.Next() {
		var r SampleReport
		var modTime string
		var variants, records, minDepth, durationMs int64

		if err := rows.Scan(
			&r.Sample, &r.Output, &r.VCFFingerprint.Path, &r.VCFFingerprint.Size, &modTime,
			&r.Coverage, &variants, &records, &r.MaskedPositions, &r.LowDepthFraction,
			&r.ReferenceLength, &minDepth, &durationMs, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}

		r.VCF = r.VCFFingerprint.Path
		r.Variants = int(variants)
		r.Records = int(records)
		r.MinDepth = int(minDepth)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		if t, err := time.Parse(time.RFC3339Nano, modTime); err == nil {
			r.VCFFingerprint.ModTime = t
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}
