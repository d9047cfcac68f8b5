package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/KaramelBytes/assayreport/internal/aggregate"
)

// Driver names accepted by WriteSQL.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

var sqlOpen = sql.Open

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS export_runs (
		run_id TEXT PRIMARY KEY,
		generated_at TIMESTAMP NOT NULL,
		source TEXT NOT NULL,
		cutoff DOUBLE PRECISION,
		total_rows INTEGER NOT NULL,
		rejected_rows INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS assay_records (
		run_id TEXT NOT NULL,
		borehole_id TEXT NOT NULL,
		locality TEXT NOT NULL,
		sample_id TEXT,
		depth_from DOUBLE PRECISION NOT NULL,
		depth_to DOUBLE PRECISION NOT NULL,
		depth_mid DOUBLE PRECISION NOT NULL,
		grade_percent DOUBLE PRECISION NOT NULL,
		iron_percent DOUBLE PRECISION,
		bucket TEXT NOT NULL,
		suspect BOOLEAN NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS group_summaries (
		run_id TEXT NOT NULL,
		group_by TEXT NOT NULL,
		group_key TEXT NOT NULL,
		locality TEXT NOT NULL,
		samples INTEGER NOT NULL,
		total INTEGER NOT NULL,
		mean_grade DOUBLE PRECISION NOT NULL,
		min_grade DOUBLE PRECISION NOT NULL,
		max_grade DOUBLE PRECISION NOT NULL,
		mean_iron DOUBLE PRECISION,
		mn_fe_ratio DOUBLE PRECISION,
		boreholes INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS grade_histogram (
		run_id TEXT NOT NULL,
		bin_label TEXT NOT NULL,
		lower_bound DOUBLE PRECISION NOT NULL,
		upper_bound DOUBLE PRECISION NOT NULL,
		samples INTEGER NOT NULL,
		bucket TEXT NOT NULL
	)`,
}

// WriteSQL stores the bundle under its run id in a single transaction.
func WriteSQL(ctx context.Context, driver, dsn string, b *Bundle) error {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported sql driver %q (use %s or %s)", driver, DriverSQLite, DriverPostgres)
	}
	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return fmt.Errorf("open %s: %w", driver, err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", driver, err)
	}
	for _, stmt := range schemaDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	q := func(s string) string { return rebind(driver, s) }

	if _, err := tx.ExecContext(ctx, q(`INSERT INTO export_runs(run_id,generated_at,source,cutoff,total_rows,rejected_rows) VALUES(?,?,?,?,?,?)`),
		b.RunID, b.GeneratedAt, b.Source, nullFloat(b.Cutoff), b.Diagnostics.Total, b.Diagnostics.Rejected); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	recStmt, err := tx.PrepareContext(ctx, q(`INSERT INTO assay_records(run_id,borehole_id,locality,sample_id,depth_from,depth_to,depth_mid,grade_percent,iron_percent,bucket,suspect) VALUES(?,?,?,?,?,?,?,?,?,?,?)`))
	if err != nil {
		return fmt.Errorf("prepare records: %w", err)
	}
	defer recStmt.Close()
	for _, r := range b.Records {
		var fe *float64
		if r.HasIron {
			v := r.Iron
			fe = &v
		}
		if _, err := recStmt.ExecContext(ctx, b.RunID, r.BoreholeID, r.Locality, nullString(r.SampleID),
			r.DepthFrom, r.DepthTo, r.DepthMid, r.Grade, nullFloat(fe), r.Bucket, r.Suspect); err != nil {
			return fmt.Errorf("insert record %s@%v: %w", r.BoreholeID, r.DepthFrom, err)
		}
	}

	sumStmt, err := tx.PrepareContext(ctx, q(`INSERT INTO group_summaries(run_id,group_by,group_key,locality,samples,total,mean_grade,min_grade,max_grade,mean_iron,mn_fe_ratio,boreholes) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`))
	if err != nil {
		return fmt.Errorf("prepare summaries: %w", err)
	}
	defer sumStmt.Close()
	for groupBy, gs := range map[string][]aggregate.GroupSummary{"locality": b.Localities, "borehole": b.Boreholes} {
		for _, g := range gs {
			var fe, ratio sql.NullFloat64
			if g.HasIron {
				fe = sql.NullFloat64{Float64: g.MeanIron, Valid: true}
				ratio = sql.NullFloat64{Float64: g.Ratio, Valid: true}
			}
			if _, err := sumStmt.ExecContext(ctx, b.RunID, groupBy, g.Key, g.Locality(), g.Count, g.Total, g.Mean, g.Min, g.Max, fe, ratio, g.Boreholes); err != nil {
				return fmt.Errorf("insert %s summary %s: %w", groupBy, g.Key, err)
			}
		}
	}

	for _, h := range b.Histogram {
		if _, err := tx.ExecContext(ctx, q(`INSERT INTO grade_histogram(run_id,bin_label,lower_bound,upper_bound,samples,bucket) VALUES(?,?,?,?,?,?)`),
			b.RunID, h.Label, h.Lower, h.Upper, h.Count, h.Bucket); err != nil {
			return fmt.Errorf("insert histogram %s: %w", h.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// rebind rewrites '?' placeholders to $n for postgres.
func rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
