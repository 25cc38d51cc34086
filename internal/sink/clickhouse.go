package sink

import (
	"context"
	"fmt"
	"time"

	processor "github.com/ethpandaops/go-batch-processor"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/proftimer/internal/export"
)

// ClickHouseSink stores report rows in ClickHouse. Rows are queued on a
// batch processor so Export never waits on the database.
type ClickHouseSink struct {
	log        logrus.FieldLogger
	cfg        export.ClickHouseConfig
	clientName string
	writer     *export.ClickHouseWriter
	proc       *processor.BatchItemProcessor[ReportRow]
}

var _ Sink = (*ClickHouseSink)(nil)

// NewClickHouseSink creates the ClickHouse sink.
func NewClickHouseSink(
	log logrus.FieldLogger,
	cfg export.ClickHouseConfig,
	clientName string,
) (*ClickHouseSink, error) {
	cfg.ApplyDefaults()

	s := &ClickHouseSink{
		log:        log.WithField("sink", "clickhouse"),
		cfg:        cfg,
		clientName: clientName,
		writer:     export.NewClickHouseWriter(log, cfg),
	}

	proc, err := processor.NewBatchItemProcessor[ReportRow](
		&clickHouseExporter{sink: s},
		"report_clickhouse",
		log,
		processor.WithMaxQueueSize(cfg.BatchSize*10),
		processor.WithBatchTimeout(cfg.FlushInterval),
		processor.WithMaxExportBatchSize(cfg.BatchSize),
		processor.WithWorkers(1),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ClickHouse processor: %w", err)
	}

	s.proc = proc

	return s, nil
}

func (s *ClickHouseSink) Name() string { return "clickhouse" }

func (s *ClickHouseSink) Start(ctx context.Context) error {
	if err := s.writer.Start(ctx); err != nil {
		return err
	}

	s.proc.Start(ctx)

	return nil
}

func (s *ClickHouseSink) Stop() error {
	if err := s.proc.Shutdown(context.Background()); err != nil {
		s.log.WithError(err).Error("ClickHouse processor shutdown failed")
	}

	return s.writer.Stop()
}

func (s *ClickHouseSink) Export(ctx context.Context, report Report) error {
	rows := Rows(report, s.clientName, time.Now())
	if len(rows) == 0 {
		return nil
	}

	if err := s.proc.Write(ctx, rows); err != nil {
		return fmt.Errorf("queueing report rows: %w", err)
	}

	return nil
}

func (s *ClickHouseSink) insertQuery() string {
	return fmt.Sprintf(`INSERT INTO %s (
		updated_date_time, window_start, window_number, interval_ms,
		name, rank, count, total_ns, avg_ns,
		meta_client_name
	)`, s.cfg.QualifiedTable())
}

// clickHouseExporter adapts the sink to processor.ItemExporter.
type clickHouseExporter struct {
	sink *ClickHouseSink
}

var _ processor.ItemExporter[ReportRow] = (*clickHouseExporter)(nil)

func (e *clickHouseExporter) ExportItems(ctx context.Context, rows []*ReportRow) error {
	if len(rows) == 0 {
		return nil
	}

	conn := e.sink.writer.Conn()
	if conn == nil {
		return fmt.Errorf("clickhouse writer not started")
	}

	batch, err := conn.PrepareBatch(ctx, e.sink.insertQuery())
	if err != nil {
		return fmt.Errorf("preparing report batch: %w", err)
	}

	for _, r := range rows {
		if r == nil {
			continue
		}

		if err := batch.Append(
			r.UpdatedAt, r.WindowStart, r.Window, r.IntervalMs,
			r.Name, r.Rank, r.Count, r.TotalNs, r.AvgNs,
			r.ClientName,
		); err != nil {
			return fmt.Errorf("appending report row: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("sending report batch: %w", err)
	}

	e.sink.log.WithField("rows", len(rows)).Debug("Inserted report rows")

	return nil
}

func (e *clickHouseExporter) Shutdown(_ context.Context) error {
	return nil
}
