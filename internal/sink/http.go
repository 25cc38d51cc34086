package sink

import (
	"context"
	"fmt"
	"time"

	processor "github.com/ethpandaops/go-batch-processor"
	"github.com/sirupsen/logrus"

	httpexport "github.com/ethpandaops/proftimer/internal/export/http"
)

// HTTPSink streams report rows as NDJSON through a batch processor.
type HTTPSink struct {
	log        logrus.FieldLogger
	clientName string
	proc       *processor.BatchItemProcessor[ReportRow]
}

var _ Sink = (*HTTPSink)(nil)

// NewHTTPSink creates the HTTP sink.
func NewHTTPSink(
	log logrus.FieldLogger,
	cfg httpexport.Config,
	clientName string,
) (*HTTPSink, error) {
	proc, err := httpexport.NewProcessor[ReportRow](log, cfg, "report_http")
	if err != nil {
		return nil, fmt.Errorf("creating HTTP processor: %w", err)
	}

	return &HTTPSink{
		log:        log.WithField("sink", "http"),
		clientName: clientName,
		proc:       proc,
	}, nil
}

func (s *HTTPSink) Name() string { return "http" }

func (s *HTTPSink) Start(ctx context.Context) error {
	s.proc.Start(ctx)

	return nil
}

func (s *HTTPSink) Stop() error {
	if err := s.proc.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("shutting down HTTP processor: %w", err)
	}

	return nil
}

func (s *HTTPSink) Export(ctx context.Context, report Report) error {
	rows := Rows(report, s.clientName, time.Now())
	if len(rows) == 0 {
		return nil
	}

	if err := s.proc.Write(ctx, rows); err != nil {
		return fmt.Errorf("queueing report rows: %w", err)
	}

	return nil
}
