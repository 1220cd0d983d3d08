package worker

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/segmentio/kafka-go"

	"printkit/internal/config"
	"printkit/internal/events"
	"printkit/internal/logger"
)

// Processor handles decoded request events; processors.EventProcessor is
// the production implementation.
type Processor interface {
	Process(ctx context.Context, event events.Event) error
	RefreshAll(ctx context.Context) error
}

type Worker struct {
	config    *config.Config
	logger    *logger.Logger
	reader    *kafka.Reader
	scheduler *cron.Cron
	refresh   cron.Job
	processor Processor
}

// cronLogger routes the scheduler's own messages into the app logger.
type cronLogger struct {
	logger *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: %s: %v %v", msg, err, keysAndValues)
}

func New(cfg *config.Config, logger *logger.Logger, processor Processor) *Worker {
	w := &Worker{
		config:    cfg,
		logger:    logger,
		processor: processor,
	}

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		w.reader = kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			GroupID:        "printkit-worker",
			Topic:          cfg.KafkaRequestsTopic,
			MinBytes:       1,
			MaxBytes:       10e6, // 10MB
			CommitInterval: time.Second,
		})
	}

	// A tick that fires while the previous refresh is still running is dropped.
	w.refresh = cron.NewChain(cron.SkipIfStillRunning(cronLogger{logger})).Then(cron.FuncJob(w.runRefresh))
	return w
}

func (w *Worker) runRefresh() {
	w.logger.Info("Scheduled template refresh starting")
	if err := w.processor.RefreshAll(context.Background()); err != nil {
		w.logger.Error("Scheduled template refresh failed: %v", err)
	}
}

// Schedule registers the periodic full refresh. An empty spec disables it.
func (w *Worker) Schedule(spec string) error {
	if spec == "" {
		return nil
	}
	w.scheduler = cron.New(cron.WithLogger(cronLogger{w.logger}))
	if _, err := w.scheduler.AddJob(spec, w.refresh); err != nil {
		return err
	}
	w.scheduler.Start()
	w.logger.Info("Template refresh scheduled: %s", spec)
	return nil
}

// Start consumes request events until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	if w.reader == nil {
		w.logger.Warn("No Kafka brokers configured, only scheduled refreshes will run")
		<-ctx.Done()
		return
	}

	w.logger.Info("Worker started, listening for events on %s...", w.config.KafkaRequestsTopic)

	for {
		message, err := w.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		w.logger.Debug("Received message: %s", string(message.Value))
		w.Handle(ctx, message.Value)
	}
}

// Handle decodes and processes one message value. Failures are logged.
func (w *Worker) Handle(ctx context.Context, value []byte) bool {
	event, err := events.Decode(value)
	if err != nil {
		w.logger.Error("Failed to parse event: %v", err)
		return false
	}

	if err := w.processor.Process(ctx, event); err != nil {
		w.logger.Error("Failed to process %s event: %v", event.Type, err)
		return false
	}

	w.logger.Debug("Event processed successfully")
	return true
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	if w.scheduler != nil {
		<-w.scheduler.Stop().Done()
	}
	if w.reader != nil {
		w.reader.Close()
	}
}
