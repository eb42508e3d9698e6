package main

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"github.com/suPer8Hu/corecord/internal/ai"
	"github.com/suPer8Hu/corecord/internal/analysis"
	"github.com/suPer8Hu/corecord/internal/config"
	"github.com/suPer8Hu/corecord/internal/db"
	applog "github.com/suPer8Hu/corecord/internal/log"
	"github.com/suPer8Hu/corecord/internal/store/rabbitmq"
)

const (
	maxAttempts  = 3
	retryDelay   = 10 * time.Second
	drainTimeout = 25 * time.Second
)

func main() {
	cfg := config.Load()
	applog.Init(cfg.Env)

	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}

	reg := ai.NewConfiguredRegistry(cfg)
	// the worker only consumes jobs, so it never publishes new ones
	svc := analysis.NewService(gdb, analysis.NewAIGenerator(reg), nil)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit dial")
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit channel")
	}
	defer ch.Close()

	if err := rabbitmq.DeclareQueues(ch, cfg.RabbitQueue); err != nil {
		log.Fatal().Err(err).Msg("queue declare")
	}

	//  strict concurrency control
	concurrency := cfg.WorkerConcurrency
	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatal().Err(err).Msg("qos")
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("consume")
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// jobs run on workCtx, which outlives the signal by at most drainTimeout
	workCtx, cancelWork := context.WithCancel(context.Background())
	defer cancelWork()

	log.Info().Str("queue", cfg.RabbitQueue).Int("concurrency", concurrency).Msg("worker started")

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				handleDelivery(workCtx, ch, svc, cfg.RabbitQueue, workerID, d)
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-sigCtx.Done():
			log.Info().Dur("drain", drainTimeout).Msg("worker shutting down")
			close(jobs)
			timer := time.AfterFunc(drainTimeout, cancelWork)
			wg.Wait()
			timer.Stop()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Error().Msg("delivery channel closed")
				close(jobs)
				wg.Wait()
				return
			}
			select {
			case jobs <- d:
			case <-sigCtx.Done():
				_ = d.Nack(false, true)
			}
		}
	}
}

func handleDelivery(ctx context.Context, ch *amqp.Channel, svc *analysis.Service, queue string, workerID int, d amqp.Delivery) {
	logger := log.With().Int("worker", workerID).Logger()

	jobID, err := rabbitmq.DecodeJob(d.Body)
	if err != nil {
		logger.Warn().Err(err).Msg("bad message")
		_ = d.Nack(false, false)
		return
	}

	start := time.Now()
	err = svc.RunJob(ctx, jobID)
	cost := time.Since(start)
	if err == nil {
		if cost > 2*time.Second {
			logger.Info().Str("job", jobID).Dur("cost", cost).Msg("job_timing")
		}
		if err := d.Ack(false); err != nil {
			logger.Error().Err(err).Str("job", jobID).Msg("ack failed")
		}
		return
	}

	if ctx.Err() != nil {
		// interrupted by shutdown; requeue without spending an attempt
		logger.Warn().Err(err).Str("job", jobID).Msg("job interrupted, requeueing")
		_ = d.Nack(false, true)
		return
	}

	attempt := rabbitmq.Attempt(d.Headers)
	if !retryable(err) || attempt+1 >= maxAttempts {
		logger.Error().Err(err).Str("job", jobID).Int("attempt", attempt).Dur("cost", cost).Msg("job failed, dead-lettering")
		_ = d.Nack(false, false)
		return
	}

	logger.Warn().Err(err).Str("job", jobID).Int("attempt", attempt).Dur("cost", cost).Msg("job failed, retrying")
	if err := rabbitmq.Retry(ctx, ch, queue, d.Body, attempt+1, retryDelay); err != nil {
		logger.Error().Err(err).Str("job", jobID).Msg("retry publish failed")
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

// retryable reports whether another attempt could change the outcome.
func retryable(err error) bool {
	return !errors.Is(err, analysis.ErrJobNotFound) &&
		!errors.Is(err, analysis.ErrRecordNotFound) &&
		!errors.Is(err, analysis.ErrAnalysisUnauthorized)
}
