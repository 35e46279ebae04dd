package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
	"github.com/wealthplay/nex-mentor/internal/infrastructure/resilience"
)

const (
	workerQueueGroup = "exchange-writers"
	handlerTimeout   = 30 * time.Second
	drainTimeout     = 35 * time.Second
)

// Queue carries mentor exchanges from the API to the history worker.
type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ClientName           string
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	clientName := options.ClientName
	if clientName == "" {
		clientName = "nex-mentor"
	}
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name(clientName),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishExchange(ctx context.Context, exchange domain.MentorExchange) error {
	payload, err := encodeExchange(exchange)
	if err != nil {
		return err
	}

	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeExchanges blocks until ctx is done, then drains the subscription
// and waits for in-flight handlers. Undecodable payloads are logged and dropped.
func (q *Queue) SubscribeExchanges(ctx context.Context, handler func(context.Context, domain.MentorExchange) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, workerQueueGroup, func(msg *nats.Msg) {
		deliverExchange(ctx, msg.Subject, msg.Data, handler)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	if !waitDrained(sub, drainTimeout) {
		slog.Warn("exchange_drain_timeout", "subject", q.subject, "timeout", drainTimeout)
	}
	return nil
}

// deliverExchange runs handler for one message. Messages handed over while
// the subscription drains are still persisted, so the handler context
// outlives the subscriber's cancellation, bounded by handlerTimeout.
func deliverExchange(ctx context.Context, subject string, data []byte, handler func(context.Context, domain.MentorExchange) error) {
	exchange, err := decodeExchange(data)
	if err != nil {
		slog.Error("exchange_decode_failed", "subject", subject, "error", err)
		return
	}

	handlerCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handlerTimeout)
	defer cancel()
	if err := handler(handlerCtx, exchange); err != nil {
		slog.Error("exchange_handler_failed", "exchange_id", exchange.ID, "error", err)
	}
}

func waitDrained(sub *nats.Subscription, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for sub.IsValid() {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(50 * time.Millisecond)
	}
	return true
}
