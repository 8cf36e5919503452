package push

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"OnDuty/config"
	"OnDuty/pkg/logger"
)

// Message is one push notification addressed to a single device token.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// SendResult reports the delivery outcome of a single message.
type SendResult struct {
	Delivered bool
	Err       error
}

// BatchResult aggregates per-message outcomes of a batch submission.
type BatchResult struct {
	SuccessCount int
	FailureCount int
	Responses    []SendResult
}

// Client is the push delivery interface. SendBatch must accept populations of
// any size and chunk them to the provider's per-call ceiling internally.
type Client interface {
	SendSingle(ctx context.Context, msg Message) (*SendResult, error)
	SendBatch(ctx context.Context, msgs []Message) (*BatchResult, error)
}

var (
	pushClient Client
	pushOnce   sync.Once
	pushErr    error
)

// Init selects and constructs the configured provider client.
func Init() error {
	pushOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.PushProvider {
		case "fcm":
			pushClient, pushErr = NewFCMClient()
		case "mock":
			pushClient = NewMockClient()
		default:
			pushErr = fmt.Errorf("unsupported push provider: %s", cfg.PushProvider)
		}

		if pushErr != nil {
			logger.Logger.Error("Failed to initialize push client", zap.Error(pushErr))
			return
		}

		logger.Logger.Info("Push client initialized",
			zap.String("provider", cfg.PushProvider),
		)
	})

	return pushErr
}

func GetClient() Client {
	if pushClient == nil {
		panic("push client not initialized, call push.Init() first")
	}
	return pushClient
}

// chunk splits msgs into slices of at most size elements.
func chunk(msgs []Message, size int) [][]Message {
	if size <= 0 {
		size = 500
	}

	var out [][]Message
	for start := 0; start < len(msgs); start += size {
		end := start + size
		if end > len(msgs) {
			end = len(msgs)
		}
		out = append(out, msgs[start:end])
	}
	return out
}
