package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"OnDuty/config"
	"OnDuty/pkg/logger"
)

const fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

// FCMClient speaks the FCM HTTP v1 send endpoint, authenticated with a Google
// service account. One HTTP round trip per message; SendBatch chunks the
// population to the platform's 500-per-call ceiling and walks the chunks.
type FCMClient struct {
	httpClient *http.Client
	endpoint   string
	batchSize  int
}

type fcmSendRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Android      *fcmAndroidConfig `json:"android,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmAndroidConfig struct {
	Notification fcmAndroidNotification `json:"notification"`
}

type fcmAndroidNotification struct {
	Sound     string `json:"sound,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
}

type fcmErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func NewFCMClient() (*FCMClient, error) {
	cfg := config.Cfg

	if cfg.FCMProjectID == "" {
		return nil, fmt.Errorf("FCM_PROJECT_ID is required for the fcm provider")
	}
	if cfg.FCMCredentialsFile == "" {
		return nil, fmt.Errorf("FCM_CREDENTIALS_FILE is required for the fcm provider")
	}

	credJSON, err := os.ReadFile(cfg.FCMCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read FCM credentials file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(context.Background(), credJSON, fcmScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FCM credentials: %w", err)
	}

	return &FCMClient{
		httpClient: oauth2.NewClient(context.Background(), creds.TokenSource),
		endpoint:   fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", cfg.FCMProjectID),
		batchSize:  cfg.PushBatchSize,
	}, nil
}

func (c *FCMClient) SendSingle(ctx context.Context, msg Message) (*SendResult, error) {
	if msg.Token == "" {
		return &SendResult{Delivered: false, Err: fmt.Errorf("empty device token")},
			fmt.Errorf("empty device token")
	}

	reqBody := fcmSendRequest{
		Message: fcmMessage{
			Token: msg.Token,
			Notification: fcmNotification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			Data: msg.Data,
			Android: &fcmAndroidConfig{
				Notification: fcmAndroidNotification{
					Sound:     "default",
					ChannelID: "attendance_reminders",
				},
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal FCM request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to build FCM request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &SendResult{Delivered: false, Err: err}, fmt.Errorf("FCM request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var fcmErr fcmErrorResponse
		_ = json.Unmarshal(respBytes, &fcmErr)

		sendErr := fmt.Errorf("FCM send rejected: status=%d code=%s message=%s",
			resp.StatusCode, fcmErr.Error.Status, fcmErr.Error.Message)

		logger.Logger.Warn("FCM send failed",
			zap.Int("status", resp.StatusCode),
			zap.String("fcm_status", fcmErr.Error.Status),
			zap.Duration("elapsed", time.Since(start)),
		)

		return &SendResult{Delivered: false, Err: sendErr}, sendErr
	}

	return &SendResult{Delivered: true}, nil
}

func (c *FCMClient) SendBatch(ctx context.Context, msgs []Message) (*BatchResult, error) {
	result := &BatchResult{
		Responses: make([]SendResult, 0, len(msgs)),
	}

	for _, batch := range chunk(msgs, c.batchSize) {
		for _, msg := range batch {
			res, err := c.SendSingle(ctx, msg)
			if err != nil && res == nil {
				res = &SendResult{Delivered: false, Err: err}
			}

			result.Responses = append(result.Responses, *res)
			if res.Delivered {
				result.SuccessCount++
			} else {
				result.FailureCount++
			}
		}
	}

	return result, nil
}
