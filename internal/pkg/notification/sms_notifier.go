package notification

import (
	"context"
	"encoding/json"
	"time"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/utils/worker"

	"go.uber.org/zap"
)

const publishTimeout = 30 * time.Second

// TopicPublisher is satisfied by *pubsub.PubSubPublisher.
type TopicPublisher interface {
	Publish(ctx context.Context, topic string, msg []byte, attributes map[string]string) error
}

// TaskSubmitter is satisfied by *worker.WorkerPool.
type TaskSubmitter interface {
	Submit(task worker.Task) bool
}

// SmsNotificationRequest is the message consumed by the SMS gateway service.
type SmsNotificationRequest struct {
	Msisdn    string    `json:"msisdn"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	RequestID string    `json:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SmsNotifier hands SMS messages to Pub/Sub without blocking the caller.
// Failures are logged and dropped.
type SmsNotifier struct {
	publisher TopicPublisher
	topic     string
	pool      TaskSubmitter
	now       func() time.Time
}

func NewSmsNotifier(publisher TopicPublisher, topic string, pool TaskSubmitter) *SmsNotifier {
	return &SmsNotifier{
		publisher: publisher,
		topic:     topic,
		pool:      pool,
		now:       time.Now,
	}
}

func (n *SmsNotifier) SendSms(ctx context.Context, phoneNumber, message string, category consts.SmsCategory) {
	req := SmsNotificationRequest{
		Msisdn:    phoneNumber,
		Message:   message,
		Category:  string(category),
		RequestID: logger.GetRequestID(ctx),
		CreatedAt: n.now().UTC(),
	}

	// the request context ends with the USSD reply; the publish must outlive it
	bg := context.WithoutCancel(ctx)
	task := func() {
		pubCtx, cancel := context.WithTimeout(bg, publishTimeout)
		defer cancel()
		if err := n.publish(pubCtx, req); err != nil {
			logger.CtxError(pubCtx, log_messages.SmsPublishFailure, err,
				zap.String("msisdn", phoneNumber),
				zap.String("category", string(category)),
			)
		}
	}

	if n.pool == nil || !n.pool.Submit(task) {
		task()
	}
}

func (n *SmsNotifier) publish(ctx context.Context, req SmsNotificationRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return n.publisher.Publish(ctx, n.topic, payload, map[string]string{
		"category": req.Category,
	})
}
