package events

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

const publishTimeout = 15 * time.Second

// KeyedPublisher is satisfied by *kafka.KafkaProducer.
type KeyedPublisher interface {
	Publish(ctx context.Context, key string, msg []byte) error
}

type TaskSubmitter interface {
	Submit(task worker.Task) bool
}

// LoanEvent is one entry on the loan lifecycle stream. Events are keyed by loan
// id so a consumer sees one loan's events in order.
type LoanEvent struct {
	Type        consts.LoanEventType `json:"type"`
	LoanID      string               `json:"loanId"`
	Reference   string               `json:"reference,omitempty"`
	CustomerID  string               `json:"customerId,omitempty"`
	PhoneNumber string               `json:"phoneNumber,omitempty"`
	BankCode    string               `json:"bankCode,omitempty"`
	Status      consts.LoanStatus    `json:"status,omitempty"`
	Amount      float64              `json:"amount,omitempty"`
	Details     map[string]any       `json:"details,omitempty"`
	OccurredAt  time.Time            `json:"occurredAt"`
}

type LoanEventPublisher struct {
	producer KeyedPublisher
	pool     TaskSubmitter
	now      func() time.Time
}

func NewLoanEventPublisher(producer KeyedPublisher, pool TaskSubmitter) *LoanEventPublisher {
	return &LoanEventPublisher{producer: producer, pool: pool, now: time.Now}
}

// Publish is fire-and-log: the caller's flow never waits on Kafka.
func (p *LoanEventPublisher) Publish(ctx context.Context, event LoanEvent) {
	if p == nil || p.producer == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}

	bg := context.WithoutCancel(ctx)
	task := func() {
		pubCtx, cancel := context.WithTimeout(bg, publishTimeout)
		defer cancel()

		payload, err := json.Marshal(event)
		if err == nil {
			err = p.producer.Publish(pubCtx, event.LoanID, payload)
		}
		if err != nil {
			logger.CtxError(pubCtx, log_messages.EventPublishFailure, err,
				zap.String("event_type", string(event.Type)),
				zap.String("loan_id", event.LoanID),
			)
		}
	}

	if p.pool == nil || !p.pool.Submit(task) {
		task()
	}
}
