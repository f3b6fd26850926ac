package interfaces

import (
	"context"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/events"
)

// SmsSender delivers SMS out of band. Implementations never block on, or
// report, delivery failures.
type SmsSender interface {
	SendSms(ctx context.Context, phoneNumber, message string, category consts.SmsCategory)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.LoanEvent)
}

// ReceiptArchiver stores settlement receipts. Satisfied by *gcs.GCSClient.
type ReceiptArchiver interface {
	UploadJSON(ctx context.Context, objectName string, payload any) error
}
