// Package servicetest records the fire-and-log side effects of services.
package servicetest

import (
	"context"
	"sync"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/events"
)

type Sms struct {
	PhoneNumber string
	Message     string
	Category    consts.SmsCategory
}

type SmsRecorder struct {
	mu   sync.Mutex
	Sent []Sms
}

func (r *SmsRecorder) SendSms(_ context.Context, phoneNumber, message string, category consts.SmsCategory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = append(r.Sent, Sms{PhoneNumber: phoneNumber, Message: message, Category: category})
}

func (r *SmsRecorder) ByCategory(category consts.SmsCategory) []Sms {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Sms
	for _, s := range r.Sent {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

type EventRecorder struct {
	mu     sync.Mutex
	Events []events.LoanEvent
}

func (r *EventRecorder) Publish(_ context.Context, e events.LoanEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, e)
}

func (r *EventRecorder) Types() []consts.LoanEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]consts.LoanEventType, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}

// Archive is an in-memory ReceiptArchiver.
type Archive struct {
	mu      sync.Mutex
	Objects map[string]any
	Err     error
}

func (a *Archive) UploadJSON(_ context.Context, objectName string, payload any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	if a.Objects == nil {
		a.Objects = make(map[string]any)
	}
	a.Objects[objectName] = payload
	return nil
}
