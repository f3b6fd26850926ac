// Package memstore holds in-memory repositories with the same observable
// semantics as the Mongo ones: unique keys, conditional updates and
// not-found errors. Service tests run against it.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/store/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// duplicateKey mirrors the server error so mongo.IsDuplicateKeyError matches it.
func duplicateKey() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: consts.MongoDuplicateKeyCode, Message: "E11000 duplicate key"}}}
}

// Transactor runs fn directly; the in-memory stores have no rollback.
type Transactor struct {
	Calls int
}

func (t *Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	return fn(ctx)
}

// SESSIONS //

type Sessions struct {
	mu   sync.Mutex
	docs []models.Session
}

func (s *Sessions) FindBySessionID(_ context.Context, sessionID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *models.Session
	for i := range s.docs {
		if s.docs[i].SessionID == sessionID && (found == nil || s.docs[i].StartedAt.After(found.StartedAt)) {
			found = &s.docs[i]
		}
	}
	if found == nil {
		return nil, mongo.ErrNoDocuments
	}
	out := *found
	return &out, nil
}

func (s *Sessions) FindReacquirable(_ context.Context, phone string, now time.Time) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *models.Session
	for i := range s.docs {
		d := &s.docs[i]
		if d.PhoneNumber != phone || !d.Active || d.Step != consts.StepOTPVerify {
			continue
		}
		if d.OTPExpiresAt == nil || !d.OTPExpiresAt.After(now) {
			continue
		}
		if found == nil || d.StartedAt.After(found.StartedAt) {
			found = d
		}
	}
	if found == nil {
		return nil, mongo.ErrNoDocuments
	}
	out := *found
	return &out, nil
}

func (s *Sessions) Create(_ context.Context, session *models.Session) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.ID = primitive.NewObjectID()
	s.docs = append(s.docs, *session)
	return session.ID, nil
}

func (s *Sessions) Rebind(_ context.Context, id primitive.ObjectID, sessionID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if s.docs[i].ID == id {
			s.docs[i].SessionID = sessionID
			s.docs[i].LastActivityAt = now
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (s *Sessions) DeactivateOthers(_ context.Context, phone string, keep primitive.ObjectID, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.docs {
		d := &s.docs[i]
		if d.PhoneNumber == phone && d.Active && d.ID != keep {
			d.Active = false
			ended := now
			d.EndedAt = &ended
			n++
		}
	}
	return n, nil
}

func (s *Sessions) Save(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if s.docs[i].ID == session.ID {
			s.docs[i] = *session
			if session.OTPHash == "" {
				s.docs[i].OTPExpiresAt = nil
			}
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

// All returns a snapshot of every stored session.
func (s *Sessions) All() []models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Session(nil), s.docs...)
}

// CUSTOMERS //

type Customers struct {
	mu   sync.Mutex
	docs map[string]models.Customer
	// FailUpsert makes the next Upsert return this error.
	FailUpsert error
}

func (c *Customers) FindByPhone(_ context.Context, phone string) (*models.Customer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[phone]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &doc, nil
}

func (c *Customers) Upsert(_ context.Context, customer *models.Customer) (*models.Customer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailUpsert != nil {
		err := c.FailUpsert
		c.FailUpsert = nil
		return nil, err
	}
	if c.docs == nil {
		c.docs = make(map[string]models.Customer)
	}
	doc := *customer
	if existing, ok := c.docs[customer.PhoneNumber]; ok {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
		if doc.VerifiedAt == nil {
			doc.VerifiedAt = existing.VerifiedAt
		}
	} else {
		doc.ID = primitive.NewObjectID()
	}
	c.docs[customer.PhoneNumber] = doc
	return &doc, nil
}

func (c *Customers) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

// LOANS //

type Loans struct {
	mu   sync.Mutex
	docs []models.Loan
}

func (l *Loans) Create(_ context.Context, loan *models.Loan) (primitive.ObjectID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, d := range l.docs {
		if (loan.SessionID != "" && d.SessionID == loan.SessionID) || d.Reference == loan.Reference {
			return primitive.NilObjectID, duplicateKey()
		}
	}
	loan.ID = primitive.NewObjectID()
	l.docs = append(l.docs, *loan)
	return loan.ID, nil
}

func (l *Loans) find(match func(*models.Loan) bool) (*models.Loan, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.docs) - 1; i >= 0; i-- {
		if match(&l.docs[i]) {
			out := l.docs[i]
			return &out, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (l *Loans) FindByID(_ context.Context, id primitive.ObjectID) (*models.Loan, error) {
	return l.find(func(d *models.Loan) bool { return d.ID == id })
}

func (l *Loans) FindBySessionID(_ context.Context, sessionID string) (*models.Loan, error) {
	return l.find(func(d *models.Loan) bool { return d.SessionID == sessionID })
}

func (l *Loans) FindLatestByCustomer(_ context.Context, customerID primitive.ObjectID) (*models.Loan, error) {
	return l.find(func(d *models.Loan) bool { return d.CustomerID == customerID })
}

func (l *Loans) HasOpenLoan(_ context.Context, customerID primitive.ObjectID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, d := range l.docs {
		if d.CustomerID == customerID && d.Status.IsOpen() {
			return true, nil
		}
	}
	return false, nil
}

func (l *Loans) TransitionStatus(_ context.Context, id primitive.ObjectID, from, to consts.LoanStatus, extra bson.M) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.docs {
		d := &l.docs[i]
		if d.ID != id || d.Status != from {
			continue
		}
		d.Status = to
		applyLoanFields(d, extra)
		return true, nil
	}
	return false, nil
}

func (l *Loans) SetFields(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.docs {
		if l.docs[i].ID == id {
			applyLoanFields(&l.docs[i], fields)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

// Put stores a loan as-is, for seeding tests.
func (l *Loans) Put(loan models.Loan) models.Loan {
	l.mu.Lock()
	defer l.mu.Unlock()
	if loan.ID.IsZero() {
		loan.ID = primitive.NewObjectID()
	}
	l.docs = append(l.docs, loan)
	return loan
}

// applyLoanFields round-trips fields through BSON so the keys match the schema tags.
func applyLoanFields(d *models.Loan, fields bson.M) {
	if len(fields) == 0 {
		return
	}
	raw, err := bson.Marshal(d)
	if err != nil {
		return
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return
	}
	for k, v := range fields {
		doc[k] = v
	}
	raw, err = bson.Marshal(doc)
	if err != nil {
		return
	}
	var updated models.Loan
	if err := bson.Unmarshal(raw, &updated); err == nil {
		*d = updated
	}
}

// TRANSACTIONS //

type Transactions struct {
	mu   sync.Mutex
	docs []models.Transaction
	// FailInsertAt makes Insert fail for the entry with this sequence once.
	FailInsertAt int
	FailErr      error
}

func (t *Transactions) FindByLoan(_ context.Context, loanID primitive.ObjectID) ([]models.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []models.Transaction
	for _, d := range t.docs {
		if d.LoanID == loanID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (t *Transactions) Insert(_ context.Context, entry *models.Transaction) (primitive.ObjectID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailInsertAt != 0 && entry.Sequence == t.FailInsertAt {
		t.FailInsertAt = 0
		return primitive.NilObjectID, t.FailErr
	}
	for _, d := range t.docs {
		if d.LoanID == entry.LoanID && d.Type == entry.Type && d.From == entry.From && d.To == entry.To {
			return primitive.NilObjectID, duplicateKey()
		}
	}
	entry.ID = primitive.NewObjectID()
	t.docs = append(t.docs, *entry)
	return entry.ID, nil
}

func (t *Transactions) update(id primitive.ObjectID, fn func(*models.Transaction)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.docs {
		if t.docs[i].ID == id && t.docs[i].Status != consts.TransactionCompleted {
			fn(&t.docs[i])
			t.docs[i].Attempts++
		}
	}
	return nil
}

func (t *Transactions) MarkCompleted(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return t.update(id, func(d *models.Transaction) {
		d.Status = consts.TransactionCompleted
		d.ProcessedAt, d.CompletedAt = &at, &at
		d.LastError = ""
	})
}

func (t *Transactions) MarkFailed(_ context.Context, id primitive.ObjectID, reason string, at time.Time) error {
	return t.update(id, func(d *models.Transaction) {
		d.Status = consts.TransactionFailed
		d.ProcessedAt = &at
		d.LastError = reason
	})
}

func (t *Transactions) FindCreatedBetween(_ context.Context, from, to time.Time) ([]models.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []models.Transaction
	for _, d := range t.docs {
		if !d.CreatedAt.Before(from) && d.CreatedAt.Before(to) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LoanID != out[j].LoanID {
			return out[i].LoanID.Hex() < out[j].LoanID.Hex()
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out, nil
}

// INSTALLMENTS //

type Installments struct {
	mu   sync.Mutex
	docs []models.Installment
}

func (s *Installments) CreateSchedule(_ context.Context, installments []models.Installment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
next:
	for _, inst := range installments {
		for _, d := range s.docs {
			if d.LoanID == inst.LoanID && d.Number == inst.Number {
				continue next
			}
		}
		if inst.ID.IsZero() {
			inst.ID = primitive.NewObjectID()
		}
		s.docs = append(s.docs, inst)
	}
	return nil
}

func (s *Installments) FindByLoan(_ context.Context, loanID primitive.ObjectID) ([]models.Installment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Installment
	for _, d := range s.docs {
		if d.LoanID == loanID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *Installments) FindByLoanAndNumber(_ context.Context, loanID primitive.ObjectID, number int) (*models.Installment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.docs {
		if d.LoanID == loanID && d.Number == number {
			out := d
			return &out, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *Installments) FindDuePending(_ context.Context, now time.Time, limit int64) ([]models.Installment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Installment
	for _, d := range s.docs {
		if d.Status == consts.InstallmentPending && d.DueDate.Before(now) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Installments) setStatus(id primitive.ObjectID, allowed []consts.InstallmentStatus, fn func(*models.Installment)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if s.docs[i].ID != id {
			continue
		}
		for _, st := range allowed {
			if s.docs[i].Status == st {
				fn(&s.docs[i])
				return true
			}
		}
		return false
	}
	return false
}

func (s *Installments) MarkOverdue(_ context.Context, id primitive.ObjectID) (bool, error) {
	return s.setStatus(id, []consts.InstallmentStatus{consts.InstallmentPending}, func(d *models.Installment) {
		d.Status = consts.InstallmentOverdue
	}), nil
}

func (s *Installments) MarkPaid(_ context.Context, id primitive.ObjectID, ref string, at time.Time) (bool, error) {
	return s.setStatus(id, []consts.InstallmentStatus{consts.InstallmentPending, consts.InstallmentOverdue}, func(d *models.Installment) {
		d.Status = consts.InstallmentPaid
		d.PaymentRef = ref
		d.PaidAt = &at
	}), nil
}

func (s *Installments) count(loanID primitive.ObjectID, statuses ...consts.InstallmentStatus) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, d := range s.docs {
		if d.LoanID != loanID {
			continue
		}
		for _, st := range statuses {
			if d.Status == st {
				n++
			}
		}
	}
	return n
}

func (s *Installments) CountUnpaid(_ context.Context, loanID primitive.ObjectID) (int64, error) {
	return s.count(loanID, consts.InstallmentPending, consts.InstallmentOverdue), nil
}

func (s *Installments) CountOverdue(_ context.Context, loanID primitive.ObjectID) (int64, error) {
	return s.count(loanID, consts.InstallmentOverdue), nil
}

// SCORING RESULTS //

type ScoringResults struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.ScoringResult
}

func (s *ScoringResults) CreateOnce(_ context.Context, r *models.ScoringResult) (*models.ScoringResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs == nil {
		s.docs = make(map[primitive.ObjectID]models.ScoringResult)
	}
	if existing, ok := s.docs[r.LoanID]; ok {
		return &existing, nil
	}
	doc := *r
	doc.ID = primitive.NewObjectID()
	s.docs[r.LoanID] = doc
	return &doc, nil
}

func (s *ScoringResults) FindByLoan(_ context.Context, loanID primitive.ObjectID) (*models.ScoringResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[loanID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &doc, nil
}

// BANKS //

type BankPartners struct {
	Partners []models.BankPartner
}

func (b *BankPartners) FindByCode(_ context.Context, code string) (*models.BankPartner, error) {
	for _, p := range b.Partners {
		if p.Code == code {
			out := p
			return &out, nil
		}
	}
	return nil, consts.ErrorUnknownBank
}

func (b *BankPartners) FindActive(context.Context) ([]models.BankPartner, error) {
	var out []models.BankPartner
	for _, p := range b.Partners {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

type BankRecords struct {
	mu   sync.Mutex
	docs []models.BankRecord
}

func (b *BankRecords) FindByNUIT(_ context.Context, nuit string) (*models.BankRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.docs {
		if d.NUIT == nuit {
			out := d
			return &out, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (b *BankRecords) FindByPhoneOrName(_ context.Context, phone, name string) (*models.BankRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.docs {
		if (phone != "" && d.PhoneNumber == phone) || (name != "" && strings.EqualFold(d.Name, name)) {
			out := d
			return &out, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (b *BankRecords) UpsertMany(_ context.Context, records []models.BankRecord) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
outer:
	for _, r := range records {
		for i := range b.docs {
			if b.docs[i].BankCode == r.BankCode && b.docs[i].NUIT == r.NUIT {
				r.ID = b.docs[i].ID
				b.docs[i] = r
				n++
				continue outer
			}
		}
		r.ID = primitive.NewObjectID()
		b.docs = append(b.docs, r)
		n++
	}
	return n, nil
}

func (b *BankRecords) All() []models.BankRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.BankRecord(nil), b.docs...)
}
