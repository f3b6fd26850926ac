package bankrecords

import (
	"context"
	"errors"
	"testing"
	"time"

	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/pkg/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestFindByNUITTrimsInput(t *testing.T) {
	store := &storetest.MockStore[models.BankRecord]{}
	store.On("FindOne", mock.Anything, bson.M{"nuit": "123456789"}, mock.Anything).
		Return(models.BankRecord{NUIT: "123456789", BankCode: "BCI"}, nil)

	rec, err := NewBankRecordRepositoryWithInterface(store).FindByNUIT(context.Background(), " 123456789 ")
	require.NoError(t, err)
	assert.Equal(t, "BCI", rec.BankCode)
}

func TestFindByPhoneOrName(t *testing.T) {
	t.Run("builds case-insensitive exact name match", func(t *testing.T) {
		store := &storetest.MockStore[models.BankRecord]{}
		store.On("FindOne", mock.Anything, mock.MatchedBy(func(f bson.M) bool {
			or := f["$or"].(bson.A)
			if len(or) != 2 {
				return false
			}
			re := or[1].(bson.M)["name"].(primitive.Regex)
			return re.Pattern == `^Ana M\. Macuacua$` && re.Options == "i"
		}), mock.Anything).Return(models.BankRecord{Name: "ANA M. MACUACUA"}, nil)

		rec, err := NewBankRecordRepositoryWithInterface(store).FindByPhoneOrName(context.Background(), "258841234567", " Ana M. Macuacua ")
		require.NoError(t, err)
		assert.Equal(t, "ANA M. MACUACUA", rec.Name)
	})

	t.Run("nothing to search by", func(t *testing.T) {
		store := &storetest.MockStore[models.BankRecord]{}
		_, err := NewBankRecordRepositoryWithInterface(store).FindByPhoneOrName(context.Background(), "", "  ")
		assert.ErrorIs(t, err, mongo.ErrNoDocuments)
		store.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUpsertMany(t *testing.T) {
	now := time.Now().UTC()
	records := []models.BankRecord{
		{BankCode: "BCI", NUIT: "111111111", SyncedAt: now},
		{BankCode: "BCI", NUIT: "222222222", SyncedAt: now},
	}

	t.Run("all written", func(t *testing.T) {
		store := &storetest.MockStore[models.BankRecord]{}
		store.On("UpdateOneRaw", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(&mongo.UpdateResult{UpsertedCount: 1}, nil).Twice()

		n, err := NewBankRecordRepositoryWithInterface(store).UpsertMany(context.Background(), records)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("partial failure reports progress", func(t *testing.T) {
		store := &storetest.MockStore[models.BankRecord]{}
		store.On("UpdateOneRaw", mock.Anything, bson.M{"bankCode": "BCI", "nuit": "111111111"}, mock.Anything, mock.Anything).
			Return(&mongo.UpdateResult{UpsertedCount: 1}, nil)
		store.On("UpdateOneRaw", mock.Anything, bson.M{"bankCode": "BCI", "nuit": "222222222"}, mock.Anything, mock.Anything).
			Return(nil, errors.New("timeout"))

		n, err := NewBankRecordRepositoryWithInterface(store).UpsertMany(context.Background(), records)
		assert.Error(t, err)
		assert.Equal(t, 1, n)
	})
}
