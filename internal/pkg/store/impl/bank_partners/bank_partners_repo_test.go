package bankpartners

import (
	"context"
	"testing"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/pkg/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestFindByCode(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		store := &storetest.MockStore[models.BankPartner]{}
		store.On("FindOne", mock.Anything, bson.M{"code": "BCI"}, mock.Anything).
			Return(models.BankPartner{Code: "BCI", Adapter: "bci"}, nil)

		p, err := NewBankPartnerRepositoryWithInterface(store).FindByCode(context.Background(), "BCI")
		require.NoError(t, err)
		assert.Equal(t, "bci", p.Adapter)
	})

	t.Run("unknown bank", func(t *testing.T) {
		store := &storetest.MockStore[models.BankPartner]{}
		store.On("FindOne", mock.Anything, mock.Anything, mock.Anything).
			Return(models.BankPartner{}, mongo.ErrNoDocuments)

		_, err := NewBankPartnerRepositoryWithInterface(store).FindByCode(context.Background(), "XYZ")
		assert.ErrorIs(t, err, consts.ErrorUnknownBank)
	})
}

func TestFindActive(t *testing.T) {
	store := &storetest.MockStore[models.BankPartner]{}
	store.On("Find", mock.Anything, bson.M{"active": true}, mock.Anything).
		Return([]models.BankPartner{{Code: "BCI"}, {Code: "BIM"}}, nil)

	partners, err := NewBankPartnerRepositoryWithInterface(store).FindActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, partners, 2)
}
