package normalizer_test

import (
	"testing"

	"bitbucket.org/crgw/booking-engine/internal/normalizer"
	"bitbucket.org/crgw/booking-engine/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorizeExtra(t *testing.T) {
	assert.Equal(t, schema.ExtraTypeProtection, normalizer.CategorizeExtra("insurance"))
	assert.Equal(t, schema.ExtraTypeProtection, normalizer.CategorizeExtra("scdw"))
	assert.Equal(t, schema.ExtraTypeEquipment, normalizer.CategorizeExtra("equipment"))
	assert.Equal(t, schema.ExtraTypeEquipment, normalizer.CategorizeExtra(""))
	// categorization is by tag, a name containing "cdw" is not enough
	assert.Equal(t, schema.ExtraTypeEquipment, normalizer.CategorizeExtra("supercdw-package"))
}

func TestMergeSelectedExtras(t *testing.T) {
	available := []schema.Extra{
		{Code: "CDW", Type: schema.ExtraTypeProtection, Required: true, UnitPrice: schema.PriceAmount{Amount: 12, Currency: "EUR"}},
		{Code: "GPS", Type: schema.ExtraTypeEquipment, Included: true, UnitPrice: schema.PriceAmount{Amount: 5, Currency: "EUR"}},
		{Code: "BBS", Type: schema.ExtraTypeEquipment, UnitPrice: schema.PriceAmount{Amount: 7.50, Currency: "EUR"}},
		{Code: "ADD", Type: schema.ExtraTypeEquipment, UnitPrice: schema.PriceAmount{Amount: 9, Currency: "EUR"}},
	}

	merged := normalizer.MergeSelectedExtras(available, map[string]int{"BBS": 2})

	require.Len(t, merged, 3)

	assert.Equal(t, "CDW", merged[0].Code)
	assert.Equal(t, 1, merged[0].Quantity)
	assert.Equal(t, schema.RoundedFloat(12), merged[0].Total.Amount)

	// included extras travel with a zero total
	assert.Equal(t, "GPS", merged[1].Code)
	assert.Equal(t, schema.RoundedFloat(0), merged[1].Total.Amount)

	assert.Equal(t, "BBS", merged[2].Code)
	assert.Equal(t, 2, merged[2].Quantity)
	assert.Equal(t, schema.RoundedFloat(15), merged[2].Total.Amount)
}

func TestFindDeposit(t *testing.T) {
	deposit := 500.0
	excess := 900.0

	t.Run("should return the first block carrying data", func(t *testing.T) {
		found := normalizer.FindDeposit(
			nil,
			&schema.DepositInfo{Currency: "EUR"},
			&schema.DepositInfo{DepositAmount: &deposit, Currency: "EUR"},
			&schema.DepositInfo{ExcessAmount: &excess},
		)

		require.NotNil(t, found)
		assert.Equal(t, 500.0, *found.DepositAmount)
	})

	t.Run("should report no deposit when every block is empty", func(t *testing.T) {
		assert.Nil(t, normalizer.FindDeposit(nil, &schema.DepositInfo{Currency: "USD"}))
	})
}
