package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid currency", func(t *testing.T) {
		m, err := NewMoney(150, EUR)
		require.NoError(t, err)
		assert.Equal(t, int64(150), m.Amount())
		assert.Equal(t, EUR, m.Currency())
		assert.Equal(t, int32(2), m.Precision())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(150, "")
		assert.Error(t, err)
	})

	t.Run("rejects negative precision", func(t *testing.T) {
		_, err := NewMoneyWithPrecision(150, EUR, -1)
		assert.Error(t, err)
	})
}

func TestMoneyArithmetic(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		sum, err := NewMoneyEUR(100).Add(NewMoneyEUR(250))
		require.NoError(t, err)
		assert.Equal(t, int64(350), sum.Amount())
	})

	t.Run("subtract below zero", func(t *testing.T) {
		diff, err := NewMoneyEUR(100).Subtract(NewMoneyEUR(250))
		require.NoError(t, err)
		assert.Equal(t, int64(-150), diff.Amount())
		assert.True(t, diff.IsNegative())
	})

	t.Run("multiply by integer amount", func(t *testing.T) {
		assert.Equal(t, int64(200), NewMoneyEUR(100).MultiplyInt(2).Amount())
	})

	t.Run("negate is reversible", func(t *testing.T) {
		m := NewMoneyEUR(123)
		assert.True(t, m.Negate().Negate().Equals(m))
	})

	t.Run("currency mismatch is an error", func(t *testing.T) {
		usd, err := NewMoney(100, USD)
		require.NoError(t, err)

		_, err = NewMoneyEUR(100).Add(usd)
		assert.Error(t, err)

		_, err = NewMoneyEUR(100).Subtract(usd)
		assert.Error(t, err)

		_, err = NewMoneyEUR(100).LessThan(usd)
		assert.Error(t, err)
	})

	t.Run("precision mismatch is an error", func(t *testing.T) {
		threeDecimals, err := NewMoneyWithPrecision(1000, EUR, 3)
		require.NoError(t, err)

		_, err = NewMoneyEUR(100).Add(threeDecimals)
		assert.Error(t, err)
	})
}

func TestMoneyComparisons(t *testing.T) {
	t.Run("less than", func(t *testing.T) {
		less, err := NewMoneyEUR(100).LessThan(NewMoneyEUR(101))
		require.NoError(t, err)
		assert.True(t, less)
	})

	t.Run("greater than or equal", func(t *testing.T) {
		ge, err := NewMoneyEUR(100).GreaterThanOrEqual(NewMoneyEUR(100))
		require.NoError(t, err)
		assert.True(t, ge)
	})

	t.Run("equals requires identical denomination", func(t *testing.T) {
		usd, _ := NewMoney(100, USD)
		assert.False(t, NewMoneyEUR(100).Equals(usd))
		assert.True(t, NewMoneyEUR(100).Equals(NewMoneyEUR(100)))
	})
}

func TestMoneyDisplay(t *testing.T) {
	t.Run("decimal conversion", func(t *testing.T) {
		assert.Equal(t, "1.50", NewMoneyEUR(150).Decimal().StringFixed(2))
	})

	t.Run("string", func(t *testing.T) {
		assert.Equal(t, "1.50 EUR", NewMoneyEUR(150).String())
	})

	t.Run("vat share of inclusive price", func(t *testing.T) {
		// 121 cents gross at 21% VAT contains 21 cents of VAT
		share := NewMoneyEUR(121).VatShare(decimal.NewFromInt(21))
		assert.Equal(t, int64(21), share.Amount())
	})
}

func TestMoneyJSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		data, err := json.Marshal(NewMoneyEUR(150))
		require.NoError(t, err)
		assert.JSONEq(t, `{"amount":150,"currency":"EUR","precision":2}`, string(data))

		var m Money
		require.NoError(t, json.Unmarshal(data, &m))
		assert.True(t, m.Equals(NewMoneyEUR(150)))
	})

	t.Run("defaults apply when fields omitted", func(t *testing.T) {
		var m Money
		require.NoError(t, json.Unmarshal([]byte(`{"amount":99}`), &m))
		assert.Equal(t, DefaultCurrency, m.Currency())
		assert.Equal(t, int32(DefaultPrecision), m.Precision())
	})
}

func TestMoneyScan(t *testing.T) {
	t.Run("scans int64", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(int64(450)))
		assert.Equal(t, int64(450), m.Amount())
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("scans nil as zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("rejects unsupported types", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan(1.5))
	})
}
