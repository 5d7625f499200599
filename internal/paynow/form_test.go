package paynow

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netcash/paynow-go/internal/domain/models"
)

func TestNewForm(t *testing.T) {
	t.Run("rejects empty service key", func(t *testing.T) {
		form, err := NewForm("")
		require.Error(t, err)
		assert.Nil(t, form)
	})

	t.Run("seeds documented defaults", func(t *testing.T) {
		form, err := NewForm("svc-key-123")
		require.NoError(t, err)

		assert.Equal(t, "svc-key-123", form.Field(FieldServiceKey))
		assert.Equal(t, "0", form.Field(FieldAmount))
		assert.Equal(t, "N", form.Field(FieldBudget))
		assert.Equal(t, "0", form.Field(FieldReturnCardDetail))
		assert.Equal(t, "0", form.Field(FieldSubscriptionIsSubscription))
	})
}

func TestFormSetField(t *testing.T) {
	form, err := NewForm("svc")
	require.NoError(t, err)

	assert.True(t, form.SetField(FieldDescription, "Order 42"))
	assert.Equal(t, "Order 42", form.Field(FieldDescription))

	// Unknown keys are ignored, not rejected
	assert.False(t, form.SetField(FieldType("m99"), "x"))
}

func TestFormSetAmount(t *testing.T) {
	form, err := NewForm("svc")
	require.NoError(t, err)

	t.Run("rejects exact zero", func(t *testing.T) {
		err := form.SetAmount(decimal.Zero)
		require.Error(t, err)
	})

	t.Run("accepts positive", func(t *testing.T) {
		require.NoError(t, form.SetAmount(decimal.NewFromFloat(129.99)))
		assert.Equal(t, "129.99", form.Field(FieldAmount))
	})

	t.Run("passes negative through unchanged", func(t *testing.T) {
		require.NoError(t, form.SetAmount(decimal.NewFromInt(-5)))
		assert.Equal(t, "-5", form.Field(FieldAmount))
	})
}

func TestFormSetCellphone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain local number", input: "0821234567", want: "0821234567"},
		{name: "international with plus", input: "+27 82 123 4567", want: "0821234567"},
		{name: "international without plus", input: "27821234567", want: "0821234567"},
		{name: "parens and dashes", input: "(082) 123-4567", want: "0821234567"},
		{name: "too short", input: "082123", wantErr: true},
		{name: "missing leading zero", input: "821234567", wantErr: true},
		{name: "too long", input: "08212345678", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, err := NewForm("svc")
			require.NoError(t, err)

			err = form.SetCellphone(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, form.Field(FieldCellphone))
		})
	}
}

func TestFormSetEmail(t *testing.T) {
	form, err := NewForm("svc")
	require.NoError(t, err)

	require.NoError(t, form.SetEmail("buyer@example.com"))
	assert.Equal(t, "buyer@example.com", form.Field(FieldEmail))

	assert.Error(t, form.SetEmail("not-an-email"))
	assert.Error(t, form.SetEmail("Buyer <buyer@example.com>"))
}

func TestFormSetExtraField(t *testing.T) {
	form, err := NewForm("svc")
	require.NoError(t, err)

	require.NoError(t, form.SetExtraField("a", 1))
	require.NoError(t, form.SetExtraField("b", 2))
	require.NoError(t, form.SetExtraField("c", 3))
	assert.Equal(t, "a", form.Field(FieldExtra1))
	assert.Equal(t, "b", form.Field(FieldExtra2))
	assert.Equal(t, "c", form.Field(FieldExtra3))

	assert.Error(t, form.SetExtraField("d", 0))
	assert.Error(t, form.SetExtraField("d", 4))
}

func TestFormOrderIDRoundTrip(t *testing.T) {
	form, err := NewForm("svc")
	require.NoError(t, err)

	form.SetOrderID("INV-2041")
	reference := form.Field(FieldUniqueID)
	require.True(t, strings.HasPrefix(reference, "INV-2041__"))

	// The callback echoes the reference; the original order id must come back
	response := NewResponse(map[string]string{KeyReference: reference})
	assert.Equal(t, "INV-2041", response.OrderID())
}

func TestFormSubscriptionStartDate(t *testing.T) {
	form, err := NewForm("svc")
	require.NoError(t, err)

	today := time.Now().UTC()

	t.Run("today is allowed", func(t *testing.T) {
		require.NoError(t, form.SetSubscriptionStartDate(today))
		assert.Equal(t, today.Format("2006-01-02"), form.Field(FieldSubscriptionStartDate))
	})

	t.Run("yesterday is rejected", func(t *testing.T) {
		assert.Error(t, form.SetSubscriptionStartDate(today.AddDate(0, 0, -1)))
	})

	t.Run("future is allowed", func(t *testing.T) {
		require.NoError(t, form.SetSubscriptionStartDate(today.AddDate(0, 1, 0)))
	})
}

func TestFormSubscriptionStartDateString(t *testing.T) {
	future := time.Now().UTC().AddDate(0, 2, 0)

	layouts := []string{"2006-01-02", "2006/01/02", "02 Jan 2006", "20060102"}
	for _, layout := range layouts {
		t.Run(layout, func(t *testing.T) {
			form, err := NewForm("svc")
			require.NoError(t, err)

			require.NoError(t, form.SetSubscriptionStartDateString(future.Format(layout)))
			assert.Equal(t, future.Format("2006-01-02"), form.Field(FieldSubscriptionStartDate))
		})
	}

	t.Run("garbage is rejected", func(t *testing.T) {
		form, err := NewForm("svc")
		require.NoError(t, err)
		assert.Error(t, form.SetSubscriptionStartDateString("next tuesday"))
	})
}

func TestFormSubscriptionSetters(t *testing.T) {
	form, err := NewForm("svc")
	require.NoError(t, err)

	t.Run("negative cycle rejected, zero means unlimited", func(t *testing.T) {
		assert.Error(t, form.SetSubscriptionCycle(-1))
		require.NoError(t, form.SetSubscriptionCycle(0))
		assert.Equal(t, "0", form.Field(FieldSubscriptionCycle))
	})

	t.Run("frequency by code and by name", func(t *testing.T) {
		require.NoError(t, form.SetSubscriptionFrequency(models.FrequencyMonthly))
		assert.Equal(t, "1", form.Field(FieldSubscriptionFrequency))

		require.NoError(t, form.SetSubscriptionFrequencyString("weekly"))
		assert.Equal(t, "2", form.Field(FieldSubscriptionFrequency))

		assert.Error(t, form.SetSubscriptionFrequencyString("fortnightly-ish"))
		assert.Error(t, form.SetSubscriptionFrequency(models.SubscriptionFrequency(9)))
	})

	t.Run("negative recurring amount rejected", func(t *testing.T) {
		assert.Error(t, form.SetSubscriptionAmount(decimal.NewFromInt(-10)))
		require.NoError(t, form.SetSubscriptionAmount(decimal.Zero))
	})

	t.Run("marking as subscription forces card detail return", func(t *testing.T) {
		form, err := NewForm("svc")
		require.NoError(t, err)

		form.SetIsSubscription(true)
		assert.Equal(t, "1", form.Field(FieldSubscriptionIsSubscription))
		assert.Equal(t, "1", form.Field(FieldReturnCardDetail))
	})
}

func TestFormCreateSubscription(t *testing.T) {
	start := time.Now().UTC().AddDate(0, 0, 7)

	t.Run("sets the full recurring block", func(t *testing.T) {
		form, err := NewForm("svc")
		require.NoError(t, err)

		require.NoError(t, form.CreateSubscription(
			decimal.NewFromFloat(49.50), models.FrequencyMonthly, start, 12))

		assert.Equal(t, "1", form.Field(FieldSubscriptionIsSubscription))
		assert.Equal(t, "12", form.Field(FieldSubscriptionCycle))
		assert.Equal(t, "1", form.Field(FieldSubscriptionFrequency))
		assert.Equal(t, start.Format("2006-01-02"), form.Field(FieldSubscriptionStartDate))
		assert.Equal(t, "49.5", form.Field(FieldSubscriptionRecurringAmount))
		// No once-off charge for a plain subscription
		assert.Equal(t, "0", form.Field(FieldAmount))
	})

	t.Run("adhoc charges the initial amount immediately", func(t *testing.T) {
		form, err := NewForm("svc")
		require.NoError(t, err)

		require.NoError(t, form.CreateAdHocSubscription(
			decimal.NewFromInt(100), decimal.NewFromInt(25), models.FrequencyWeekly, start, 0))

		assert.Equal(t, "100", form.Field(FieldAmount))
		assert.Equal(t, "25", form.Field(FieldSubscriptionRecurringAmount))
	})

	t.Run("zero adhoc amount leaves the once-off charge alone", func(t *testing.T) {
		form, err := NewForm("svc")
		require.NoError(t, err)

		require.NoError(t, form.CreateAdHocSubscription(
			decimal.Zero, decimal.NewFromInt(25), models.FrequencyWeekly, start, 0))

		assert.Equal(t, "0", form.Field(FieldAmount))
	})

	t.Run("a failed setter leaves earlier mutations applied", func(t *testing.T) {
		form, err := NewForm("svc")
		require.NoError(t, err)

		err = form.CreateSubscription(
			decimal.NewFromInt(25), models.SubscriptionFrequency(42), start, 6)
		require.Error(t, err)
		assert.Equal(t, "1", form.Field(FieldSubscriptionIsSubscription))
		assert.Equal(t, "6", form.Field(FieldSubscriptionCycle))
	})
}

func TestFormMakeForm(t *testing.T) {
	form, err := NewForm("svc")
	require.NoError(t, err)

	form.SetOrderID("ORDER-7")
	form.SetDescription(`Widgets & "gadgets"`)
	require.NoError(t, form.SetAmount(decimal.NewFromInt(50)))

	html := form.MakeForm(true, "Pay Now")

	assert.Contains(t, html, `action="`+ActionURL+`"`)
	assert.Contains(t, html, `method="POST"`)
	assert.Contains(t, html, "name='m1' value='svc'")
	assert.Contains(t, html, "name='p4' value='50'")
	// Values are HTML-escaped
	assert.Contains(t, html, "Widgets &amp; &#34;gadgets&#34;")
	assert.Contains(t, html, `type="submit" value="Pay Now"`)

	withoutSubmit := form.MakeForm(false, "")
	assert.NotContains(t, withoutSubmit, "submit")
}
