package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireven/shopfront/internal/domain/coupon"
)

func testEvent(action Action) Event {
	return Event{
		Action: action,
		Coupon: coupon.Coupon{ID: "c-1", Label: "Welcome", Type: coupon.DiscountPercentage},
	}
}

func TestHubPublishFansOut(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ch1, cancel1 := hub.Subscribe()
	defer cancel1()
	ch2, cancel2 := hub.Subscribe()
	defer cancel2()

	hub.Publish(testEvent(ActionCreated))

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, ActionCreated, ev.Action)
			assert.Equal(t, "c-1", ev.Coupon.ID)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestHubSlowSubscriberDropsEvents(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	defer cancel()

	// Publish never blocks: overflow beyond the buffer is dropped.
	for i := 0; i < subscriberBuffer*2; i++ {
		hub.Publish(testEvent(ActionUpdated))
	}

	assert.Len(t, ch, subscriberBuffer)
}

func TestHubCancelStopsDelivery(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	cancel()

	hub.Publish(testEvent(ActionDeleted))

	_, open := <-ch
	assert.False(t, open)
}

func TestHubClose(t *testing.T) {
	hub := NewHub()

	ch, _ := hub.Subscribe()
	hub.Close()

	_, open := <-ch
	assert.False(t, open)

	// Publishing and closing again are no-ops.
	hub.Publish(testEvent(ActionCreated))
	hub.Close()

	late, _ := hub.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestEncodeEvent(t *testing.T) {
	maxCap := decimal.RequireFromString("50")
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	ev := Event{
		Action: ActionUpdated,
		Coupon: coupon.Coupon{
			ID:       "c-1",
			Label:    "Summer sale",
			Type:     coupon.DiscountPercentage,
			Discount: decimal.NewFromInt(10),
			Conditions: coupon.Conditions{
				MinSpend:       decimal.NewFromInt(100),
				FirstTimeBuyer: true,
				MaxCap:         &maxCap,
			},
			CampaignStart:       start,
			CampaignEnd:         start.AddDate(0, 0, 7),
			ValidAfterClaimDays: 3,
			Active:              true,
			AssignTo:            coupon.AudienceEveryone,
			UsageLimitPerUser:   1,
		},
	}

	raw := EncodeEvent(ev)

	var decoded struct {
		Action string `json:"action"`
		Coupon struct {
			ID         string  `json:"id"`
			Label      string  `json:"label"`
			Type       string  `json:"type"`
			Discount   float64 `json:"discount"`
			Conditions struct {
				MinSpend       float64  `json:"minSpend"`
				FirstTimeBuyer bool     `json:"firstTimeBuyer"`
				MaxCap         *float64 `json:"maxCap"`
			} `json:"conditions"`
			CampaignStart       string `json:"campaignStart"`
			CampaignEnd         string `json:"campaignEnd"`
			ValidAfterClaimDays int    `json:"validAfterClaimDays"`
			Active              bool   `json:"active"`
			AssignTo            string `json:"assignTo"`
			UsageLimitPerUser   int    `json:"usageLimitPerUser"`
			AutoIssued          bool   `json:"autoIssued"`
		} `json:"coupon"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "updated", decoded.Action)
	assert.Equal(t, "c-1", decoded.Coupon.ID)
	assert.Equal(t, "percentage", decoded.Coupon.Type)
	assert.Equal(t, float64(10), decoded.Coupon.Discount)
	assert.Equal(t, float64(100), decoded.Coupon.Conditions.MinSpend)
	assert.True(t, decoded.Coupon.Conditions.FirstTimeBuyer)
	require.NotNil(t, decoded.Coupon.Conditions.MaxCap)
	assert.Equal(t, float64(50), *decoded.Coupon.Conditions.MaxCap)
	assert.Equal(t, "2025-07-01T00:00:00Z", decoded.Coupon.CampaignStart)
	assert.Equal(t, 3, decoded.Coupon.ValidAfterClaimDays)
	assert.True(t, decoded.Coupon.Active)
	assert.Equal(t, "everyone", decoded.Coupon.AssignTo)
	assert.False(t, decoded.Coupon.AutoIssued)
}

func TestEncodeEventNilMaxCap(t *testing.T) {
	raw := EncodeEvent(testEvent(ActionCreated))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	conditions := decoded["coupon"].(map[string]any)["conditions"].(map[string]any)
	assert.Nil(t, conditions["maxCap"])
}
