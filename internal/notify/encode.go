package notify

import (
	"time"

	"github.com/go-faster/jx"

	"github.com/mireven/shopfront/internal/domain/coupon"
)

// EncodeEvent renders the event as the JSON payload pushed over the change
// feed. The format is part of the client contract, so it is written out
// field by field rather than derived from struct tags.
func EncodeEvent(ev Event) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("action", func(e *jx.Encoder) { e.Str(string(ev.Action)) })
		e.Field("coupon", func(e *jx.Encoder) { encodeCoupon(e, &ev.Coupon) })
	})
	return e.Bytes()
}

func encodeCoupon(e *jx.Encoder, c *coupon.Coupon) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(c.ID) })
		e.Field("label", func(e *jx.Encoder) { e.Str(c.Label) })
		e.Field("type", func(e *jx.Encoder) { e.Str(string(c.Type)) })
		e.Field("discount", func(e *jx.Encoder) { e.Raw([]byte(c.Discount.String())) })
		e.Field("conditions", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("minSpend", func(e *jx.Encoder) { e.Raw([]byte(c.Conditions.MinSpend.String())) })
				e.Field("firstTimeBuyer", func(e *jx.Encoder) { e.Bool(c.Conditions.FirstTimeBuyer) })
				e.Field("maxCap", func(e *jx.Encoder) {
					if c.Conditions.MaxCap == nil {
						e.Null()
						return
					}
					e.Raw([]byte(c.Conditions.MaxCap.String()))
				})
			})
		})
		e.Field("campaignStart", func(e *jx.Encoder) { e.Str(c.CampaignStart.Format(time.RFC3339)) })
		e.Field("campaignEnd", func(e *jx.Encoder) { e.Str(c.CampaignEnd.Format(time.RFC3339)) })
		e.Field("validAfterClaimDays", func(e *jx.Encoder) { e.Int(c.ValidAfterClaimDays) })
		e.Field("active", func(e *jx.Encoder) { e.Bool(c.Active) })
		e.Field("assignTo", func(e *jx.Encoder) { e.Str(string(c.AssignTo)) })
		e.Field("usageLimitPerUser", func(e *jx.Encoder) { e.Int(c.UsageLimitPerUser) })
		e.Field("autoIssued", func(e *jx.Encoder) { e.Bool(c.AutoIssued) })
	})
}
