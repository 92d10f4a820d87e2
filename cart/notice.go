package cart

// NoticeCode identifies a silent input correction. Clamps are not errors:
// the value is corrected and the UI shows an informational message.
type NoticeCode string

const (
	NoticeMaxDiscountApplied   NoticeCode = "max_discount_applied"
	NoticePriceExceedsLimit    NoticeCode = "price_exceeds_limit"
	NoticeNegativeInputClamped NoticeCode = "negative_input_clamped"
	NoticeBestOfferApplied     NoticeCode = "best_offer_applied"
)

type Notice struct {
	Code NoticeCode `json:"code"`
	Text string     `json:"text"`
}

func newNotice(code NoticeCode, text string) *Notice {
	return &Notice{Code: code, Text: text}
}
