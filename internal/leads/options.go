package leads

// Option is one choice of a select field.
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// PropertyConditionOptions are offered on the property-details step.
var PropertyConditionOptions = []Option{
	{Value: "excellent", Label: "Excellent", Description: "Move-in ready, recently updated"},
	{Value: "good", Label: "Good", Description: "Minor cosmetic work needed"},
	{Value: "fair", Label: "Fair", Description: "Needs some repairs and updates"},
	{Value: "poor", Label: "Needs Work", Description: "Major repairs needed"},
	{Value: "distressed", Label: "Distressed", Description: "Fire, water, or structural damage"},
}

// TimeframeOptions are offered on the timeline step.
var TimeframeOptions = []Option{
	{Value: "asap", Label: "As soon as possible", Description: "Close in as little as 7 days"},
	{Value: "30-days", Label: "Within 30 days"},
	{Value: "60-days", Label: "Within 60 days"},
	{Value: "90-days", Label: "Within 90 days"},
	{Value: "flexible", Label: "I'm flexible", Description: "Just exploring my options"},
}

// ReferralSourceOptions record how the seller found the site.
var ReferralSourceOptions = []Option{
	{Value: "google", Label: "Google search"},
	{Value: "facebook", Label: "Facebook"},
	{Value: "mailer", Label: "Postcard or letter"},
	{Value: "sign", Label: "Road sign"},
	{Value: "referral", Label: "Friend or family"},
	{Value: "other", Label: "Other"},
}

// OptionsFor returns the catalog behind a select field, or nil.
func OptionsFor(field string) []Option {
	switch field {
	case FieldPropertyCondition:
		return PropertyConditionOptions
	case FieldTimeframe:
		return TimeframeOptions
	case FieldReferralSource:
		return ReferralSourceOptions
	default:
		return nil
	}
}

// FindOption looks up value in opts.
func FindOption(opts []Option, value string) (Option, bool) {
	for _, o := range opts {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}
