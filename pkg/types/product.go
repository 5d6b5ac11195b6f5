package types

// CreditPack is a one-time purchasable credit bundle. Packs are declared in
// config and matched against the product id carried by order webhooks.
type CreditPack struct {
	ID                string          `json:"id" mapstructure:"id"`
	Platform          BillingPlatform `json:"platform" mapstructure:"platform"`
	PlatformProductID string          `json:"platform_product_id" mapstructure:"platform_product_id"`
	Credits           int64           `json:"credits" mapstructure:"credits"`
}

// PremiumProduct maps a platform subscription product to premium entitlement
// and the bonus credits granted on first purchase and on each renewal.
type PremiumProduct struct {
	ID                  string          `json:"id" mapstructure:"id"`
	Platform            BillingPlatform `json:"platform" mapstructure:"platform"`
	PlatformProductID   string          `json:"platform_product_id" mapstructure:"platform_product_id"`
	ProductType         string          `json:"product_type" mapstructure:"product_type"`
	InitialBonusCredits int64           `json:"initial_bonus_credits" mapstructure:"initial_bonus_credits"`
	RenewalBonusCredits int64           `json:"renewal_bonus_credits" mapstructure:"renewal_bonus_credits"`
}
