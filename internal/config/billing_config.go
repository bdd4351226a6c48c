package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// BillingConfig represents the complete configuration
type BillingConfig struct {
	Billing   BillingPolicy   `toml:"billing"`
	Numbering NumberingConfig `toml:"numbering"`
	Recurring RecurringConfig `toml:"recurring"`
	Storage   StorageConfig   `toml:"storage"`
}

// BillingPolicy contains the calculation policies applied to every invoice
type BillingPolicy struct {
	// DiscountAfterTax switches the discount to apply on the tax-inclusive
	// total instead of per line before tax.
	DiscountAfterTax bool `toml:"discount_after_tax"`
	// TaxExclusive adds tax on top of line prices instead of treating
	// prices as tax-inclusive.
	TaxExclusive    bool   `toml:"tax_exclusive"`
	DefaultCurrency string `toml:"default_currency"`
	// SecretToken seeds the public client-view link tokens.
	SecretToken string `toml:"secret_token"`
}

// NumberingConfig contains the invoice number template
type NumberingConfig struct {
	// NumberFormat is a macro template, e.g. "INV-{{year}}-{{id}}".
	NumberFormat string `toml:"number_format"`
	// SubjectFormat optionally prefills the invoice subject.
	SubjectFormat string `toml:"subject_format"`
}

// RecurringConfig contains recurring invoice generation settings
type RecurringConfig struct {
	Enabled bool `toml:"enabled"`
	// RunIntervalMinutes is how often the scheduler looks for due profiles.
	RunIntervalMinutes int `toml:"run_interval_minutes"`
}

// StorageConfig contains object storage settings for rendered PDFs
type StorageConfig struct {
	Bucket string `toml:"bucket"`
}

// LoadBillingConfig loads configuration from a TOML file
func LoadBillingConfig(filename string) (*BillingConfig, error) {
	config := &BillingConfig{}
	_, err := toml.DecodeFile(filename, config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	config.applyDefaults()
	return config, nil
}

// DefaultBillingConfig returns the configuration used when no file is given,
// with environment overrides for the billing policies.
func DefaultBillingConfig() *BillingConfig {
	config := &BillingConfig{}
	config.Billing.DiscountAfterTax = os.Getenv("BILLING_DISCOUNT_AFTER_TAX") == "true"
	config.Billing.TaxExclusive = os.Getenv("BILLING_TAX_EXCLUSIVE") != "false"
	if currency := os.Getenv("BILLING_DEFAULT_CURRENCY"); currency != "" {
		config.Billing.DefaultCurrency = currency
	}
	if secret := os.Getenv("BILLING_SECRET_TOKEN"); secret != "" {
		config.Billing.SecretToken = secret
	}
	if format := os.Getenv("BILLING_NUMBER_FORMAT"); format != "" {
		config.Numbering.NumberFormat = format
	}
	if format := os.Getenv("BILLING_SUBJECT_FORMAT"); format != "" {
		config.Numbering.SubjectFormat = format
	}
	config.Recurring.Enabled = os.Getenv("BILLING_RECURRING_DISABLED") != "true"
	config.applyDefaults()
	return config
}

func (c *BillingConfig) applyDefaults() {
	if c.Billing.DefaultCurrency == "" {
		c.Billing.DefaultCurrency = "USD"
	}
	if c.Numbering.NumberFormat == "" {
		c.Numbering.NumberFormat = "INV-{{year}}-{{id}}"
	}
	if c.Recurring.RunIntervalMinutes <= 0 {
		c.Recurring.RunIntervalMinutes = 60
	}
	if c.Storage.Bucket == "" {
		c.Storage.Bucket = "invoices"
	}
}
