package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BusinessRules are tenant independent knobs of order and payroll logic.
type BusinessRules struct {
	OrderNumberPrefix string       `yaml:"order_number_prefix"`
	Payroll           PayrollRules `yaml:"payroll"`
	Search            SearchRules  `yaml:"search"`
}

// PayrollRules are percentages of basic salary applied by batch generation.
type PayrollRules struct {
	TaxRate             float64 `yaml:"tax_rate"`
	SocialSecurityRate  float64 `yaml:"social_security_rate"`
	HealthInsuranceRate float64 `yaml:"health_insurance_rate"`
}

// SearchRules bound free text order search.
type SearchRules struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

const (
	defaultOrderNumberPrefix   = "ORD"
	defaultTaxRate             = 10
	defaultSocialSecurityRate  = 5
	defaultHealthInsuranceRate = 3
	defaultSearchLimit         = 10
	defaultSearchMaxLimit      = 50
)

// DefaultBusinessRules returns the built-in rule set.
func DefaultBusinessRules() BusinessRules {
	return BusinessRules{
		OrderNumberPrefix: defaultOrderNumberPrefix,
		Payroll: PayrollRules{
			TaxRate:             defaultTaxRate,
			SocialSecurityRate:  defaultSocialSecurityRate,
			HealthInsuranceRate: defaultHealthInsuranceRate,
		},
		Search: SearchRules{DefaultLimit: defaultSearchLimit, MaxLimit: defaultSearchMaxLimit},
	}
}

// LoadBusinessRules reads rules from a YAML file. An empty path yields defaults.
func LoadBusinessRules(path string) (BusinessRules, error) {
	rules := DefaultBusinessRules()
	if path == "" {
		return rules, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return BusinessRules{}, fmt.Errorf("read business config: %w", err)
	}
	if err := yaml.Unmarshal(content, &rules); err != nil {
		return BusinessRules{}, fmt.Errorf("parse business config: %w", err)
	}
	rules.normalize()
	return rules, nil
}

func (r *BusinessRules) normalize() {
	if r.OrderNumberPrefix == "" {
		r.OrderNumberPrefix = defaultOrderNumberPrefix
	}
	if r.Payroll.TaxRate < 0 {
		r.Payroll.TaxRate = defaultTaxRate
	}
	if r.Payroll.SocialSecurityRate < 0 {
		r.Payroll.SocialSecurityRate = defaultSocialSecurityRate
	}
	if r.Payroll.HealthInsuranceRate < 0 {
		r.Payroll.HealthInsuranceRate = defaultHealthInsuranceRate
	}
	if r.Search.DefaultLimit <= 0 {
		r.Search.DefaultLimit = defaultSearchLimit
	}
	if r.Search.MaxLimit <= 0 {
		r.Search.MaxLimit = defaultSearchMaxLimit
	}
	if r.Search.DefaultLimit > r.Search.MaxLimit {
		r.Search.DefaultLimit = r.Search.MaxLimit
	}
}
