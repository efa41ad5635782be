package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/repository"
)

// Well known setting keys.
const (
	SettingTaxRate               = "tax_rate"
	SettingCurrencySymbol        = "currency_symbol"
	SettingStoreName             = "store_name"
	SettingLowStockThreshold     = "low_stock_threshold"
	SettingFreeShippingThreshold = "free_shipping_threshold"
	SettingShippingCost          = "shipping_cost"
)

var (
	defaultTaxRate      = decimal.NewFromInt(18)
	defaultShippingCost = decimal.NewFromInt(200)
)

// DefaultSettings are inserted on startup whenever their key is missing.
func DefaultSettings() []models.StoreSetting {
	return []models.StoreSetting{
		{SettingKey: SettingTaxRate, SettingValue: "18", SettingType: models.SettingTypeNumber, Description: "Tax rate percentage applied to orders (e.g., 18 for 18%)"},
		{SettingKey: SettingCurrencySymbol, SettingValue: "Rs. ", SettingType: models.SettingTypeString, Description: "Currency symbol displayed in prices"},
		{SettingKey: SettingStoreName, SettingValue: "ZinyasRang", SettingType: models.SettingTypeString, Description: "Store name displayed across the site"},
		{SettingKey: SettingLowStockThreshold, SettingValue: "5", SettingType: models.SettingTypeNumber, Description: "Threshold for low stock warnings"},
		{SettingKey: SettingFreeShippingThreshold, SettingValue: "0", SettingType: models.SettingTypeNumber, Description: "Minimum order amount for free shipping (0 for always free)"},
		{SettingKey: SettingShippingCost, SettingValue: "200", SettingType: models.SettingTypeNumber, Description: "Flat shipping cost charged below the free shipping threshold"},
	}
}

// SettingValue is the parsed form of one setting.
type SettingValue struct {
	Value       any       `json:"value"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SettingDetail is a stored setting together with its parsed value.
type SettingDetail struct {
	models.StoreSetting
	Value any `json:"value"`
}

// SettingsSnapshot is every setting keyed by name plus the raw rows.
type SettingsSnapshot struct {
	Settings map[string]SettingValue `json:"settings"`
	Raw      []models.StoreSetting   `json:"raw"`
}

// PricingSettings are the settings read by checkout.
type PricingSettings struct {
	TaxRate               decimal.Decimal `json:"tax_rate"`
	ShippingCost          decimal.Decimal `json:"shipping_cost"`
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	CurrencySymbol        string          `json:"currency_symbol"`
	LowStockThreshold     int             `json:"low_stock_threshold"`
}

// DefaultPricingSettings is used for keys that are absent or unparsable.
func DefaultPricingSettings() PricingSettings {
	return PricingSettings{
		TaxRate:               defaultTaxRate,
		ShippingCost:          defaultShippingCost,
		FreeShippingThreshold: decimal.Zero,
		CurrencySymbol:        "Rs. ",
		LowStockThreshold:     5,
	}
}

// CreateSettingInput creates a brand-new setting key.
type CreateSettingInput struct {
	Key         string `json:"key" validate:"required"`
	Value       any    `json:"value"`
	Type        string `json:"type" validate:"omitempty,oneof=string number boolean json"`
	Description string `json:"description"`
}

// SettingsCache stores the pricing snapshot between requests.
type SettingsCache interface {
	Get(ctx context.Context) (*PricingSettings, bool)
	Set(ctx context.Context, settings PricingSettings)
	Invalidate(ctx context.Context)
}

// SettingsService reads and writes store settings.
type SettingsService struct {
	repo   repository.SettingsRepository
	cache  SettingsCache
	logger *zap.Logger
}

// NewSettingsService constructs SettingsService. cache may be nil.
func NewSettingsService(repo repository.SettingsRepository, cache SettingsCache, logger *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, cache: cache, logger: logger}
}

// Get returns one setting with its parsed value.
func (s *SettingsService) Get(ctx context.Context, key string) (*SettingDetail, error) {
	setting, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFoundError("Setting not found")
		}
		return nil, storageError("failed to fetch setting", err)
	}
	return &SettingDetail{StoreSetting: *setting, Value: ParseSettingValue(setting.SettingType, setting.SettingValue)}, nil
}

// All returns every setting, keyed and raw.
func (s *SettingsService) All(ctx context.Context) (*SettingsSnapshot, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageError("failed to fetch settings", err)
	}
	snapshot := &SettingsSnapshot{
		Settings: make(map[string]SettingValue, len(settings)),
		Raw:      settings,
	}
	for _, setting := range settings {
		snapshot.Settings[setting.SettingKey] = SettingValue{
			Value:       ParseSettingValue(setting.SettingType, setting.SettingValue),
			Type:        setting.SettingType,
			Description: setting.Description,
			UpdatedAt:   setting.UpdatedAt,
		}
	}
	return snapshot, nil
}

// Update overwrites the value of an existing key. Unknown keys are NotFound.
func (s *SettingsService) Update(ctx context.Context, key string, value any) (*SettingDetail, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, validationError("Setting key is required")
	}
	if value == nil {
		return nil, validationError("Setting value is required")
	}

	existing, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFoundError("Setting not found")
		}
		return nil, storageError("failed to fetch setting", err)
	}

	stored, err := stringifySettingValue(value)
	if err != nil {
		return nil, validationError("Setting value is invalid")
	}
	if err := checkSettingValue(existing.SettingType, stored); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateValue(ctx, key, stored)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFoundError("Setting not found")
		}
		return nil, storageError("failed to update setting", err)
	}
	s.invalidate(ctx)

	s.logger.Info("setting updated", zap.String("key", key))
	return &SettingDetail{StoreSetting: *updated, Value: ParseSettingValue(updated.SettingType, updated.SettingValue)}, nil
}

// Create adds a new key. Existing keys are a Conflict.
func (s *SettingsService) Create(ctx context.Context, input CreateSettingInput) (*SettingDetail, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.Value == nil {
		return nil, validationError("Setting value is required")
	}
	if input.Type == "" {
		input.Type = models.SettingTypeString
	}

	stored, err := stringifySettingValue(input.Value)
	if err != nil {
		return nil, validationError("Setting value is invalid")
	}
	if err := checkSettingValue(input.Type, stored); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByKey(ctx, input.Key); err == nil {
		return nil, conflictError("Setting already exists")
	} else if !repository.IsNotFound(err) {
		return nil, storageError("failed to fetch setting", err)
	}

	setting := &models.StoreSetting{
		SettingKey:   input.Key,
		SettingValue: stored,
		SettingType:  input.Type,
		Description:  input.Description,
	}
	if err := s.repo.Create(ctx, setting); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, conflictError("Setting already exists")
		}
		return nil, storageError("failed to create setting", err)
	}
	s.invalidate(ctx)

	return &SettingDetail{StoreSetting: *setting, Value: ParseSettingValue(setting.SettingType, setting.SettingValue)}, nil
}

// EnsureDefaults inserts any missing default setting.
func (s *SettingsService) EnsureDefaults(ctx context.Context) error {
	inserted, err := s.repo.InsertMissing(ctx, DefaultSettings())
	if err != nil {
		return storageError("failed to seed settings", err)
	}
	if inserted > 0 {
		s.logger.Info("seeded default settings", zap.Int64("inserted", inserted))
		s.invalidate(ctx)
	}
	return nil
}

// Pricing returns the checkout settings, served from cache when possible.
func (s *SettingsService) Pricing(ctx context.Context) (PricingSettings, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx); ok {
			return *cached, nil
		}
	}

	settings, err := s.repo.List(ctx)
	if err != nil {
		return PricingSettings{}, storageError("failed to load pricing settings", err)
	}
	pricing := PricingFromSettings(settings)

	if s.cache != nil {
		s.cache.Set(ctx, pricing)
	}
	return pricing, nil
}

// PricingFromSettings extracts the checkout settings, falling back to the
// defaults for absent or unparsable values.
func PricingFromSettings(settings []models.StoreSetting) PricingSettings {
	pricing := DefaultPricingSettings()
	for _, setting := range settings {
		value := strings.TrimSpace(setting.SettingValue)
		switch setting.SettingKey {
		case SettingTaxRate:
			if d, err := decimal.NewFromString(value); err == nil {
				pricing.TaxRate = d
			}
		case SettingShippingCost:
			if d, err := decimal.NewFromString(value); err == nil {
				pricing.ShippingCost = d
			}
		case SettingFreeShippingThreshold:
			if d, err := decimal.NewFromString(value); err == nil {
				pricing.FreeShippingThreshold = d
			}
		case SettingCurrencySymbol:
			pricing.CurrencySymbol = setting.SettingValue
		case SettingLowStockThreshold:
			if n, err := strconv.Atoi(value); err == nil {
				pricing.LowStockThreshold = n
			}
		}
	}
	return pricing
}

func (s *SettingsService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

// ParseSettingValue decodes a stored value according to its type. Invalid
// json falls back to the raw string.
func ParseSettingValue(settingType, raw string) any {
	switch settingType {
	case models.SettingTypeNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil
		}
		return f
	case models.SettingTypeBoolean:
		return raw == "true"
	case models.SettingTypeJSON:
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return raw
		}
		return decoded
	default:
		return raw
	}
}

func stringifySettingValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case int:
		return strconv.Itoa(v), nil
	case decimal.Decimal:
		return v.String(), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

// checkSettingValue rejects values that would not parse on read.
func checkSettingValue(settingType, stored string) error {
	switch settingType {
	case models.SettingTypeNumber:
		if _, err := decimal.NewFromString(strings.TrimSpace(stored)); err != nil {
			return validationError("Setting value must be a number")
		}
	case models.SettingTypeBoolean:
		if stored != "true" && stored != "false" {
			return validationError("Setting value must be true or false")
		}
	case models.SettingTypeString, models.SettingTypeJSON:
	default:
		return validationError("unknown setting type %q", settingType)
	}
	return nil
}
