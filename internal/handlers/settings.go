package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/services"
)

// SettingsHandler exposes store settings.
type SettingsHandler struct {
	service SettingsService
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(service SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// GetSettings returns one setting when ?key is given, otherwise all of them.
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	if key := c.Query("key"); key != "" {
		setting, err := h.service.Get(c.UserContext(), key)
		if err != nil {
			return err
		}
		return ok(c, setting)
	}

	snapshot, err := h.service.All(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, snapshot)
}

type updateSettingRequest struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// UpdateSetting changes the value of an existing key.
func (h *SettingsHandler) UpdateSetting(c *fiber.Ctx) error {
	var req updateSettingRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	setting, err := h.service.Update(c.UserContext(), req.Key, req.Value)
	if err != nil {
		return err
	}
	return okMessage(c, fiber.StatusOK, setting, "Setting updated successfully")
}

// CreateSetting adds a new key; an existing key is a conflict.
func (h *SettingsHandler) CreateSetting(c *fiber.Ctx) error {
	var input services.CreateSettingInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	setting, err := h.service.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return okMessage(c, fiber.StatusCreated, setting, "Setting created successfully")
}
