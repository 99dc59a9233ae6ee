package models

import (
	"regexp"

	"github.com/go-playground/validator"
)

// interaction types map to taste update weights, see outfit package
const (
	InteractionWear   = "wear"
	InteractionSave   = "save"
	InteractionLike   = "like"
	InteractionEdit   = "edit"
	InteractionSkip   = "skip"
	InteractionReject = "reject"
)

func ValidateInteractionType(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString("^wear|save|like|edit|skip|reject$", fl.Field().String())
	return matched
}

func ValidateDepartment(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString("^male|female|unisex$", fl.Field().String())
	return matched
}

func ValidateUndertone(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString("^warm|cool|neutral$", fl.Field().String())
	return matched
}

func ValidateHeightBand(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString("^short|average|tall$", fl.Field().String())
	return matched
}
