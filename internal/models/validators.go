package models

import (
	"fmt"

	"github.com/Conceptual-Machines/counterpoint-api/internal/theory"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the music-theory tags used in binding annotations:
// pitch, duration, mode and finalis.
func RegisterValidators(v *validator.Validate) error {
	for tag, fn := range map[string]validator.Func{
		"pitch":    validPitch,
		"duration": validDuration,
		"mode":     validMode,
		"finalis":  validFinalis,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %q validator: %w", tag, err)
		}
	}
	return nil
}

func validPitch(fl validator.FieldLevel) bool {
	_, err := theory.ParsePitch(fl.Field().String())
	return err == nil
}

func validDuration(fl validator.FieldLevel) bool {
	return theory.Duration(fl.Field().String()).Valid()
}

func validMode(fl validator.FieldLevel) bool {
	_, err := theory.ParseMode(fl.Field().String())
	return err == nil
}

func validFinalis(fl validator.FieldLevel) bool {
	_, err := theory.ParseFinalis(fl.Field().String())
	return err == nil
}
