package handlers

import (
	"emireminder/models"
	"emireminder/services/preference"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("reminderdays", func(fl validator.FieldLevel) bool {
			return preference.ValidReminderDays(fl.Field().String())
		})
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return validCategory(fl.Field().String())
		})
		_ = v.RegisterValidation("channel", func(fl validator.FieldLevel) bool {
			_, err := models.ParseChannel(fl.Field().String())
			return err == nil
		})
	}
}

func validCategory(s string) bool {
	for _, c := range models.Categories {
		if c == s {
			return true
		}
	}
	return false
}
