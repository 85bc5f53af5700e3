package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("decimal", validDecimal)
	}
}

// validDecimal accepts strings that parse as a non-negative decimal amount
func validDecimal(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && !d.IsNegative()
}
