package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ivan@example.com"))
	assert.NoError(t, ValidateEmail("Ivan.Petrov+tag@mail.ru"))

	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("no-at-sign"))
	assert.Error(t, ValidateEmail("two@@example.com"))
	assert.Error(t, ValidateEmail("ivan@localhost"))
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("+79991234567"))
	assert.NoError(t, ValidatePhone("8 (999) 123-45-67"))

	assert.Error(t, ValidatePhone(""))
	assert.Error(t, ValidatePhone("abc"))
	assert.Error(t, ValidatePhone("+7"))
}

func TestValidateRating(t *testing.T) {
	for rating := MinRating; rating <= MaxRating; rating++ {
		assert.NoError(t, ValidateRating(rating))
	}
	assert.Error(t, ValidateRating(0))
	assert.Error(t, ValidateRating(6))
	assert.Error(t, ValidateRating(-1))
}

func TestValidatePrice(t *testing.T) {
	assert.NoError(t, ValidatePrice(nil))

	price := 1500.0
	assert.NoError(t, ValidatePrice(&price))

	negative := -1.0
	assert.Error(t, ValidatePrice(&negative))

	tooBig := MaxPrice + 1
	assert.Error(t, ValidatePrice(&tooBig))
}

func TestValidateExperienceYears(t *testing.T) {
	assert.NoError(t, ValidateExperienceYears(0))
	assert.NoError(t, ValidateExperienceYears(MaxExperienceYears))
	assert.Error(t, ValidateExperienceYears(-1))
	assert.Error(t, ValidateExperienceYears(MaxExperienceYears+1))
}

func TestValidateAccountDetails(t *testing.T) {
	assert.NoError(t, ValidateAccountDetails("4276 0000 0000 0000"))
	assert.Error(t, ValidateAccountDetails(""))
	assert.Error(t, ValidateAccountDetails("   "))
}
