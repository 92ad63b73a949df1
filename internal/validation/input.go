package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinFullNameLength           = 2
	MaxFullNameLength           = 100
	MinRequestTitleLength       = 3
	MaxRequestTitleLength       = 200
	MinRequestDescriptionLength = 10
	MaxRequestDescriptionLength = 5000
	MaxLocationLength           = 255
	MaxSkillsLength             = 1000
	MaxFeedbackLength           = 2000
	MaxAccountDetailsLength     = 500
	MinRating                   = 1
	MaxRating                   = 5
	MinPrice                    = 0.0
	MaxPrice                    = 100000000.0 // 100 миллионов
	MaxExperienceYears          = 80
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart, domainPart := parts[0], parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	localRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !localRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidatePhone проверяет номер телефона.
func ValidatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("телефон обязателен")
	}

	phone = strings.TrimSpace(phone)

	phoneRegex := regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{6,19}$`)
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("некорректный формат телефона")
	}

	return nil
}

// ValidateFullName проверяет полное имя пользователя.
func ValidateFullName(fullName string) error {
	if fullName == "" {
		return fmt.Errorf("имя обязательно")
	}

	fullName = strings.TrimSpace(fullName)

	if err := ValidateLength("имя", fullName, MinFullNameLength, MaxFullNameLength); err != nil {
		return err
	}

	nameRegex := regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ\s\-'.]+$`)
	if !nameRegex.MatchString(fullName) {
		return fmt.Errorf("имя содержит недопустимые символы")
	}

	return nil
}

// ValidateRequestTitle проверяет заголовок заявки.
func ValidateRequestTitle(title string) error {
	if title == "" {
		return fmt.Errorf("заголовок заявки обязателен")
	}

	return ValidateLength("заголовок заявки", strings.TrimSpace(title), MinRequestTitleLength, MaxRequestTitleLength)
}

// ValidateRequestDescription проверяет описание заявки.
func ValidateRequestDescription(description string) error {
	if description == "" {
		return fmt.Errorf("описание заявки обязательно")
	}

	return ValidateLength("описание заявки", strings.TrimSpace(description), MinRequestDescriptionLength, MaxRequestDescriptionLength)
}

// ValidateLocation проверяет адрес выполнения работ.
func ValidateLocation(location string) error {
	if location == "" {
		return fmt.Errorf("адрес обязателен")
	}

	return ValidateLength("адрес", strings.TrimSpace(location), 0, MaxLocationLength)
}

// ValidatePrice проверяет стоимость работ.
func ValidatePrice(price *float64) error {
	if price != nil {
		if *price < MinPrice {
			return fmt.Errorf("стоимость не может быть отрицательной")
		}
		if *price > MaxPrice {
			return fmt.Errorf("стоимость не может превышать %.0f", MaxPrice)
		}
	}
	return nil
}

// ValidateRating проверяет оценку.
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("оценка должна быть от %d до %d", MinRating, MaxRating)
	}
	return nil
}

// ValidateFeedback проверяет текст отзыва.
func ValidateFeedback(feedback *string) error {
	if feedback != nil && *feedback != "" {
		return ValidateLength("отзыв", strings.TrimSpace(*feedback), 0, MaxFeedbackLength)
	}
	return nil
}

// ValidateExperienceYears проверяет стаж мастера.
func ValidateExperienceYears(years int) error {
	if years < 0 {
		return fmt.Errorf("стаж не может быть отрицательным")
	}
	if years > MaxExperienceYears {
		return fmt.Errorf("стаж не может превышать %d лет", MaxExperienceYears)
	}
	return nil
}

// ValidateSkills проверяет описание навыков мастера.
func ValidateSkills(skills *string) error {
	if skills != nil && *skills != "" {
		return ValidateLength("навыки", strings.TrimSpace(*skills), 0, MaxSkillsLength)
	}
	return nil
}

// ValidateAccountDetails проверяет реквизиты для вывода средств.
func ValidateAccountDetails(details string) error {
	if strings.TrimSpace(details) == "" {
		return fmt.Errorf("реквизиты обязательны")
	}

	return ValidateLength("реквизиты", strings.TrimSpace(details), 0, MaxAccountDetailsLength)
}
