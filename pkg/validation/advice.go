package validation

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// MaxTitleLength bounds the subject title in characters.
	MaxTitleLength = 100
	// MaxContentLength bounds the document excerpt in characters.
	MaxContentLength = 2000
	// MaxCharLimit bounds the optional rewrite length constraint.
	MaxCharLimit = 2000
)

// AdviceRequestValidator validates advice-related requests
type AdviceRequestValidator struct{}

// NewAdviceRequestValidator creates a new AdviceRequestValidator
func NewAdviceRequestValidator() *AdviceRequestValidator {
	return &AdviceRequestValidator{}
}

// ValidateTitle validates the subject title
func (v *AdviceRequestValidator) ValidateTitle(title string) error {
	if title == "" {
		return errors.New("title cannot be empty")
	}
	if length := utf8.RuneCountInString(title); length > MaxTitleLength {
		return fmt.Errorf("title must be at most %d characters, got %d", MaxTitleLength, length)
	}
	return nil
}

// ValidateContent validates the document excerpt to critique
func (v *AdviceRequestValidator) ValidateContent(content string) error {
	if content == "" {
		return errors.New("content cannot be empty")
	}
	if length := utf8.RuneCountInString(content); length > MaxContentLength {
		return fmt.Errorf("content must be at most %d characters, got %d", MaxContentLength, length)
	}
	return nil
}

// ValidateCharLimit validates the optional rewrite length constraint
func (v *AdviceRequestValidator) ValidateCharLimit(charLimit int) error {
	if charLimit == 0 {
		return nil // Optional
	}
	if charLimit < 0 || charLimit > MaxCharLimit {
		return fmt.Errorf("char_limit must be between 1 and %d, got %d", MaxCharLimit, charLimit)
	}
	return nil
}

// ValidateAdviceRequest validates a complete advice request
func (v *AdviceRequestValidator) ValidateAdviceRequest(title, content string, charLimit int) error {
	if err := v.ValidateTitle(title); err != nil {
		return err
	}

	if err := v.ValidateContent(content); err != nil {
		return err
	}

	if err := v.ValidateCharLimit(charLimit); err != nil {
		return err
	}

	return nil
}
