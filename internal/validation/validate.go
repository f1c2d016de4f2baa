// Package validation provides centralized input validation for container
// names, object keys, and key prefixes before they reach a store backend.
package validation

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/blobkit/transfer/errors"
)

// ValidateContainerName validates that a container name is DNS-compliant.
// Returns ErrInvalidContainerName if the name is invalid.
func ValidateContainerName(container string) error {
	if container == "" {
		return errors.NewError("validateContainerName", errors.ErrInvalidContainerName).
			WithContainer(container).
			WithMessage("container name cannot be empty")
	}

	if len(container) < 3 || len(container) > 63 {
		return errors.NewError("validateContainerName", errors.ErrInvalidContainerName).
			WithContainer(container).
			WithMessage("container name must be between 3 and 63 characters long")
	}

	for _, char := range container {
		if !isValidContainerChar(char) {
			return errors.NewError("validateContainerName", errors.ErrInvalidContainerName).
				WithContainer(container).
				WithMessage("container name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}

	if container[0] == '-' || container[0] == '.' ||
		container[len(container)-1] == '-' || container[len(container)-1] == '.' {
		return errors.NewError("validateContainerName", errors.ErrInvalidContainerName).
			WithContainer(container).
			WithMessage("container name cannot start or end with a hyphen or dot")
	}

	if hasAdjacentSpecialChars(container) {
		return errors.NewError("validateContainerName", errors.ErrInvalidContainerName).
			WithContainer(container).
			WithMessage("container name cannot contain two adjacent periods or hyphens")
	}

	return nil
}

// ValidateObjectKey validates a single object key. This includes preventing
// path traversal and control characters.
func ValidateObjectKey(key string) error {
	if key == "" {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot be empty")
	}
	return validateKeyBody(key)
}

// ValidateKeyPrefix validates a listing prefix. Unlike object keys, the
// empty prefix is valid: it addresses the container root.
func ValidateKeyPrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	return validateKeyBody(prefix)
}

func validateKeyBody(key string) error {
	if hasPathTraversal(key) {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot contain path traversal sequences")
	}

	if len(key) > 1024 {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot exceed 1024 characters")
	}

	if hasControlCharacters(key) {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot contain control characters")
	}

	return nil
}

// isValidContainerChar checks if a character is valid in a container name
func isValidContainerChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

// hasAdjacentSpecialChars checks for adjacent special characters
func hasAdjacentSpecialChars(container string) bool {
	for i := 0; i < len(container)-1; i++ {
		if (container[i] == '.' && container[i+1] == '.') ||
			(container[i] == '-' && container[i+1] == '-') {
			return true
		}
	}
	return false
}

// hasPathTraversal checks for path traversal attempts in object keys
func hasPathTraversal(key string) bool {
	if strings.Contains(key, "..") {
		return true
	}

	cleaned := filepath.Clean(key)
	if strings.HasPrefix(cleaned, "..") || strings.HasPrefix(cleaned, "/") {
		return true
	}

	// Windows-style absolute paths
	if len(cleaned) >= 3 && cleaned[1] == ':' && (cleaned[2] == '\\' || cleaned[2] == '/') {
		return true
	}

	return false
}

// hasControlCharacters checks for control characters in the key
func hasControlCharacters(key string) bool {
	for _, char := range key {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}
