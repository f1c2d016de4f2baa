// Package validation provides centralized input validation logic.
// This includes container name validation, object key validation, and
// security checks.
//
// All user inputs are validated before being sent to the backing store to
// prevent path traversal and ensure compliance with store naming rules.
package validation
