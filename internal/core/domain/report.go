package domain

import "errors"

// ErrorReport is the structured error handed upward to the CLI layer.
// It is the only wire format the core exposes for failures.
type ErrorReport struct {
	Status       string `json:"status"`
	StatusCode   int    `json:"status_code,omitempty"`
	Message      string `json:"message"`
	FunctionName string `json:"function_name"`
}

// statusOrder lists the taxonomy from outermost lifecycle outcome to
// innermost storage cause. The first sentinel matched names the status.
var statusOrder = []struct {
	err    error
	status string
}{
	{ErrAuthorizationFailed, "AuthorizationFailed"},
	{ErrPersistenceFailed, "PersistenceFailed"},
	{ErrTokenRefreshFailed, "TokenRefreshFailed"},
	{ErrCredentialUnavailable, "CredentialUnavailable"},
	{ErrTokenAbsent, "TokenAbsent"},
	{ErrInvalidCiphertext, "InvalidCiphertext"},
	{ErrSecretNotFound, "SecretNotFound"},
	{ErrSecretUnreadable, "SecretUnreadable"},
	{ErrInvalidKey, "InvalidKey"},
	{ErrUnsupportedService, "UnsupportedService"},
	{ErrInvalidInput, "InvalidInput"},
}

// NewErrorReport builds an ErrorReport for err raised by the named function.
func NewErrorReport(functionName string, err error) ErrorReport {
	report := ErrorReport{
		Status:       "Error",
		FunctionName: functionName,
	}
	if err == nil {
		return report
	}
	report.Message = err.Error()

	for _, s := range statusOrder {
		if errors.Is(err, s.err) {
			report.Status = s.status
			break
		}
	}
	return report
}
