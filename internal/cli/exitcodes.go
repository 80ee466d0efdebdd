package cli

// Коды завершения CLI feedreader.
const (
	// ExitSuccess означает, что команда отработала и все проверки прошли.
	ExitSuccess = 0

	// ExitTestFailure означает, что хотя бы одна проверка провалилась или завершилась ошибкой.
	ExitTestFailure = 1

	// ExitConfigError означает, что конфигурацию или флаги не удалось прочитать.
	ExitConfigError = 3
)

// exitError переносит код завершения из RunE в Execute.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return "exit status"
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// configError помечает ошибку кодом ExitConfigError.
func configError(err error) error {
	return &exitError{code: ExitConfigError, err: err}
}
