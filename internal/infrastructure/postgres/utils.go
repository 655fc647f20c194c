package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation  = "23505"
	codeLockNotAvailable = "55P03"
	// invalid_text_representation: p. ej. un id que no es UUID en una columna UUID
	codeInvalidText = "22P02"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// isLockNotAvailable error por lock_timeout vencido esperando un bloqueo de fila (55P03).
func isLockNotAvailable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeLockNotAvailable
	}
	return false
}

// isInvalidText el valor no se pudo convertir al tipo de la columna (22P02).
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeInvalidText
	}
	return false
}
