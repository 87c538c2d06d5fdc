package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/heladeria/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// classify traduce errores de pgx a la taxonomía de dominio.
//   - sin filas → ErrNotFound
//   - 23505 → ErrDuplicate + RemoteError
//   - cualquier otro PgError (RAISE EXCEPTION, constraints) → RemoteError
//   - conexión, red o contexto → ErrTransport
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		remote := &domain.RemoteError{Code: pgErr.Code, Message: pgErr.Message}
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w: %w", op, domain.ErrDuplicate, remote)
		}
		return fmt.Errorf("%s: %w", op, remote)
	}
	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		pgconn.SafeToRetry(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrTransport, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
