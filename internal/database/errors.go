package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/GoArmGo/UsersAPI/internal/domain"
)

// ErrorForSQLState сопоставляет код SQLSTATE postgres с ошибкой предметной области.
// Возвращает nil, если код не классифицирован.
func ErrorForSQLState(code string) error {
	switch {
	case code == "23505": // unique_violation
		return domain.ErrConflict
	case strings.HasPrefix(code, "22"): // data exception, например id вне диапазона int4
		return domain.ErrValidation
	case strings.HasPrefix(code, "08"),
		code == "53300", // too_many_connections
		code == "57P01", code == "57P02", code == "57P03":
		return domain.ErrUnavailable
	}
	return nil
}

// IsConnectionError сообщает, что ошибка вызвана потерей соединения с БД.
func IsConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
