// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/aqidash/aqidash/internal/auth"
)

// ImportResult counts the rows seen by ImportLegacy.
type ImportResult struct {
	Imported int
	Skipped  int
}

// ImportLegacy copies accounts from a users table in the legacy layout
// (username, email, password) into dst. The password column holds hex
// SHA-256 digests and is stored unchanged as the password hash. Rows with a
// missing field, or whose username or email is already taken in dst, are
// skipped.
func ImportLegacy(ctx context.Context, src *sql.DB, dst auth.UserRepository, logger *slog.Logger) (ImportResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	rows, err := src.QueryContext(ctx, `SELECT username, email, password FROM users ORDER BY id`)
	if err != nil {
		return ImportResult{}, oops.Code("LEGACY_READ_FAILED").With("operation", "select legacy users").Wrap(err)
	}
	defer rows.Close()

	var result ImportResult
	for rows.Next() {
		var username, email, password sql.NullString
		if err := rows.Scan(&username, &email, &password); err != nil {
			return result, oops.Code("LEGACY_READ_FAILED").With("operation", "scan legacy user").Wrap(err)
		}

		user, err := auth.NewUser(username.String, email.String, password.String)
		if err != nil {
			logger.WarnContext(ctx, "legacy user skipped", "username", username.String, "error", err)
			result.Skipped++
			continue
		}

		if _, err := dst.Create(ctx, user); err != nil {
			if errors.Is(err, auth.ErrDuplicateKey) {
				logger.InfoContext(ctx, "legacy user already present", "username", user.Username)
				result.Skipped++
				continue
			}
			return result, oops.With("operation", "import legacy user").With("username", user.Username).Wrap(err)
		}
		result.Imported++
	}
	if err := rows.Err(); err != nil {
		return result, oops.Code("LEGACY_READ_FAILED").With("operation", "iterate legacy users").Wrap(err)
	}

	logger.InfoContext(ctx, "legacy users imported", "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}
