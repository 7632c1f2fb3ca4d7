package repository

import (
	"strings"
	"testing"
)

func TestUsersSchemaUsernameIsCaseSensitive(t *testing.T) {
	var column string
	for _, line := range strings.Split(usersSchema, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "username ") {
			column = line
		}
	}
	if column == "" {
		t.Fatal("username column missing from schema")
	}
	if !strings.Contains(column, "COLLATE utf8mb4_bin") {
		t.Fatalf("username must use a binary collation so \"Amy\" and \"amy\" are distinct: %q", column)
	}
	if !strings.Contains(usersSchema, "UNIQUE KEY uq_users_username (username)") {
		t.Fatal("username must stay unique")
	}
}
