package settings

import (
	"fmt"
	"strings"
)

type IDBType string

const (
	SQLITE   IDBType = "sqlite"
	MEMORY   IDBType = "memory"
	POSTGRES IDBType = "postgres"
)

func ParseDBType(s string) (IDBType, error) {
	switch IDBType(strings.ToLower(strings.TrimSpace(s))) {
	case SQLITE:
		return SQLITE, nil
	case MEMORY:
		return MEMORY, nil
	case POSTGRES, "postgresql":
		return POSTGRES, nil
	default:
		return "", fmt.Errorf("unknown DB type: %q", s)
	}
}

func (dbType IDBType) String() string {
	return string(dbType)
}
