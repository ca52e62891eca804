package enum

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Store identifies one of the two physical shops. Each shop keeps its own
// stock count for every product.
type Store string

const (
	StoreVilleAvray Store = "ville_avray"
	StoreGarches    Store = "garches"
)

// Stores lists every known store in display order
var Stores = []Store{StoreVilleAvray, StoreGarches}

func (s Store) String() string {
	return string(s)
}

// DisplayName returns the name staff and customers know the store by
func (s Store) DisplayName() string {
	switch s {
	case StoreVilleAvray:
		return "Ville d'Avray"
	case StoreGarches:
		return "Garches"
	default:
		return string(s)
	}
}

// IsValid reports whether s is a known store
func (s Store) IsValid() bool {
	return s == StoreVilleAvray || s == StoreGarches
}

// ParseStore accepts the wire value in any case
func ParseStore(value string) (Store, error) {
	s := Store(strings.ToLower(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", fmt.Errorf("unknown store %q", value)
	}
	return s, nil
}

func (s Store) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *Store) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*s = Store(v)
	case []byte:
		*s = Store(v)
	case nil:
		*s = ""
	}
	return nil
}
