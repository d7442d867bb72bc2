package modules

import "github.com/Aman-CERP/conductorboot/internal/properties"

// SearchVersion is the generation of the index engine in use.
type SearchVersion int

const (
	SearchV2 SearchVersion = 2
	SearchV5 SearchVersion = 5
)

// DefaultSearchVersion applies when index.version is unset or unrecognised.
const DefaultSearchVersion = SearchV2

// String returns "v2" or "v5".
func (v SearchVersion) String() string {
	if v == SearchV5 {
		return "v5"
	}
	return "v2"
}

// IndexModule returns the index module descriptor for v.
func (v SearchVersion) IndexModule() Descriptor {
	if v == SearchV5 {
		return IndexV5
	}
	return IndexV2
}

// SelectSearchVersion reads index.version through intProperty (default 2).
// A value of 5 selects SearchV5; anything else selects SearchV2.
//
// Call it once per resolution and reuse the result: the embedded engine
// flavor and the index module must agree.
func SelectSearchVersion(intProperty func(key string, def int) int) SearchVersion {
	if intProperty(properties.IndexVersion, int(DefaultSearchVersion)) == int(SearchV5) {
		return SearchV5
	}
	return SearchV2
}
