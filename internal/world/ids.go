package world

import "github.com/google/uuid"

// idNamespace is the fixed namespace for symbol-derived entity ids.
// Changing it invalidates every existing save file.
var idNamespace = uuid.MustParse("8f9f4f2a-55e0-4d39-9a3e-2f6cfb1f8f60")

// SymbolID derives the stable entity id for an authoring symbol.
//
// Ids are content-addressed (SHA1 UUID over the symbol) rather than random
// so that loading the same bundle in two different processes yields the same
// ids - a requirement for deterministic replay and for save files that
// reference entities by id.
func SymbolID(symbol string) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte(symbol))
}
