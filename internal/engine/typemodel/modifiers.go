package typemodel

import (
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/typeoracle"
)

// flagMapping translates one JVM access flag into a type model modifier. Flags share
// bits between classes, fields and methods, so each member kind has its own table.
type flagMapping struct {
	flag domain.AccessFlags
	mod  typeoracle.Modifier
}

var commonModifiers = []flagMapping{
	{domain.AccPublic, typeoracle.ModPublic},
	{domain.AccPrivate, typeoracle.ModPrivate},
	{domain.AccProtected, typeoracle.ModProtected},
	{domain.AccStatic, typeoracle.ModStatic},
	{domain.AccFinal, typeoracle.ModFinal},
}

var classModifiers = append(commonModifiers[:len(commonModifiers):len(commonModifiers)],
	flagMapping{domain.AccAbstract, typeoracle.ModAbstract},
)

var fieldModifiers = append(commonModifiers[:len(commonModifiers):len(commonModifiers)],
	flagMapping{domain.AccVolatile, typeoracle.ModVolatile},
	flagMapping{domain.AccTransient, typeoracle.ModTransient},
)

var methodModifiers = append(commonModifiers[:len(commonModifiers):len(commonModifiers)],
	flagMapping{domain.AccAbstract, typeoracle.ModAbstract},
	flagMapping{domain.AccNative, typeoracle.ModNative},
	flagMapping{domain.AccSynchronized, typeoracle.ModSynchronized},
)

func mapModifiers(table []flagMapping, access domain.AccessFlags) typeoracle.Modifier {
	var out typeoracle.Modifier
	for _, m := range table {
		if access.Has(m.flag) {
			out |= m.mod
		}
	}
	return out
}
