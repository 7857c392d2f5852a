package stringutils

import (
	"fmt"
	"strconv"

	"github.com/siahsang/conduit/internal/utils/functional"
)

type StringNumber interface {
	~int | int8 | int16 | int32 | int64 | uint | uint8 | uint16 | uint32 | uint64
}

func ToString[T StringNumber](v T) string {
	return strconv.FormatInt(int64(v), 10)
}

func ToListString[T StringNumber](v []T) []string {
	return functional.Map(v, func(item T) string { return ToString(item) })
}

// INClause builds the placeholder list and argument slice for a Postgres
// `IN (...)` clause, numbering placeholders from startIndex.
func INClause[T any](list []T, startIndex int) (placeholders []string, args []any) {
	placeholders = make([]string, len(list))
	args = make([]any, len(list))
	for i, id := range list {
		placeholders[i] = fmt.Sprintf("$%d", startIndex+i)
		args[i] = id
	}

	return placeholders, args
}
