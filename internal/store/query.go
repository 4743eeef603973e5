package store

// Query is a filter document serialized into the q parameter of a list
// request. The backing store speaks a Mongo-style query language; the two
// shapes this client ever issues are plain field equality and $elemMatch
// over an array of {_id} references.
type Query map[string]any

// Eq matches records whose field equals value.
func Eq(field string, value any) Query {
	return Query{field: value}
}

// ElemMatch matches records whose field (an array of {_id} refs) contains a
// ref with the given id.
func ElemMatch(field, id string) Query {
	return Query{field: map[string]any{"$elemMatch": map[string]any{"_id": id}}}
}
