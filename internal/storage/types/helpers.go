package types

// CloneData returns a shallow copy of a payload map. Backends hand out
// copies so callers can't mutate stored state through the returned map.
func CloneData(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

// CloneDocument returns a copy of doc with its payload cloned.
func CloneDocument(doc *Document) *Document {
	if doc == nil {
		return nil
	}
	return &Document{
		Id:        doc.Id,
		UpdatedAt: doc.UpdatedAt,
		Data:      CloneData(doc.Data),
	}
}

// Less reports whether position (aTs, aId) orders before (bTs, bId)
// under the replication order: primary key updatedAt, tiebreak id.
func Less(aTs int64, aId string, bTs int64, bId string) bool {
	if aTs != bTs {
		return aTs < bTs
	}
	return aId < bId
}
