package postgresql

// int64Array keeps JSONB id lists as [] rather than null.
func int64Array(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

// optionalStrings maps an empty list to SQL NULL.
func optionalStrings(values []string) interface{} {
	if len(values) == 0 {
		return nil
	}
	return values
}
