package util

func Int64Ptr(value int64) *int64 {
	return &value
}

func Float64Ptr(value float64) *float64 {
	return &value
}

func BoolPtr(value bool) *bool {
	return &value
}

func RunePtr(value rune) *rune {
	return &value
}

func StringPtr(value string) *string {
	return &value
}
