package upstream

// CachedResponse is an upstream reply captured in full. It is never mutated
// after Fetch returns it, so one value can be served to many requests at once.
type CachedResponse struct {
	Status         int
	Body           []byte
	ContentType    string
	HasContentType bool
}

// IsSuccess reports whether the status is in [200, 300).
func (r *CachedResponse) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}
