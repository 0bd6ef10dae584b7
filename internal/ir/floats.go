package ir

// Floats is a small insertion-ordered map of term annotations. Terms use it
// to pass metadata such as a legend, highlighted tags or view directives up
// to the caller without widening every term's shape.
//
// The zero value is an empty bag ready to use.
type Floats struct {
	keys []string
	vals map[string]IRValue
}

// Get returns the value stored under key, or nil.
func (f *Floats) Get(key string) IRValue {
	if f == nil || f.vals == nil {
		return nil
	}
	return f.vals[key]
}

// Has reports whether key is present.
func (f *Floats) Has(key string) bool {
	return f.Get(key) != nil
}

// Set stores v under key. A nil value removes the key.
func (f *Floats) Set(key string, v IRValue) {
	if v == nil {
		f.Delete(key)
		return
	}
	if f.vals == nil {
		f.vals = make(map[string]IRValue)
	}
	if _, ok := f.vals[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.vals[key] = v
}

// Delete removes key.
func (f *Floats) Delete(key string) {
	if f.vals == nil {
		return
	}
	if _, ok := f.vals[key]; !ok {
		return
	}
	delete(f.vals, key)
	for i, k := range f.keys {
		if k == key {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (f *Floats) Keys() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.keys...)
}

// Len returns the number of annotations.
func (f *Floats) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// String returns the string annotation under key, or "".
func (f *Floats) String(key string) string {
	if s, ok := f.Get(key).(IRString); ok {
		return string(s)
	}
	return ""
}

// StringList returns the string elements of the array annotation under key.
func (f *Floats) StringList(key string) []string {
	if arr, ok := f.Get(key).(IRArray); ok {
		return arr.Strings()
	}
	return nil
}

// Object renders the bag as an IRObject.
func (f *Floats) Object() IRObject {
	obj := make(IRObject, f.Len())
	for _, k := range f.Keys() {
		obj[k] = f.vals[k]
	}
	return obj
}
