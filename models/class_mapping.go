package models

// ClassMapping maps an athlete display name to a class label, e.g. "张三" -> "高一(1)班".
// Two athletes sharing a display name collapse into one entry.
type ClassMapping map[string]string

func (m ClassMapping) Lookup(name string) (string, bool) {
	if m == nil || name == "" {
		return "", false
	}
	class, ok := m[name]
	if !ok || class == "" {
		return "", false
	}
	return class, true
}
