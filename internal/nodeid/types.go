package nodeid

// PathSegment represents a single component of an address path, e.g., `name[index]`.
type PathSegment struct {
	Name  string
	Index int // -1 indicates no index is present.
}

// NewPathSegment creates a new path segment without an index.
func NewPathSegment(name string) PathSegment {
	return PathSegment{Name: name, Index: -1}
}

// NewPathSegmentWithIndex creates a new path segment that includes an index.
func NewPathSegmentWithIndex(name string, index int) PathSegment {
	return PathSegment{Name: name, Index: index}
}

// HasIndex returns true if the path segment has an explicit index.
func (ps PathSegment) HasIndex() bool {
	return ps.Index != -1
}

// Address is the structured representation of an identifier, modeled as a
// path broken into segments.
type Address struct {
	Path []PathSegment
}

// NewDevice builds the address of one device. A negative index yields the
// "every device" shorthand.
func NewDevice(machine, deviceType string, index int) *Address {
	last := NewPathSegment(deviceType)
	if index >= 0 {
		last = NewPathSegmentWithIndex(deviceType, index)
	}
	return &Address{Path: []PathSegment{NewPathSegment(machine), last}}
}

// Machine returns the machine name of a device address.
func (a *Address) Machine() string {
	if a == nil || len(a.Path) == 0 {
		return ""
	}
	return a.Path[0].Name
}

// DeviceType returns the device type segment of a device address.
func (a *Address) DeviceType() string {
	if a == nil || len(a.Path) < 2 {
		return ""
	}
	return a.Path[1].Name
}

// DeviceIndex returns the device index, or -1 for the shorthand form.
func (a *Address) DeviceIndex() int {
	if a == nil || len(a.Path) < 2 {
		return -1
	}
	return a.Path[1].Index
}

// IsWildcard reports whether the address names every device of a machine.
func (a *Address) IsWildcard() bool {
	return a.DeviceIndex() == -1
}
