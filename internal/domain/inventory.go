package domain

// Inventory is the set of file names observed in the remote folder by a
// single enumeration. A degraded inventory holds whatever was collected before
// enumeration stopped early; callers must read it as "unknown", not as
// "nothing uploaded".
type Inventory struct {
	Files    map[RemoteFileName]struct{}
	Degraded bool
	Reason   error
	// Calls counts remote listing requests issued to build the inventory.
	Calls int
}

func NewInventory() Inventory {
	return Inventory{Files: make(map[RemoteFileName]struct{})}
}

func (i *Inventory) Add(name RemoteFileName) {
	if i.Files == nil {
		i.Files = make(map[RemoteFileName]struct{})
	}
	i.Files[name] = struct{}{}
}

// Contains reports exact, case-sensitive membership.
func (i Inventory) Contains(name string) bool {
	_, ok := i.Files[name]
	return ok
}

func (i Inventory) Len() int {
	return len(i.Files)
}

// Degrade marks the inventory as partial and records why.
func (i Inventory) Degrade(reason error) Inventory {
	i.Degraded = true
	i.Reason = reason
	return i
}
