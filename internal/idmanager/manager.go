package idmanager

import (
	"fmt"
	"sync"

	"github.com/specialistvlad/pathforge/internal/config"
	"github.com/specialistvlad/pathforge/internal/nodeid"
	"github.com/specialistvlad/pathforge/internal/planerr"
)

// MaxDevicesPerMachine bounds the local device index; it is also the stride
// between the global device ids of consecutive machines.
const MaxDevicesPerMachine = 256

const (
	machineBits = 16
	deviceBits  = 8
	seqBits     = 64 - machineBits - deviceBits
	maxMachines = 1 << machineBits
)

// MachineID is the dense, zero-based id of a machine.
type MachineID int

// DeviceID is the process-wide id of a device.
type DeviceID int64

// Device is a fully resolved placement target.
type Device struct {
	ID          DeviceID
	Machine     MachineID
	MachineName string
	Type        string
	Local       int
}

func (d Device) String() string {
	return nodeid.NewDevice(d.MachineName, d.Type, d.Local).String()
}

// TaskID packs machine, local device and a per-device sequence number.
type TaskID uint64

// Machine returns the machine encoded in the id.
func (t TaskID) Machine() MachineID { return MachineID(t >> (deviceBits + seqBits)) }

// Local returns the local device index encoded in the id.
func (t TaskID) Local() int { return int((t >> seqBits) & (1<<deviceBits - 1)) }

// Seq returns the per-device sequence number.
func (t TaskID) Seq() uint64 { return uint64(t) & (1<<seqBits - 1) }

func (t TaskID) String() string {
	return fmt.Sprintf("m%d/d%d/%d", t.Machine(), t.Local(), t.Seq())
}

// Manager is the identifier service.
type Manager struct {
	mu          sync.Mutex
	initialized bool
	machines    []*config.Machine
	byName      map[string]MachineID
	seq         map[DeviceID]uint64
}

// New returns an uninitialized Manager.
func New() *Manager {
	return &Manager{}
}

// Init assigns ids for every machine in res. It may be called once.
func (m *Manager) Init(res *config.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return planerr.Identifierf("identifier service already initialized")
	}
	if res == nil || len(res.Machines) == 0 {
		return planerr.Identifierf("resource specification declares no machines")
	}
	if len(res.Machines) > maxMachines {
		return planerr.Identifierf("resource specification declares %d machines, limit is %d", len(res.Machines), maxMachines)
	}

	byName := make(map[string]MachineID, len(res.Machines))
	for i, mc := range res.Machines {
		if mc == nil || mc.Name == "" {
			return planerr.Identifierf("machine #%d has no name", i)
		}
		if _, dup := byName[mc.Name]; dup {
			return planerr.Identifierf("duplicate machine %q", mc.Name)
		}
		if mc.DeviceType == "" {
			return planerr.Identifierf("machine %q has no device type", mc.Name)
		}
		if mc.DeviceCount < 1 || mc.DeviceCount > MaxDevicesPerMachine {
			return planerr.Identifierf("machine %q declares %d devices, want 1..%d", mc.Name, mc.DeviceCount, MaxDevicesPerMachine)
		}
		byName[mc.Name] = MachineID(i)
	}

	m.machines = res.Machines
	m.byName = byName
	m.seq = make(map[DeviceID]uint64)
	m.initialized = true
	return nil
}

// Initialized reports whether Init succeeded.
func (m *Manager) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

// MachineCount returns the number of registered machines.
func (m *Manager) MachineCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.machines)
}

// MachineID looks up a machine by name.
func (m *Manager) MachineID(name string) (MachineID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return 0, planerr.Identifierf("identifier service not initialized")
	}
	id, ok := m.byName[name]
	if !ok {
		return 0, planerr.Identifierf("unknown machine %q", name)
	}
	return id, nil
}

// ResolveDevice turns an address into devices. The shorthand form expands to
// every device of the machine in local index order.
func (m *Manager) ResolveDevice(addr *nodeid.Address) ([]Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, planerr.Identifierf("identifier service not initialized")
	}
	id, ok := m.byName[addr.Machine()]
	if !ok {
		return nil, planerr.Identifierf("device %q references unknown machine %q", addr.String(), addr.Machine())
	}
	mc := m.machines[id]
	if addr.DeviceType() != mc.DeviceType {
		return nil, planerr.Identifierf("device %q: machine %q has %s devices, not %s", addr.String(), mc.Name, mc.DeviceType, addr.DeviceType())
	}

	if addr.IsWildcard() {
		out := make([]Device, 0, mc.DeviceCount)
		for local := 0; local < mc.DeviceCount; local++ {
			out = append(out, newDevice(id, mc, local))
		}
		return out, nil
	}

	local := addr.DeviceIndex()
	if local >= mc.DeviceCount {
		return nil, planerr.Identifierf("device %q out of range: machine %q has %d devices", addr.String(), mc.Name, mc.DeviceCount)
	}
	return []Device{newDevice(id, mc, local)}, nil
}

// ResolveDevices parses and resolves a list of raw device references,
// preserving their order.
func (m *Manager) ResolveDevices(raw []string) ([]Device, error) {
	var out []Device
	for _, r := range raw {
		addr, err := nodeid.ParseDevice(r)
		if err != nil {
			return nil, planerr.Wrap(planerr.ErrIdentifier, err, "invalid device reference %q", r)
		}
		devs, err := m.ResolveDevice(addr)
		if err != nil {
			return nil, err
		}
		out = append(out, devs...)
	}
	return out, nil
}

// NewTaskID allocates the next task id on the given device. Calling it before
// Init is a build-order violation and panics.
func (m *Manager) NewTaskID(d Device) TaskID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		panic("idmanager: NewTaskID called before Init")
	}
	next := m.seq[d.ID]
	if next >= 1<<seqBits {
		panic(fmt.Sprintf("idmanager: task id space exhausted on device %s", d))
	}
	m.seq[d.ID] = next + 1
	return TaskID(uint64(d.Machine)<<(deviceBits+seqBits) | uint64(d.Local)<<seqBits | next)
}

func newDevice(id MachineID, mc *config.Machine, local int) Device {
	return Device{
		ID:          DeviceID(int64(id)*MaxDevicesPerMachine + int64(local)),
		Machine:     id,
		MachineName: mc.Name,
		Type:        mc.DeviceType,
		Local:       local,
	}
}
