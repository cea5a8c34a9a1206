package inventory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/rosctl/pkg/entry"
	"github.com/newtron-network/rosctl/pkg/util"
)

// TaskFile is a list of single-entry reconciliations:
//
//	device: core-rtr1
//	tasks:
//	  - name: lan address
//	    kind: ip-address
//	    params: {address: 10.0.0.1/24, interface: bridge-lan}
//	  - name: drop guest pool
//	    device: edge-rtr2
//	    kind: ip-pool
//	    params: {name: guest}
//	    state: absent
//
// A task without a device uses the file's device.
type TaskFile struct {
	Device string `yaml:"device,omitempty"`
	Tasks  []Task `yaml:"tasks"`
}

// Task is one reconciliation request. State defaults to present.
type Task struct {
	Name   string            `yaml:"name,omitempty"`
	Device string            `yaml:"device,omitempty"`
	Kind   string            `yaml:"kind"`
	Params map[string]string `yaml:"params"`
	State  string            `yaml:"state,omitempty"`
}

// LoadTasks reads and validates a task file.
func LoadTasks(path string) (*TaskFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task file %s: %w", path, err)
	}
	tf, err := ParseTasks(data)
	if err != nil {
		return nil, fmt.Errorf("parsing task file %s: %w", path, err)
	}
	return tf, nil
}

// ParseTasks decodes task YAML, fills in defaults and validates every task.
func ParseTasks(data []byte) (*TaskFile, error) {
	var tf TaskFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, err
	}

	vb := &util.ValidationBuilder{}
	vb.Add(len(tf.Tasks) > 0, "no tasks")
	for i := range tf.Tasks {
		t := &tf.Tasks[i]
		if t.Name == "" {
			t.Name = fmt.Sprintf("task %d", i+1)
		}
		if t.Device == "" {
			t.Device = tf.Device
		}
		if err := t.validate(); err != nil {
			vb.AddErrorf("%s: %v", t.Name, err)
		}
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}
	return &tf, nil
}

func (t *Task) validate() error {
	if t.Device == "" {
		return fmt.Errorf("device is required")
	}
	spec, state, err := t.Resolve()
	if err != nil {
		return err
	}
	if state == entry.StatePresent {
		_, err = spec.CreateArgs()
	}
	return err
}

// Resolve returns the entry spec and desired state the task names.
func (t *Task) Resolve() (entry.Spec, entry.State, error) {
	kind, ok := entry.LookupKind(t.Kind)
	if !ok {
		return entry.Spec{}, "", util.NewValidationError(fmt.Sprintf("unknown kind %q (valid: %v)", t.Kind, entry.KindNames()))
	}
	state, err := entry.ParseState(t.State)
	if err != nil {
		return entry.Spec{}, "", err
	}
	spec, err := kind.NewSpec(t.Params)
	if err != nil {
		return entry.Spec{}, "", err
	}
	return spec, state, nil
}
