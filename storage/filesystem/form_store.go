package filesystem

import (
	"encoding/json"
	"os"

	"github.com/q-jackboylan/skweak/frequency"
	"github.com/q-jackboylan/skweak/storage"
)

// FormStore keeps a form-frequency table as a single JSON file.
type FormStore struct {
	path string
}

var _ storage.FormRepository = (*FormStore)(nil)

func NewFormStore(path string) *FormStore {
	return &FormStore{path: path}
}

func (h *FormStore) Forms() (frequency.Table, error) {
	return frequency.LoadFile(h.path)
}

func (h *FormStore) WriteForms(t frequency.Table) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(h.path, data, 0644)
}
