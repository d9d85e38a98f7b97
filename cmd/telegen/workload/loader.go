package workload

import (
	"fmt"

	"github.com/arloliu/fuda"
)

// LoadFromFile loads a workload from a YAML file.
func LoadFromFile(path string) (*Workload, error) {
	var w Workload
	if err := fuda.LoadFile(path, &w); err != nil {
		return nil, fmt.Errorf("load workload file: %w", err)
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}

	return &w, nil
}
