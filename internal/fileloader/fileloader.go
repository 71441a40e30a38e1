package fileloader

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Flat-file helpers for yaml/json data files (configs, canned data). The file
// extension selects the codec.

// Validatable items get a chance to sanity-check or default their fields after load.
type Validatable interface {
	Validate() error
}

// LoadFlatFile loads a single yaml or json file into T.
func LoadFlatFile[T any](path string) (T, error) {

	var loaded T

	path = filepath.FromSlash(path)

	fileInfo, err := os.Stat(path)
	if err != nil {
		return loaded, errors.Wrap(err, `filepath: `+path)
	}

	if fileInfo.IsDir() {
		return loaded, errors.New(`filepath: ` + path + ` is a directory`)
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return loaded, errors.Wrap(err, `filepath: `+path)
	}

	fpathLower := strings.ToLower(path)

	if strings.HasSuffix(fpathLower, ".yaml") || strings.HasSuffix(fpathLower, ".yml") {
		err = yaml.Unmarshal(bytes, &loaded)
	} else if strings.HasSuffix(fpathLower, ".json") {
		err = json.Unmarshal(bytes, &loaded)
	} else {
		return loaded, errors.New(`unsupported file extension: ` + path)
	}

	if err != nil {
		return loaded, errors.Wrap(err, `filepath: `+path)
	}

	if v, ok := any(loaded).(Validatable); ok {
		if err := v.Validate(); err != nil {
			return loaded, errors.Wrap(err, `filepath: `+path)
		}
	}
	if v, ok := any(&loaded).(Validatable); ok {
		if err := v.Validate(); err != nil {
			return loaded, errors.Wrap(err, `filepath: `+path)
		}
	}

	return loaded, nil
}

// SaveFlatFile writes data to path as yaml or json. The file is written to a
// temp file first and renamed over the target so a crash can't truncate it.
func SaveFlatFile[T any](path string, data T) error {

	path = filepath.FromSlash(path)

	var bytes []byte
	var err error

	fpathLower := strings.ToLower(path)

	if strings.HasSuffix(fpathLower, ".yaml") || strings.HasSuffix(fpathLower, ".yml") {
		bytes, err = yaml.Marshal(data)
	} else if strings.HasSuffix(fpathLower, ".json") {
		bytes, err = json.MarshalIndent(data, ``, `  `)
	} else {
		return errors.New(`unsupported file extension: ` + path)
	}

	if err != nil {
		return errors.Wrap(err, `filepath: `+path)
	}

	tmpPath := path + `.tmp`
	if err := os.WriteFile(tmpPath, bytes, 0644); err != nil {
		return errors.Wrap(err, `filepath: `+tmpPath)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrap(err, `filepath: `+path)
	}

	return nil
}
