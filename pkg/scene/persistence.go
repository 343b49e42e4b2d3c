package scene

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteJSON encodes the world as indented JSON. Mesh KD-trees are not written.
func WriteJSON(w io.Writer, world *World) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(world); err != nil {
		return fmt.Errorf("failed to encode world: %w", err)
	}
	return nil
}

// ReadJSON decodes a world written by WriteJSON and prepares it for rendering
func ReadJSON(r io.Reader) (*World, error) {
	var world World
	if err := json.NewDecoder(r).Decode(&world); err != nil {
		return nil, fmt.Errorf("failed to decode world: %w", err)
	}
	if err := world.Prepare(); err != nil {
		return nil, fmt.Errorf("invalid world: %w", err)
	}
	return &world, nil
}

// WriteGob encodes the world in gob's compact binary format
func WriteGob(w io.Writer, world *World) error {
	if err := gob.NewEncoder(w).Encode(world); err != nil {
		return fmt.Errorf("failed to encode world: %w", err)
	}
	return nil
}

// ReadGob decodes a world written by WriteGob and prepares it for rendering
func ReadGob(r io.Reader) (*World, error) {
	var world World
	if err := gob.NewDecoder(r).Decode(&world); err != nil {
		return nil, fmt.Errorf("failed to decode world: %w", err)
	}
	if err := world.Prepare(); err != nil {
		return nil, fmt.Errorf("invalid world: %w", err)
	}
	return &world, nil
}

// SaveFile writes the world to path, as gob if the extension is .gob and JSON otherwise
func SaveFile(path string, world *World) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create scene file: %w", err)
	}

	if filepath.Ext(path) == ".gob" {
		err = WriteGob(f, world)
	} else {
		err = WriteJSON(f, world)
	}
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close scene file: %w", closeErr)
	}
	return err
}

// LoadFile reads a world saved by SaveFile
func LoadFile(path string) (*World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer f.Close()

	if filepath.Ext(path) == ".gob" {
		return ReadGob(f)
	}
	return ReadJSON(f)
}
