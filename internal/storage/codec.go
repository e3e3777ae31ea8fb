package storage

import (
	"encoding/json"
	"errors"
)

// Versions stamped on every record this build writes
const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// ErrVersionMismatch is returned when decoding a record written by another schema or codec
var ErrVersionMismatch = errors.New("record version mismatch")

// Current returns the version stamp new records are written with.
func Current() VersionedRecord {
	return VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

// EncodeGeneration serializes a generation record.
func EncodeGeneration(g Generation) ([]byte, error) {
	return json.Marshal(g)
}

// DecodeGeneration parses a generation record and checks its version.
func DecodeGeneration(data []byte) (Generation, error) {
	var generation Generation
	if err := json.Unmarshal(data, &generation); err != nil {
		return Generation{}, err
	}
	if err := checkVersion(generation.VersionedRecord); err != nil {
		return Generation{}, err
	}
	return generation, nil
}

// EncodeChampion serializes a champion record.
func EncodeChampion(c Champion) ([]byte, error) {
	return json.Marshal(c)
}

// DecodeChampion parses a champion record and checks its version.
func DecodeChampion(data []byte) (Champion, error) {
	var champion Champion
	if err := json.Unmarshal(data, &champion); err != nil {
		return Champion{}, err
	}
	if err := checkVersion(champion.VersionedRecord); err != nil {
		return Champion{}, err
	}
	return champion, nil
}

func checkVersion(v VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
