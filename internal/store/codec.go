// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package store

import (
	"encoding/json"
)

// EncodeObject serializes an entity for storage.
func EncodeObject(obj Object) ([]byte, error) {
	return json.Marshal(obj)
}

// DecodeObject deserializes a stored entity of a known kind.
func DecodeObject(kind Kind, data []byte) (Object, error) {
	var obj Object
	switch kind {
	case KindPerson:
		obj = &Person{}
	case KindFamily:
		obj = &Family{}
	case KindEvent:
		obj = &Event{}
	case KindPlace:
		obj = &Place{}
	case KindCitation:
		obj = &Citation{}
	case KindSource:
		obj = &Source{}
	case KindMedia:
		obj = &Media{}
	case KindRepository:
		obj = &Repository{}
	case KindNote:
		obj = &Note{}
	case KindTag:
		obj = &Tag{}
	default:
		return nil, ErrInvalidInput
	}
	if err := json.Unmarshal(data, obj); err != nil {
		return nil, err
	}
	return obj, nil
}
