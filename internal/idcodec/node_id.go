package idcodec

import (
	"github.com/battle-for-wesnoth/wmlc/internal/types"
)

// EncodeNodeID encodes a NodeID to a base-63 string.
// This is the canonical function for encoding node references handed
// out by the MCP layer throughout wmlc.
func EncodeNodeID(id types.NodeID) string {
	return Encode(uint64(id))
}

// DecodeNodeID decodes a base-63 string to a NodeID.
// Returns error for invalid input.
func DecodeNodeID(encoded string) (types.NodeID, error) {
	value, err := Decode(encoded)
	if err != nil {
		return 0, err
	}
	return types.NodeID(value), nil
}

// MustDecodeNodeID decodes a base-63 string to a NodeID.
// Panics on error - use only when the input is known to be valid.
func MustDecodeNodeID(encoded string) types.NodeID {
	id, err := DecodeNodeID(encoded)
	if err != nil {
		panic("idcodec: MustDecodeNodeID: " + err.Error())
	}
	return id
}

// IsValidNodeID checks if a string is a valid base-63 encoded NodeID.
func IsValidNodeID(encoded string) bool {
	return IsValid(encoded)
}
