package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix leaves room to change
// the hashed shape without colliding with old journals.
const (
	DomainDispatch = "backlash/dispatch/v1"
	DomainState    = "backlash/state/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data) as lowercase hex.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DispatchID computes the content-addressed id of a dispatch. Identical
// sessions replayed with the same actions produce identical ids.
func DispatchID(sessionID string, seq int64, action string, args IRArray) (string, error) {
	if args == nil {
		args = IRArray{}
	}
	obj := IRObject{
		"session": IRString(sessionID),
		"seq":     IRInt(seq),
		"action":  IRString(action),
		"args":    args,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("dispatch id: %w", err)
	}
	return hashWithDomain(DomainDispatch, canonical), nil
}

// MustDispatchID is like DispatchID but panics on error.
func MustDispatchID(sessionID string, seq int64, action string, args IRArray) string {
	id, err := DispatchID(sessionID, seq, action, args)
	if err != nil {
		panic(err)
	}
	return id
}

// StateHash fingerprints a state snapshot. The journal stores this hash in
// place of the state itself.
func StateHash(snapshot IRObject) (string, error) {
	canonical, err := MarshalCanonical(snapshot)
	if err != nil {
		return "", fmt.Errorf("state hash: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}
