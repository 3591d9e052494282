// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package shares wraps raw secret shares in a container format suitable for
// handing to share holders and assembling back into a Combine input.
//
// The interpolation core cannot detect corrupted or mismatched shares, so
// each envelope carries a SHA-256 digest of its share and the ID of the
// split it belongs to. Integrity checking lives entirely in this layer;
// a holder who strips the envelope can still combine the raw shares, just
// without the safety net.
package shares

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/GoogleCloudPlatform/sss"
	"github.com/google/uuid"
	"sigs.k8s.io/yaml"
)

// Envelope is one share of one split, with enough metadata to validate it
// and to recognize which other envelopes it can be combined with.
type Envelope struct {
	// SplitID identifies the Split call that produced this share. All
	// envelopes from one split carry the same ID.
	SplitID string `json:"splitId"`
	// Threshold is the number of shares required to reconstruct.
	Threshold int `json:"threshold"`
	// TotalShares is the number of shares the secret was split into.
	TotalShares int `json:"totalShares"`
	// ShareID is the x-coordinate the share was evaluated at, 1-255.
	ShareID byte `json:"shareId"`
	// Value is the share itself, one byte per secret byte.
	Value []byte `json:"value"`
	// Digest is the SHA-256 hash of the share ID followed by Value.
	Digest []byte `json:"digest"`
}

// Hash returns the SHA-256 digest binding a share value to its ID.
func Hash(id byte, value []byte) []byte {
	h := sha256.New()
	h.Write([]byte{id})
	h.Write(value)
	return h.Sum(nil)
}

// Validate reports whether the envelope's digest matches its contents.
func (e *Envelope) Validate() error {
	if e.ShareID == 0 {
		return fmt.Errorf("shares: invalid share ID 0")
	}
	if !bytes.Equal(e.Digest, Hash(e.ShareID, e.Value)) {
		return fmt.Errorf("shares: digest mismatch for share %d of split %s", e.ShareID, e.SplitID)
	}
	return nil
}

// Marshal encodes the envelope as YAML.
func (e *Envelope) Marshal() ([]byte, error) {
	return yaml.Marshal(e)
}

// Unmarshal decodes a YAML envelope.
func Unmarshal(data []byte) (*Envelope, error) {
	var e Envelope
	if err := yaml.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("shares: unmarshaling envelope: %v", err)
	}
	return &e, nil
}

// Wrap packages the output of sss.Split into one envelope per share, all
// tagged with a fresh split ID.
func Wrap(threshold, totalShares int, split map[byte][]byte) ([]*Envelope, error) {
	if len(split) != totalShares {
		return nil, fmt.Errorf("shares: got %d shares, expected %d", len(split), totalShares)
	}

	splitID := uuid.NewString()
	envelopes := make([]*Envelope, 0, len(split))
	for id := 1; id <= totalShares; id++ {
		value, ok := split[byte(id)]
		if !ok {
			return nil, fmt.Errorf("shares: split is missing share %d", id)
		}
		envelopes = append(envelopes, &Envelope{
			SplitID:     splitID,
			Threshold:   threshold,
			TotalShares: totalShares,
			ShareID:     byte(id),
			Value:       value,
			Digest:      Hash(byte(id), value),
		})
	}
	return envelopes, nil
}

// Assemble validates a set of envelopes and builds the share map expected
// by sss.Combine. It fails if any envelope's digest does not check out, if
// the envelopes come from different splits or disagree on their metadata,
// if any share ID appears twice, or if there are fewer envelopes than the
// recorded threshold.
//
// A passing assembly means the shares are the ones the dealer issued, not
// that they are sufficient in the cryptographic sense; a dealer who lied
// about the threshold still defeats it.
func Assemble(envelopes []*Envelope) (map[byte][]byte, error) {
	if len(envelopes) == 0 {
		return nil, fmt.Errorf("shares: no envelopes provided")
	}

	first := envelopes[0]
	out := make(map[byte][]byte, len(envelopes))
	for _, e := range envelopes {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if e.SplitID != first.SplitID {
			return nil, fmt.Errorf("shares: envelope for split %s mixed into split %s", e.SplitID, first.SplitID)
		}
		if e.Threshold != first.Threshold || e.TotalShares != first.TotalShares {
			return nil, fmt.Errorf("shares: envelopes disagree on split parameters")
		}
		if _, ok := out[e.ShareID]; ok {
			return nil, fmt.Errorf("shares: duplicate share %d", e.ShareID)
		}
		out[e.ShareID] = e.Value
	}

	if len(out) < first.Threshold {
		return nil, fmt.Errorf("shares: %d shares provided, threshold is %d", len(out), first.Threshold)
	}
	if first.TotalShares > sss.MaxShares {
		return nil, fmt.Errorf("shares: total shares %d exceeds %d", first.TotalShares, sss.MaxShares)
	}
	return out, nil
}
