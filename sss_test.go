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

package sss_test

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/GoogleCloudPlatform/sss"
	"github.com/google/go-cmp/cmp"
)

// countingReader yields the byte sequence 1, 2, 3, ... wrapping at 255 back
// to 0, giving tests a deterministic stand-in for crypto/rand.Reader.
type countingReader struct {
	next byte
}

func (c *countingReader) Read(p []byte) (int, error) {
	for i := range p {
		c.next++
		p[i] = c.next
	}
	return len(p), nil
}

type errReader struct{}

var errEntropy = errors.New("entropy source failed")

func (errReader) Read(p []byte) (int, error) {
	return 0, errEntropy
}

// subsets returns every subset of the given size drawn from the share map.
func subsets(shares map[byte][]byte, size int) []map[byte][]byte {
	ids := make([]byte, 0, len(shares))
	for id := range shares {
		ids = append(ids, id)
	}

	var out []map[byte][]byte
	var recurse func(start int, picked []byte)
	recurse = func(start int, picked []byte) {
		if len(picked) == size {
			subset := make(map[byte][]byte, size)
			for _, id := range picked {
				subset[id] = shares[id]
			}
			out = append(out, subset)
			return
		}
		for i := start; i < len(ids); i++ {
			recurse(i+1, append(picked, ids[i]))
		}
	}
	recurse(0, nil)
	return out
}

func TestSplitDeterministic(t *testing.T) {
	got, err := sss.Split(5, 3, []byte{1, 2, 3, 4, 5}, &countingReader{})
	if err != nil {
		t.Fatalf("Split() err = %v, want nil", err)
	}

	// Pinned output for the counting source: the per-byte polynomials are
	// [1,1,2], [2,3,4], [3,5,6], [4,7,8], [5,9,10].
	want := map[byte][]byte{
		1: {2, 5, 0, 11, 6},
		2: {11, 20, 17, 42, 63},
		3: {8, 19, 18, 37, 60},
		4: {37, 78, 119, 152, 129},
		5: {38, 73, 116, 151, 130},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Split() returned unexpected diff (-want +got):\n%s", diff)
	}
}

func TestSplitCombineRoundTrip(t *testing.T) {
	secret := []byte("this is a super secret")

	shares, err := sss.Split(5, 3, secret, rand.Reader)
	if err != nil {
		t.Fatalf("Split() err = %v, want nil", err)
	}
	if len(shares) != 5 {
		t.Fatalf("Split() produced %d shares, want 5", len(shares))
	}
	for id, share := range shares {
		if len(share) != len(secret) {
			t.Fatalf("share %d has length %d, want %d", id, len(share), len(secret))
		}
	}

	// Any subset of at least threshold size recovers the secret.
	for size := 3; size <= 5; size++ {
		for _, subset := range subsets(shares, size) {
			got, err := sss.Combine(subset)
			if err != nil {
				t.Fatalf("Combine() err = %v, want nil", err)
			}
			if !bytes.Equal(got, secret) {
				t.Errorf("Combine() of %d shares = %q, want %q", size, got, secret)
			}
		}
	}

	// Any subset below the threshold yields garbage, not the secret.
	// (This holds up to a 2^-176 chance of collision for this secret.)
	for size := 1; size < 3; size++ {
		for _, subset := range subsets(shares, size) {
			got, err := sss.Combine(subset)
			if err != nil {
				t.Fatalf("Combine() err = %v, want nil", err)
			}
			if bytes.Equal(got, secret) {
				t.Errorf("Combine() of %d shares recovered the secret, want garbage", size)
			}
		}
	}
}

func TestSplitSingleShareThreshold(t *testing.T) {
	// k=1 means every share is the secret itself.
	secret := []byte{0, 9, 42}
	shares, err := sss.Split(3, 1, secret, rand.Reader)
	if err != nil {
		t.Fatalf("Split() err = %v, want nil", err)
	}
	for id, share := range shares {
		if !bytes.Equal(share, secret) {
			t.Errorf("share %d = %v, want %v", id, share, secret)
		}
	}
}

func TestSplitInvalidArguments(t *testing.T) {
	for _, tc := range []struct {
		name   string
		n      byte
		k      byte
		secret []byte
	}{
		{
			name:   "zero threshold",
			n:      5,
			k:      0,
			secret: []byte{1},
		},
		{
			name:   "threshold above share count",
			n:      3,
			k:      4,
			secret: []byte{1},
		},
		{
			name:   "empty secret",
			n:      5,
			k:      3,
			secret: nil,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := sss.Split(tc.n, tc.k, tc.secret, rand.Reader); err == nil {
				t.Errorf("Split(%d, %d, %v) err = nil, want error", tc.n, tc.k, tc.secret)
			}
		})
	}
}

func TestSplitRandFailure(t *testing.T) {
	if _, err := sss.Split(5, 3, []byte{1, 2, 3}, errReader{}); !errors.Is(err, errEntropy) {
		t.Errorf("Split() err = %v, want wrapped entropy failure", err)
	}
}

func TestCombine(t *testing.T) {
	// Fixed regression vector: three shares of [1,2,3,4,5] split 5-of-3.
	shares := map[byte][]byte{
		1: {64, 163, 216, 189, 193},
		3: {194, 250, 117, 212, 82},
		5: {95, 17, 153, 111, 252},
	}

	got, err := sss.Combine(shares)
	if err != nil {
		t.Fatalf("Combine() err = %v, want nil", err)
	}
	if diff := cmp.Diff([]byte{1, 2, 3, 4, 5}, got); diff != "" {
		t.Errorf("Combine() returned unexpected diff (-want +got):\n%s", diff)
	}
}

func TestCombineEmpty(t *testing.T) {
	if _, err := sss.Combine(nil); !errors.Is(err, sss.ErrNoShares) {
		t.Errorf("Combine(nil) err = %v, want ErrNoShares", err)
	}
}

func TestCombineMismatchedLengths(t *testing.T) {
	shares := map[byte][]byte{
		1: {64, 163, 216, 189, 193},
		3: {194, 250, 117},
	}
	if _, err := sss.Combine(shares); !errors.Is(err, sss.ErrShareLength) {
		t.Errorf("Combine() err = %v, want ErrShareLength", err)
	}
}

func TestCombineZeroShareID(t *testing.T) {
	shares := map[byte][]byte{
		0: {64, 163, 216, 189, 193},
		3: {194, 250, 117, 212, 82},
	}
	if _, err := sss.Combine(shares); !errors.Is(err, sss.ErrZeroShareID) {
		t.Errorf("Combine() err = %v, want ErrZeroShareID", err)
	}
}

func BenchmarkSplit(b *testing.B) {
	secret := []byte{1, 2, 3, 4, 5}
	for i := 0; i < b.N; i++ {
		if _, err := sss.Split(5, 3, secret, rand.Reader); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCombine(b *testing.B) {
	shares := map[byte][]byte{
		1: {64, 163, 216, 189, 193},
		3: {194, 250, 117, 212, 82},
		5: {95, 17, 153, 111, 252},
	}
	for i := 0; i < b.N; i++ {
		if _, err := sss.Combine(shares); err != nil {
			b.Fatal(err)
		}
	}
}
