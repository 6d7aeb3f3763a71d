package model

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"testing"
	"time"

	"xdao.co/mycelium/mycelium"
	"xdao.co/mycelium/spore/didkey"
	"xdao.co/mycelium/storage"
)

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func seedSpore(t *testing.T, b byte) *didkey.Spore {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = b
	}
	s, err := didkey.FromSeed(seed)
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	return s
}

func signedTree(t *testing.T) *mycelium.Node {
	t.Helper()
	clock := &stepClock{t: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	newNode := func(b byte) *mycelium.Node {
		n, err := mycelium.New(seedSpore(t, b), mycelium.WithClock(clock))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return n
	}
	root, child, grandchild := newNode(1), newNode(2), newNode(3)
	if err := child.Add(grandchild); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := root.Add(child); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := root.Add(mycelium.Assemble([]mycelium.Attribute{
		mycelium.OriginSpore{Sporeprint: seedSpore(t, 2).Sporeprint()},
		mycelium.OriginMoment{Moment: 0},
	}, mycelium.Hyphae{mycelium.Reference{Sporeprint: "did:key:zRef"}})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := root.Sign(seedSpore(t, 1)); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return root
}

func TestEncodeDecodePreservesHashAndSignature(t *testing.T) {
	root := signedTree(t)
	b, err := Encode(root)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want, _ := root.Hash()
	have, err := got.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !want.Equals(have) {
		t.Fatalf("hash changed across round trip: %s != %s", want, have)
	}
	if err := got.VerifyOrigin(); err != nil {
		t.Fatalf("VerifyOrigin after round trip: %v", err)
	}

	again, err := Encode(got)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(again) != string(b) {
		t.Fatalf("re-encoding is not stable")
	}
}

func TestDecodeMomentZeroSurvives(t *testing.T) {
	n := mycelium.Assemble([]mycelium.Attribute{mycelium.OriginMoment{Moment: 0}}, nil)
	b, err := Encode(n)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, ok := got.Attr(mycelium.AttrOriginMoment); !ok {
		t.Fatalf("zero moment was lost: %s", b)
	}
}

func TestDecodeRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"not json":          `{`,
		"unknown field":     `{"attributes":[],"hyphae":[],"extra":1}`,
		"unknown kind":      `{"attributes":[{"kind":"colour","sporeprint":"x"}],"hyphae":[]}`,
		"missing kind":      `{"attributes":[{"sporeprint":"x"}],"hyphae":[]}`,
		"duplicate kind":    `{"attributes":[{"kind":"originSpore","sporeprint":"a"},{"kind":"originSpore","sporeprint":"b"}],"hyphae":[]}`,
		"moment on spore":   `{"attributes":[{"kind":"originSpore","sporeprint":"a","moment":"1"}],"hyphae":[]}`,
		"missing moment":    `{"attributes":[{"kind":"lastUpdate"}],"hyphae":[]}`,
		"empty signature":   `{"attributes":[{"kind":"originSignature"}],"hyphae":[]}`,
		"numeric moment":    `{"attributes":[{"kind":"originMoment","moment":1}],"hyphae":[]}`,
		"hypha both":        `{"attributes":[],"hyphae":[{"reference":"r","node":{"attributes":[],"hyphae":[]}}]}`,
		"hypha neither":     `{"attributes":[],"hyphae":[{}]}`,
		"nested bad kind":   `{"attributes":[],"hyphae":[{"node":{"attributes":[{"kind":"?"}],"hyphae":[]}}]}`,
		"trailing document": `{"attributes":[],"hyphae":[]} {"attributes":[],"hyphae":[]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(doc))
			if Code(err) != ErrInvalidDocument {
				t.Fatalf("expected %s, got %v", ErrInvalidDocument, err)
			}
		})
	}
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorCode
	}{
		{fmt.Errorf("get: %w", storage.ErrNotFound), ErrNotFound},
		{storage.ErrCIDMismatch, ErrCIDMismatch},
		{storage.ErrInvalidCID, ErrInvalidCID},
		{NewError(ErrInvalidDocument, "x"), ErrInvalidDocument},
		{errors.New("disk on fire"), ErrInternal},
	}
	for _, tc := range cases {
		if got := Code(MapError(tc.err)); got != tc.want {
			t.Fatalf("MapError(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
	if MapError(nil) != nil {
		t.Fatalf("MapError(nil) must be nil")
	}
}
