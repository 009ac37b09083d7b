package library

import (
	"testing"
	"time"
)

func TestSessionLifecycle(t *testing.T) {
	m := NewSessionManager(0)
	user := &User{Username: "alice", Admin: true}

	s := m.Open(user)
	if s.ID == "" {
		t.Fatal("empty session id")
	}
	if s.Username != "alice" || !s.Admin {
		t.Fatalf("session fields wrong: %+v", s)
	}

	if got := m.Get(s.ID); got != s {
		t.Fatal("open session not retrievable")
	}
	if m.Get("unknown") != nil {
		t.Fatal("unknown id returned a session")
	}

	m.Close(s.ID)
	if m.Get(s.ID) != nil {
		t.Fatal("closed session still retrievable")
	}
	m.Close(s.ID) // closing twice is a no-op
}

func TestSessionIDsAreUnique(t *testing.T) {
	m := NewSessionManager(0)
	user := &User{Username: "alice"}

	a := m.Open(user)
	b := m.Open(user)
	if a.ID == b.ID {
		t.Fatal("two sessions share an id")
	}
}

func TestSessionExpiry(t *testing.T) {
	m := NewSessionManager(time.Millisecond)
	s := m.Open(&User{Username: "alice"})

	time.Sleep(10 * time.Millisecond)

	if !s.Expired() {
		t.Fatal("session should be expired")
	}
	if m.Get(s.ID) != nil {
		t.Fatal("expired session still retrievable")
	}
}
