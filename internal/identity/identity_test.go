package identity

import (
	"errors"
	"net/http/httptest"
	"testing"
)

func TestPassthrough(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/progress", nil)

	id, err := Passthrough{}.Resolve(r, "u1")
	if err != nil || id != "u1" {
		t.Errorf("Resolve = (%q, %v), want (u1, nil)", id, err)
	}

	id, err = Passthrough{}.Resolve(r, "")
	if err != nil || id != "" {
		t.Errorf("empty claim must pass through empty, got (%q, %v)", id, err)
	}
}

func TestStatic(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/progress", nil)

	id, err := Static("dev-user-123").Resolve(r, "someone-else")
	if err != nil || id != "dev-user-123" {
		t.Errorf("Resolve = (%q, %v), want fixed id", id, err)
	}
}

func TestTokenMap(t *testing.T) {
	m := TokenMap{"secret-token": "u1"}

	r := httptest.NewRequest("GET", "/api/progress", nil)
	r.Header.Set("Authorization", "Bearer secret-token")
	id, err := m.Resolve(r, "ignored")
	if err != nil || id != "u1" {
		t.Errorf("Resolve = (%q, %v), want (u1, nil)", id, err)
	}

	r = httptest.NewRequest("GET", "/api/progress", nil)
	r.Header.Set("Authorization", "Bearer wrong")
	if _, err := m.Resolve(r, ""); !errors.Is(err, ErrUnknownToken) {
		t.Errorf("expected ErrUnknownToken, got %v", err)
	}

	r = httptest.NewRequest("GET", "/api/progress", nil)
	id, err = m.Resolve(r, "")
	if err != nil || id != "" {
		t.Errorf("missing header must resolve empty, got (%q, %v)", id, err)
	}
}
