package profile

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/vstopensource/formfill/pkg/store"
)

func TestLoad_MemberDocument(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	ident := Identity{UID: "u1", Email: "auth@example.org", DisplayName: "Auth Name"}

	err := st.Set(ctx, store.CollectionMembers, "u1", store.Document{
		"name":   "Ada Lovelace",
		"email":  "ada@example.org",
		"phone":  "+1555",
		"github": map[string]any{"username": "ada"},
	})
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}

	p := Load(ctx, st, ident, nil)
	if p.Name != "Ada Lovelace" || p.Email != "ada@example.org" {
		t.Fatalf("profile = %+v", p)
	}
	if p.GithubUsername != "ada" {
		t.Fatalf("nested github username not read: %+v", p)
	}
}

func TestLoad_FallsBackToIdentity(t *testing.T) {
	ctx := context.Background()
	ident := Identity{UID: "u2", Email: "auth@example.org", DisplayName: "Auth Name"}

	p := Load(ctx, store.NewMemory(), ident, nil)
	if p.Name != "Auth Name" || p.Email != "auth@example.org" {
		t.Fatalf("fallback profile = %+v", p)
	}
}

type wrappingStore struct {
	store.DocumentStore
}

func (s wrappingStore) Get(ctx context.Context, collection, id string) (store.Document, error) {
	doc, err := s.DocumentStore.Get(ctx, collection, id)
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	return doc, nil
}

func TestLoad_WrappedNotFoundIsQuiet(t *testing.T) {
	ctx := context.Background()
	ident := Identity{UID: "u3", Email: "auth@example.org", DisplayName: "Auth Name"}

	var logged bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logged, nil))

	p := Load(ctx, wrappingStore{store.NewMemory()}, ident, log)
	if p.Name != "Auth Name" || p.Email != "auth@example.org" {
		t.Fatalf("fallback profile = %+v", p)
	}
	if strings.Contains(logged.String(), "load member profile") {
		t.Fatalf("wrapped not-found logged as a store failure:\n%s", logged.String())
	}
}

func TestResolve_KnownFieldSetOnly(t *testing.T) {
	p := Profile{Name: "Ada", Whatsapp: "+1555"}
	if got := p.Resolve("whatsapp"); got != "+1555" {
		t.Fatalf("whatsapp = %q", got)
	}
	if got := p.Resolve("favoriteColor"); got != "" {
		t.Fatalf("unknown field resolved to %q", got)
	}
}

func TestUserInfo_Fallbacks(t *testing.T) {
	ident := Identity{Email: "auth@example.org", DisplayName: "Auth Name", PhotoURL: "http://img"}
	info := Profile{GithubUsername: "ada"}.UserInfo(ident)
	if info.Name != "Auth Name" || info.Email != "auth@example.org" {
		t.Fatalf("fallback userInfo = %+v", info)
	}
	if info.PhotoURL != "http://img" || info.GithubUsername != "ada" {
		t.Fatalf("userInfo = %+v", info)
	}
}
